package filestorage

// FileStorage defines the storage operations diploma handling relies on
type FileStorage interface {
	// Save stores the upload under filename and returns its public URL
	Save(u *Upload, filename string) (string, error)

	// Promote renames a saved file to filename and returns its new URL
	Promote(fileURL, filename string) (string, error)

	// DeleteFile removes a file by its public URL
	DeleteFile(fileURL string) error

	// RemoveVariants drops "<id><ext>" siblings other than keepExt
	RemoveVariants(id, keepExt string)

	// Locate resolves the on-disk file of a record
	Locate(id, fileURL string) (string, bool)
}

var _ FileStorage = (*LocalStorage)(nil)
