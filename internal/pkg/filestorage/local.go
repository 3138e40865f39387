package filestorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

// PublicPrefix is the URL path the upload directory is served under
const PublicPrefix = "/uploads"

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// BasePath returns the upload directory
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// TimestampedName builds "<unix-millis>_<sanitized-basename><ext>".
func TimestampedName(u *Upload, now time.Time) string {
	ext := u.Ext()
	base := slug.Make(strings.TrimSuffix(filepath.Base(u.OriginalName), filepath.Ext(u.OriginalName)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), base, ext)
}

// FixedName builds "<id><ext>", the name a record's replacement file is kept under.
func FixedName(id string, u *Upload) string {
	return id + u.Ext()
}

// StagedName builds a hidden name for a replacement file that is not yet
// committed to its record.
func StagedName(id string, u *Upload, now time.Time) string {
	return fmt.Sprintf(".staged-%s-%d%s", id, now.UnixNano(), u.Ext())
}

// PublicURL maps a stored filename to the URL it is served under.
func PublicURL(filename string) string {
	return path.Join(PublicPrefix, filename)
}

func validName(filename string) bool {
	return filename != "" && filename != "." && filename != ".." && filename == filepath.Base(filename)
}

// Save writes the upload under filename and returns its public URL.
func (ls *LocalStorage) Save(u *Upload, filename string) (string, error) {
	if !validName(filename) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	src, err := u.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", u.OriginalName).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(ls.basePath, filename)
	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	publicURL := PublicURL(filename)
	logger.Info().Str("filename", u.OriginalName).Str("saved_as", filename).Int64("size", u.Size).Msg("File saved successfully")
	return publicURL, nil
}

// Promote renames a previously saved file to filename, replacing any file
// already there, and returns the new public URL.
func (ls *LocalStorage) Promote(fileURL, filename string) (string, error) {
	if !validName(filename) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	src := ls.GetFullPath(fileURL)
	if src == "" {
		return "", fmt.Errorf("invalid file path: %s", fileURL)
	}

	dst := filepath.Join(ls.basePath, filename)
	if err := os.Rename(src, dst); err != nil {
		logger.Error().Err(err).Str("from", src).Str("to", dst).Msg("Failed to move staged file")
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	return PublicURL(filename), nil
}

// DeleteFile removes a stored file by its public URL. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// RemoveVariants deletes "<id><ext>" for every allowed extension except keepExt.
func (ls *LocalStorage) RemoveVariants(id, keepExt string) {
	for _, ext := range AllowedExtensions {
		if ext == keepExt {
			continue
		}
		p := filepath.Join(ls.basePath, id+ext)
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove stale file variant")
		}
	}
}

// Locate finds the file for a record: a fixed "<id>.<ext>" first, then the
// recorded URL. It returns false when neither exists on disk.
func (ls *LocalStorage) Locate(id, fileURL string) (string, bool) {
	for _, ext := range AllowedExtensions {
		p := filepath.Join(ls.basePath, id+ext)
		if isRegularFile(p) {
			return p, true
		}
	}
	if p := ls.GetFullPath(fileURL); p != "" && isRegularFile(p) {
		return p, true
	}
	return "", false
}

// GetFullPath maps a public URL to a path inside the upload directory.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	filename := path.Base(strings.TrimSpace(fileURL))
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		return ""
	}
	return filepath.Join(ls.basePath, filename)
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
