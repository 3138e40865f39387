package filestorage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
)

// DefaultMaxBytes is the upload limit when none is configured (10 MiB)
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// PrimaryField is the multipart field checked before any other
const PrimaryField = "file"

var allowedMimeTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// AllowedExtensions lists accepted file extensions, lower-case with dot
var AllowedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

var dataURLPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.*)$`)

// Upload is a file received by any intake path, resolved to one shape.
// Exactly one of header or data is set.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64

	header *multipart.FileHeader
	data   []byte
}

// NewBufferedUpload wraps in-memory content.
func NewBufferedUpload(name, mimeType string, data []byte) *Upload {
	return &Upload{OriginalName: name, MimeType: normalizeMime(mimeType), Size: int64(len(data)), data: data}
}

// NewMultipartUpload wraps a multipart part. The MIME type comes from the part
// header, or is sniffed from content when the client sent none.
func NewMultipartUpload(fh *multipart.FileHeader) (*Upload, error) {
	u := &Upload{
		OriginalName: fh.Filename,
		MimeType:     normalizeMime(fh.Header.Get("Content-Type")),
		Size:         fh.Size,
		header:       fh,
	}
	if u.MimeType == "" {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		defer f.Close()
		mt, err := mimetype.DetectReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to detect file type: %w", err)
		}
		u.MimeType = normalizeMime(mt.String())
	}
	return u, nil
}

// Open returns the upload content.
func (u *Upload) Open() (io.ReadCloser, error) {
	if u.header != nil {
		return u.header.Open()
	}
	return io.NopCloser(bytes.NewReader(u.data)), nil
}

// Ext returns the lower-case extension of the original name, or one inferred
// from the MIME type when the name has none.
func (u *Upload) Ext() string {
	if ext := strings.ToLower(filepath.Ext(u.OriginalName)); ext != "" {
		return ext
	}
	if ext, ok := allowedMimeTypes[u.MimeType]; ok {
		return ext
	}
	return ".bin"
}

// Policy validates uploads against type and size limits.
type Policy struct {
	MaxBytes int64
}

// NewPolicy returns a policy with maxBytes, or the default when maxBytes <= 0.
func NewPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Policy{MaxBytes: maxBytes}
}

// Validate enforces the MIME, extension and size rules.
func (p Policy) Validate(u *Upload) error {
	if _, ok := allowedMimeTypes[u.MimeType]; !ok {
		return apperrors.NewCustomError(apperrors.ErrInvalidFileType,
			"Only PDF, JPG or PNG files are allowed").WithField("file", "unsupported type "+u.MimeType)
	}
	if !isAllowedExt(u.Ext()) {
		return apperrors.NewCustomError(apperrors.ErrInvalidFileType,
			"Only PDF, JPG or PNG files are allowed").WithField("file", "unsupported extension "+u.Ext())
	}
	if u.Size > p.MaxBytes {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File is too large, limit is %d MB", p.MaxBytes/(1024*1024))).WithField("file", "too large")
	}
	return nil
}

// Resolve picks the upload carried by a request, trying the multipart field
// "file", then any other multipart file field, then a base64 body field.
// It returns nil without error when the request carries no file.
func (p Policy) Resolve(form *multipart.Form, fields map[string]any) (*Upload, error) {
	u, err := p.fromMultipart(form)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = p.fromBase64(fields)
		if err != nil {
			return nil, err
		}
	}
	if u == nil {
		return nil, nil
	}
	if err := p.Validate(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (p Policy) fromMultipart(form *multipart.Form) (*Upload, error) {
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}
	if files := form.File[PrimaryField]; len(files) > 0 {
		return NewMultipartUpload(files[0])
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if files := form.File[name]; len(files) > 0 {
			return NewMultipartUpload(files[0])
		}
	}
	return nil, nil
}

func (p Policy) fromBase64(fields map[string]any) (*Upload, error) {
	raw := stringField(fields, "fileBase64")
	if raw == "" {
		raw = stringField(fields, "file")
	}
	if raw == "" {
		return nil, nil
	}

	mimeType := normalizeMime(stringField(fields, "fileType"))
	payload := raw
	if m := dataURLPattern.FindStringSubmatch(raw); m != nil {
		mimeType = normalizeMime(m[1])
		payload = m[2]
	}
	payload = strings.Join(strings.Fields(payload), "")

	// reject before decoding anything clearly over the limit
	if int64(len(payload))/4*3 > p.MaxBytes+3 {
		return nil, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File is too large, limit is %d MB", p.MaxBytes/(1024*1024))).WithField("file", "too large")
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("File payload is not valid base64").WithField("file", "invalid base64")
	}
	if len(data) == 0 {
		return nil, nil
	}

	if mimeType == "" {
		mimeType = normalizeMime(mimetype.Detect(data).String())
	}

	name := stringField(fields, "fileName")
	if name == "" {
		name = "upload"
	}
	return NewBufferedUpload(name, mimeType, data), nil
}

func decodeBase64(s string) ([]byte, error) {
	var lastErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func normalizeMime(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(v)
}

func isAllowedExt(ext string) bool {
	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}
