package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxFileSize is the upload size limit when none is configured (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Upload rejections. MapError turns these into coded messages.
var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UploadPolicy decides which files may be proxied to the upload endpoints.
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string // MIME types, e.g. "image/png"
}

// CheckedFile is an upload that passed the policy.
type CheckedFile struct {
	Name     string
	MIME     string
	Size     int64
	Contents []byte
}

// Reader returns a fresh reader over the file contents.
func (f CheckedFile) Reader() io.Reader { return bytes.NewReader(f.Contents) }

// Check reads at most MaxSize+1 bytes from r and sniffs the content type.
// The declared extension is not trusted; the name is rewritten to carry the
// detected one.
func (p UploadPolicy) Check(name string, r io.Reader) (CheckedFile, error) {
	if r == nil {
		return CheckedFile{}, ErrNoFile
	}
	limit := p.MaxSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return CheckedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return CheckedFile{}, ErrEmptyFile
	}
	if int64(len(data)) > limit {
		return CheckedFile{}, fmt.Errorf("%w: limit is %s", ErrFileTooLarge, humanSize(limit))
	}

	mt := mimetype.Detect(data)
	if !p.allowed(mt) {
		return CheckedFile{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	return CheckedFile{
		Name:     safeName(name, mt.Extension()),
		MIME:     mt.String(),
		Size:     int64(len(data)),
		Contents: data,
	}, nil
}

func (p UploadPolicy) allowed(mt *mimetype.MIME) bool {
	if len(p.AllowedTypes) == 0 {
		return true
	}
	for _, t := range p.AllowedTypes {
		// Is also accepts aliases and ignores parameters such as charset.
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// safeName strips directories and replaces the extension with ext.
func safeName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "upload"
	}
	return base + ext
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= 1024 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%dB", n)
}
