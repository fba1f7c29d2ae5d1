package core

import (
	"errors"
	"io"
	"strings"
	"testing"
)

var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"

func TestUploadPolicy_Check(t *testing.T) {
	policy := UploadPolicy{
		MaxSize:      64,
		AllowedTypes: []string{"image/png", "application/pdf"},
	}

	tests := []struct {
		name     string
		filename string
		body     io.Reader
		wantErr  error
		wantMIME string
		wantName string
	}{
		{
			name:     "png accepted",
			filename: "panel.png",
			body:     strings.NewReader(pngHeader),
			wantMIME: "image/png",
			wantName: "panel.png",
		},
		{
			name:     "extension follows content",
			filename: "datasheet.jpg",
			body:     strings.NewReader("%PDF-1.4\n%âãÏÓ\n"),
			wantMIME: "application/pdf",
			wantName: "datasheet.pdf",
		},
		{
			name:     "directories stripped",
			filename: "../../etc/logo.png",
			body:     strings.NewReader(pngHeader),
			wantMIME: "image/png",
			wantName: "logo.png",
		},
		{
			name:     "text rejected",
			filename: "notes.png",
			body:     strings.NewReader("just some text"),
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "too large",
			filename: "big.png",
			body:     strings.NewReader(pngHeader + strings.Repeat("x", 64)),
			wantErr:  ErrFileTooLarge,
		},
		{
			name:     "empty",
			filename: "empty.png",
			body:     strings.NewReader(""),
			wantErr:  ErrEmptyFile,
		},
		{
			name:    "missing",
			wantErr: ErrNoFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.Check(tt.filename, tt.body)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Check() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check() unexpected error: %v", err)
			}
			if got.MIME != tt.wantMIME {
				t.Errorf("MIME = %q, want %q", got.MIME, tt.wantMIME)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Size != int64(len(got.Contents)) {
				t.Errorf("Size = %d, contents %d", got.Size, len(got.Contents))
			}
		})
	}
}

func TestUploadPolicy_NoAllowListAcceptsAnything(t *testing.T) {
	f, err := UploadPolicy{}.Check("a.txt", strings.NewReader("plain"))
	if err != nil {
		t.Fatalf("Check() unexpected error: %v", err)
	}
	if !strings.HasPrefix(f.MIME, "text/plain") {
		t.Errorf("MIME = %q, want text/plain", f.MIME)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{10 * 1024 * 1024, "10MB"},
		{1536, "1KB"},
		{12, "12B"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
