package upload

import (
	"bytes"
	"context"
	"io"
)

// MaxImageSize is the per-file ceiling for product images: 5 MiB.
const MaxImageSize int64 = 5 << 20

// Limits configures a Guard.
type Limits struct {
	// MaxFileSize is the largest accepted file part in bytes, inclusive.
	MaxFileSize int64
	// MaxFiles caps the number of file parts in one request.
	MaxFiles int
	// Field is the multipart field name files are read from.
	Field string
	// Target names what the upload is for; used in logs and messages.
	Target string
	// AllowedTypes lists accepted sniffed MIME types. Empty allows anything.
	AllowedTypes []string
}

// ProductImageLimits are the limits for catalog image uploads.
func ProductImageLimits() Limits {
	return Limits{
		MaxFileSize:  MaxImageSize,
		MaxFiles:     10,
		Field:        "file",
		Target:       "product images",
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}
}

// File is one fully buffered file part.
type File struct {
	Name string
	// ContentType is sniffed from the bytes; DeclaredType is what the client sent.
	ContentType  string
	DeclaredType string
	Size         int64
	Data         []byte
}

// Reader returns a fresh reader over the file contents.
func (f File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Payload is what the Guard hands to the next handler.
type Payload struct {
	Files  []File
	Values map[string]string
	Target string
}

// TotalSize is the sum of all file sizes.
func (p *Payload) TotalSize() int64 {
	var n int64
	for _, f := range p.Files {
		n += f.Size
	}
	return n
}

type payloadKey struct{}

// WithPayload returns a child of ctx carrying p.
func WithPayload(ctx context.Context, p *Payload) context.Context {
	return context.WithValue(ctx, payloadKey{}, p)
}

// FromContext returns the payload stored by Guard.
func FromContext(ctx context.Context) (*Payload, bool) {
	p, ok := ctx.Value(payloadKey{}).(*Payload)
	return p, ok
}
