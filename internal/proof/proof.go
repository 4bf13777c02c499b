// Package proof stores payment receipts attached to contributions.
package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxSize is the largest accepted receipt, in bytes.
const MaxSize = 5 << 20

var (
	ErrDisabled    = errors.New("la carga de comprobantes no está habilitada")
	ErrTooLarge    = errors.New("el comprobante supera 5 MB")
	ErrUnsupported = errors.New("el comprobante debe ser una imagen o un PDF")
)

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Check validates a receipt's size and sniffed content type.
func Check(data []byte) error {
	if len(data) > MaxSize {
		return ErrTooLarge
	}
	if !allowedTypes[http.DetectContentType(data)] {
		return ErrUnsupported
	}
	return nil
}

// Uploader stores a receipt and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, []byte) (string, error) {
	return "", ErrDisabled
}

// uploadTimeout bounds one Cloudinary upload.
const uploadTimeout = 60 * time.Second

// Cloudinary uploads receipts to a Cloudinary folder.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary configures an uploader from a cloudinary:// URL.
func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload validates and uploads data under name, returning the secure URL.
func (c *Cloudinary) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := Check(data); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   c.folder,
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}

	return resp.SecureURL, nil
}
