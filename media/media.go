// Package media stores uploaded images and hands back a public URL for them.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// MaxWidth bounds stored images; narrower images are kept as is.
const MaxWidth = 1200

// File is an uploaded image as received from the client.
type File struct {
	Name    string
	Content io.Reader
}

type Uploader interface {
	Upload(ctx context.Context, f *File) (string, error)
}

// DiskUploader re-encodes images to JPEG under Dir and serves them from BaseURL.
type DiskUploader struct {
	Dir     string
	BaseURL string
}

func NewDiskUploader(dir, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskUploader{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *DiskUploader) Upload(ctx context.Context, f *File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, err := imaging.Decode(f.Content, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, f.Name, err)
	}
	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(u.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return u.BaseURL + "/uploads/" + name, nil
}
