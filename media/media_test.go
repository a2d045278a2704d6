package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestDiskUploader_StoresAndShrinks(t *testing.T) {
	dir := t.TempDir()
	u, err := NewDiskUploader(dir, "http://cdn.local/")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), &File{Name: "wide.png", Content: pngOf(t, 2400, 100)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.local/uploads/"), url)

	stored := filepath.Join(dir, strings.TrimPrefix(url, "http://cdn.local/uploads/"))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	img, err := imaging.Open(stored)
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestDiskUploader_RejectsNonImages(t *testing.T) {
	u, err := NewDiskUploader(t.TempDir(), "http://cdn.local")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), &File{Name: "notes.txt", Content: strings.NewReader("hello")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
