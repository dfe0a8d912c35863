package render

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// EncodeWebP writes the image losslessly.
func EncodeWebP(w io.Writer, img *image.NRGBA) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("render: encode webp: %w", err)
	}
	return nil
}

// EncodeTGA writes the image as an uncompressed Targa file.
func EncodeTGA(w io.Writer, img *image.NRGBA) error {
	if err := tga.Encode(w, img); err != nil {
		return fmt.Errorf("render: encode tga: %w", err)
	}
	return nil
}

// WriteImage picks the encoder from the file extension (.webp or .tga)
// and writes atomically enough for our purposes: create, encode, close.
func WriteImage(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		err = EncodeTGA(f, img)
	case ".webp":
		err = EncodeWebP(f, img)
	default:
		err = fmt.Errorf("render: unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}
