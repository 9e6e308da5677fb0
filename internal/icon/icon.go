// Package icon installs source icons. Uploads arrive as PNG or JPEG and are
// re-encoded to webp so every source serves the same format.
package icon

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
)

const quality = 90

// Install decodes the image at srcPath and writes it as
// <iconsRoot>/<sourceID>.webp, returning the icon filename.
func Install(srcPath, iconsRoot, sourceID string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode icon %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(iconsRoot, 0o755); err != nil {
		return "", err
	}
	name := sourceID + ".webp"
	out, err := os.Create(filepath.Join(iconsRoot, name))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := webp.Encode(out, img, &webp.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}
	return name, nil
}
