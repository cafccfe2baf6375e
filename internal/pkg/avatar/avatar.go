package avatar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	// Square size the public page renders the avatar at.
	Size = 200

	FileName = "avatar.jpg"
)

// Process reads an uploaded image, crops it to a centered square of Size
// pixels and writes it as JPEG into dir. Returns the public path under
// /uploads.
func Process(r io.Reader, dir string) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode avatar upload: %w", err)
	}

	img = imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, FileName)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}

	return "/uploads/" + FileName, nil
}
