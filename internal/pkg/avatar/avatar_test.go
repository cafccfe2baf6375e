package avatar

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	// Non-square source so the centered crop actually does something.
	src := image.NewNRGBA(image.Rect(0, 0, 400, 300))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	dir := t.TempDir()
	publicPath, err := Process(&buf, dir)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+FileName, publicPath)

	out, err := imaging.Open(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, Size, out.Bounds().Dx())
	assert.Equal(t, Size, out.Bounds().Dy())
}

func TestProcess_RejectsNonImage(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")), t.TempDir())
	assert.Error(t, err)
}
