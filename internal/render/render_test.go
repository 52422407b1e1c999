package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokemon-guess-bot/internal/game"
)

// writeSprite writes a solid-colored 30×30 gen1 test sprite for the id.
func writeSprite(t *testing.T, dir string, id int, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	genDir := filepath.Join(dir, "gen1")
	require.NoError(t, os.MkdirAll(genDir, 0o755))

	f, err := os.Create(filepath.Join(genDir, strconv.Itoa(id)+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestSpriteRenderer_FullImage(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, 1, color.RGBA{200, 40, 40, 255})
	r := NewSpriteRenderer(dir)

	data, err := r.FullImage(1)
	require.NoError(t, err)

	img := decode(t, data)
	cr, _, _, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(200), cr>>8)
}

func TestSpriteRenderer_Silhouette(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, 1, color.RGBA{200, 40, 40, 255})
	r := NewSpriteRenderer(dir)

	data, err := r.RoundImage(1, game.ModeSilhouette)
	require.NoError(t, err)

	img := decode(t, data)
	for _, p := range []image.Point{{0, 0}, {15, 15}, {29, 29}} {
		cr, cg, cb, ca := img.At(p.X, p.Y).RGBA()
		assert.Zero(t, cr, "red at %v", p)
		assert.Zero(t, cg, "green at %v", p)
		assert.Zero(t, cb, "blue at %v", p)
		assert.Equal(t, uint32(0xffff), ca, "alpha preserved at %v", p)
	}
}

func TestSpriteRenderer_Spotlight(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, 1, color.RGBA{200, 200, 200, 255})
	r := NewSpriteRenderer(dir)

	data, err := r.RoundImage(1, game.ModeSpotlight)
	require.NoError(t, err)

	img := decode(t, data)
	lit, dark := 0, 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, _, _, _ := img.At(x, y).RGBA()
			if cr>>8 > 100 {
				lit++
			} else {
				dark++
			}
		}
	}
	// The bar must reveal something, and most of the image stays hidden.
	assert.Positive(t, lit)
	assert.Greater(t, dark, lit)
}

func TestSpriteRenderer_MissingSprite(t *testing.T) {
	r := NewSpriteRenderer(t.TempDir())

	_, err := r.FullImage(1)
	assert.Error(t, err)

	_, err = r.FullImage(99999) // outside every generation bucket
	assert.Error(t, err)
}

func TestSpriteRenderer_DailyComposite(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, 1, color.RGBA{200, 40, 40, 255})
	writeSprite(t, dir, 2, color.RGBA{40, 200, 40, 255})
	writeSprite(t, dir, 3, color.RGBA{40, 40, 200, 255})
	r := NewSpriteRenderer(dir)

	data, err := r.DailyComposite([]int32{1, 2, 3}, []int32{2})
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	// Section 0 (id 1) is unguessed: grayscale, darkened.
	cr, cg, cb, _ := img.At(100, 300).RGBA()
	assert.Equal(t, cr, cg)
	assert.Equal(t, cg, cb)
	assert.Less(t, cr>>8, uint32(60))

	// Section 1 (id 2) is guessed: full green.
	_, g2, _, _ := img.At(300, 300).RGBA()
	assert.Equal(t, uint32(200), g2>>8)

	// Divider between sections is white.
	dr, dg, db, _ := img.At(200, 300).RGBA()
	assert.Equal(t, uint32(255), dr>>8)
	assert.Equal(t, uint32(255), dg>>8)
	assert.Equal(t, uint32(255), db>>8)
}
