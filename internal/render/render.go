// Package render produces the concealed and revealed round images.
// The game controllers only see the Renderer interface; the pixel work
// lives in the sprite-backed implementation below.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/pokedex"
)

// Renderer is the reveal capability consumed by the session and daily
// controllers.
type Renderer interface {
	// RoundImage returns the initial, concealed image for a round.
	RoundImage(id int, mode game.Mode) ([]byte, error)
	// FullImage returns the plain sprite, used on reveal.
	FullImage(id int) ([]byte, error)
	// DailyComposite renders the three-section daily canvas. Sections
	// whose entity id appears in guessed are shown in full color, the
	// rest are darkened silhouettes.
	DailyComposite(ids []int32, guessed []int32) ([]byte, error)
}

const (
	dailyCanvasSize = 600
	dailyDividerPx  = 4
	// Luminance factor for unguessed daily sections.
	dailyShade = 0.2
	// Spotlight bar width as a fraction of the sprite width.
	spotlightBarFrac = 0.08
)

// SpriteRenderer renders from PNG sprites laid out as <dir>/gen<N>/<id>.png.
type SpriteRenderer struct {
	dir string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSpriteRenderer creates a renderer reading sprites under dir.
func NewSpriteRenderer(dir string) *SpriteRenderer {
	return &SpriteRenderer{
		dir: dir,
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

// spritePath resolves the sprite file for an id via its generation bucket.
func (r *SpriteRenderer) spritePath(id int) (string, error) {
	gen := pokedex.GenerationOf(id)
	if gen == 0 {
		return "", fmt.Errorf("no sprite bucket for id %d", id)
	}
	return filepath.Join(r.dir, fmt.Sprintf("gen%d", gen), fmt.Sprintf("%d.png", id)), nil
}

func (r *SpriteRenderer) loadSprite(id int) (image.Image, error) {
	path, err := r.spritePath(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sprite for id %d: %w", id, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sprite for id %d: %w", id, err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// FullImage returns the sprite unmodified.
func (r *SpriteRenderer) FullImage(id int) ([]byte, error) {
	img, err := r.loadSprite(id)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// RoundImage conceals the sprite according to the mode.
func (r *SpriteRenderer) RoundImage(id int, mode game.Mode) ([]byte, error) {
	img, err := r.loadSprite(id)
	if err != nil {
		return nil, err
	}

	switch mode {
	case game.ModeSilhouette:
		img = silhouette(img)
	case game.ModeSpotlight:
		r.mu.Lock()
		angle := r.rng.Float64() * math.Pi
		r.mu.Unlock()
		img = spotlight(img, angle)
	}
	return encodePNG(img)
}

// silhouette blacks out every pixel while preserving alpha, so the
// outline stays recognisable.
func silhouette(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := src.At(x, y).RGBA()
			dst.SetRGBA(x, y, color.RGBA{A: uint8(a >> 8)})
		}
	}
	return dst
}

// spotlight keeps only a bar through the image center at the given
// angle; everything else goes black.
func spotlight(src image.Image, angle float64) image.Image {
	b := src.Bounds()
	w := float64(b.Dx())
	halfBar := math.Max(10, w*spotlightBarFrac/2)

	cx := float64(b.Min.X) + w/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	// Unit normal of the bar's center line.
	nx, ny := -math.Sin(angle), math.Cos(angle)

	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dist := math.Abs((float64(x)-cx)*nx + (float64(y)-cy)*ny)
			if dist <= halfBar {
				dst.Set(x, y, src.At(x, y))
			}
		}
	}
	return dst
}

// DailyComposite renders the 600×600 daily canvas: three vertical
// sections, section i holding the horizontal third-crop i of entity
// i's sprite, divided by white lines.
func (r *SpriteRenderer) DailyComposite(ids []int32, guessed []int32) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, dailyCanvasSize, dailyCanvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	sectionW := dailyCanvasSize / len(ids)
	for i, id := range ids {
		sprite, err := r.loadSprite(int(id))
		if err != nil {
			return nil, err
		}

		revealed := false
		for _, g := range guessed {
			if g == id {
				revealed = true
				break
			}
		}

		dstRect := image.Rect(i*sectionW, 0, (i+1)*sectionW, dailyCanvasSize)
		drawThirdCrop(canvas, dstRect, sprite, i, revealed)

		if i < len(ids)-1 {
			divider := image.Rect((i+1)*sectionW-dailyDividerPx/2, 0,
				(i+1)*sectionW+dailyDividerPx/2, dailyCanvasSize)
			draw.Draw(canvas, divider, image.NewUniform(color.White), image.Point{}, draw.Src)
		}
	}
	return encodePNG(canvas)
}

// drawThirdCrop scales the sprite's horizontal third number `section`
// into dstRect using nearest-neighbour sampling. Unrevealed sections
// are grayscaled and darkened to dailyShade luminance.
func drawThirdCrop(dst *image.RGBA, dstRect image.Rectangle, sprite image.Image, section int, revealed bool) {
	sb := sprite.Bounds()
	thirdW := sb.Dx() / 3
	srcX0 := sb.Min.X + section*thirdW

	dw, dh := dstRect.Dx(), dstRect.Dy()
	for dy := 0; dy < dh; dy++ {
		sy := sb.Min.Y + dy*sb.Dy()/dh
		for dx := 0; dx < dw; dx++ {
			sx := srcX0 + dx*thirdW/dw
			cr, cg, cb, ca := sprite.At(sx, sy).RGBA()
			if ca == 0 {
				continue // keep the black backdrop
			}

			var out color.RGBA
			if revealed {
				out = color.RGBA{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)}
			} else {
				avg := float64((cr>>8)+(cg>>8)+(cb>>8)) / 3 * dailyShade
				v := uint8(avg)
				out = color.RGBA{v, v, v, uint8(ca >> 8)}
			}
			dst.SetRGBA(dstRect.Min.X+dx, dstRect.Min.Y+dy, out)
		}
	}
}
