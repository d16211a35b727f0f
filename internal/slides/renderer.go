package slides

import (
	"fmt"
	"image"
	"image/color"

	lru "github.com/hashicorp/golang-lru/v2"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/gesture"
)

const (
	// DefaultCanvasWidth and DefaultCanvasHeight size the rendered slide.
	DefaultCanvasWidth  = 1280
	DefaultCanvasHeight = 720

	// DefaultCacheSize is the number of decoded slides kept in memory.
	DefaultCacheSize = 8

	strokeThickness = 12
	pointerRadius   = 12
	thumbScale      = 5
)

var annotationColor = color.RGBA{R: 255, A: 255}

// View is the presentation state to draw for one frame.
type View struct {
	Slide   string
	Strokes []Stroke
	Pointer *gesture.Point
}

// Renderer composes slides, annotations and a webcam thumbnail into JPEG
// frames. Decoded slides are kept in an LRU cache.
type Renderer struct {
	width  int
	height int
	cache  *lru.Cache[string, *gocv.Mat]
}

// NewRenderer returns a renderer drawing onto a width×height canvas.
func NewRenderer(width, height, cacheSize int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		width, height = DefaultCanvasWidth, DefaultCanvasHeight
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.NewWithEvict(cacheSize, func(_ string, m *gocv.Mat) {
		m.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("slide cache: %w", err)
	}
	return &Renderer{width: width, height: height, cache: cache}, nil
}

// Size returns the canvas size.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Cached returns the number of decoded slides held.
func (r *Renderer) Cached() int {
	return r.cache.Len()
}

func (r *Renderer) slide(path string) (*gocv.Mat, error) {
	if m, ok := r.cache.Get(path); ok {
		return m, nil
	}
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("decode slide %s", path)
	}
	scaled := gocv.NewMat()
	gocv.Resize(img, &scaled, image.Pt(r.width, r.height), 0, 0, gocv.InterpolationLinear)
	img.Close()
	r.cache.Add(path, &scaled)
	return &scaled, nil
}

// Compose draws v, plus camera as a thumbnail when non-nil, onto a new Mat.
// The caller owns the returned Mat.
func (r *Renderer) Compose(v View, camera *gocv.Mat) (gocv.Mat, error) {
	src, err := r.slide(v.Slide)
	if err != nil {
		return gocv.NewMat(), err
	}
	canvas := src.Clone()

	for _, s := range v.Strokes {
		for i := 1; i < len(s); i++ {
			a, b := toImagePoint(s[i-1]), toImagePoint(s[i])
			gocv.Line(&canvas, a, b, annotationColor, strokeThickness)
		}
		if len(s) == 1 {
			gocv.Circle(&canvas, toImagePoint(s[0]), strokeThickness/2, annotationColor, -1)
		}
	}
	if v.Pointer != nil {
		gocv.Circle(&canvas, toImagePoint(*v.Pointer), pointerRadius, annotationColor, -1)
	}
	if camera != nil && !camera.Empty() {
		r.drawThumbnail(&canvas, camera)
	}
	return canvas, nil
}

// Render composes v and encodes it as JPEG.
func (r *Renderer) Render(v View, camera *gocv.Mat) ([]byte, error) {
	canvas, err := r.Compose(v, camera)
	defer canvas.Close()
	if err != nil {
		return nil, err
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, canvas)
	if err != nil {
		return nil, fmt.Errorf("encode slide: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

func (r *Renderer) drawThumbnail(canvas *gocv.Mat, camera *gocv.Mat) {
	if camera.Type() != canvas.Type() {
		return
	}
	tw, th := r.width/thumbScale, r.height/thumbScale
	thumb := gocv.NewMat()
	defer thumb.Close()
	gocv.Resize(*camera, &thumb, image.Pt(tw, th), 0, 0, gocv.InterpolationArea)

	roi := canvas.Region(image.Rect(r.width-tw, 0, r.width, th))
	defer roi.Close()
	thumb.CopyTo(&roi)
}

// Close releases every cached slide.
func (r *Renderer) Close() {
	r.cache.Purge()
}

func toImagePoint(p gesture.Point) image.Point {
	x, y := p.Round()
	return image.Pt(x, y)
}
