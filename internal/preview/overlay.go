package preview

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

var (
	landmarkColor = color.RGBA{G: 255, A: 255}
	textColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Annotate draws landmarks and an optional label onto frame in place.
// Face meshes only draw their iris centre.
func Annotate(frame *gocv.Mat, marks []detector.Landmarks, label string) {
	if frame == nil || frame.Empty() {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	for i := range marks {
		m := &marks[i]
		switch m.Kind {
		case detector.KindFace:
			if m.Len() > detector.IrisCenter {
				gocv.Circle(frame, pixel(m, detector.IrisCenter, w, h), 6, landmarkColor, 2)
			}
		default:
			for j := 0; j < m.Len(); j++ {
				gocv.Circle(frame, pixel(m, j, w, h), 4, landmarkColor, -1)
			}
		}
	}

	if label != "" {
		gocv.PutText(frame, label, image.Pt(20, 50), gocv.FontHersheySimplex, 1.5, textColor, 3)
	}
}

func pixel(m *detector.Landmarks, i, w, h int) image.Point {
	x, y := m.Pixel(i, w, h)
	return image.Pt(int(x), int(y))
}

// Encode returns frame as JPEG bytes.
func Encode(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
