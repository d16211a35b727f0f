// Package testdata generates frames and slide decks for tests that run the
// capture and presentation pipeline end to end.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// MotionFrames returns n BGR frames of a white square sliding across a black
// background, so consecutive frames differ. The caller closes them.
func MotionFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	side := height / 4
	for i := 0; i < n; i++ {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
		x := (i * side / 2) % (width - side)
		gocv.Rectangle(&m, image.Rect(x, side, x+side, 2*side), color.RGBA{255, 255, 255, 0}, -1)
		frames = append(frames, &m)
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// WriteDeck writes a deck folder root/name holding one solid-colour PNG per
// slide name and returns its path.
func WriteDeck(root, name string, slides ...string) (string, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create deck %s: %w", name, err)
	}

	for i, slide := range slides {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(40*i%256), 80, 160, 0), 90, 160, gocv.MatTypeCV8UC3)
		ok := gocv.IMWrite(filepath.Join(dir, slide), m)
		m.Close()
		if !ok {
			return "", fmt.Errorf("write slide %s/%s", name, slide)
		}
	}
	return dir, nil
}
