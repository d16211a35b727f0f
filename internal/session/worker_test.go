package session

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestWorker_RecognizeHandCount(t *testing.T) {
	tables := gesture.DefaultTables()
	size := image.Pt(640, 480)

	twoHands := append(hand("11111"), detector.HandForFingers(gesture.MustFingers("10000"), "Left"))
	withFace := append(hand("01000"), detector.FaceWithIris(0.5, 0.5, false))

	tests := []struct {
		name  string
		mode  gesture.Mode
		marks []detector.Landmarks
		want  gesture.Label
	}{
		{"sign one hand", gesture.ModeSignLanguage, hand("11111"), gesture.Wait},
		{"sign two hands", gesture.ModeSignLanguage, twoHands, gesture.None},
		{"sign no hands", gesture.ModeSignLanguage, nil, gesture.None},
		{"sign ignores faces", gesture.ModeSignLanguage, append(hand("11111"), detector.FaceWithIris(0.5, 0.5, false)), gesture.Wait},
		{"mouse follows first hand", gesture.ModeVirtualMouse, append(hand("01000"), hand("01111")...), gesture.Move},
		{"mouse with face", gesture.ModeVirtualMouse, withFace, gesture.Move},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := gesture.NewClassifier(tables[tt.mode])
			require.NoError(t, err)
			w := &worker{mode: tt.mode, classifier: c, mirror: true}

			got, source := w.recognize(tt.marks, size)

			assert.Equal(t, tt.want, got)
			if tt.want == gesture.None {
				assert.Nil(t, source)
			} else {
				require.NotNil(t, source)
				assert.Same(t, &tt.marks[0], source)
			}
		})
	}
}
