package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

func TestExtract(t *testing.T) {
	patterns := []string{"00000", "10000", "01000", "01100", "01110", "01111", "11111", "10001", "01001", "00100"}

	for _, handedness := range []string{"Right", "Left"} {
		for _, s := range patterns {
			t.Run(handedness+"/"+s, func(t *testing.T) {
				want := MustFingers(s)
				hand := detector.HandForFingers(want, handedness)

				got, ok := Extract(&hand, true)

				require.True(t, ok)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestExtract_ThumbFollowsMirroring(t *testing.T) {
	hand := detector.ThumbsUpLandmarks()

	mirrored, _ := Extract(&hand, true)
	raw, _ := Extract(&hand, false)

	assert.True(t, mirrored[Thumb], "thumb should be up in a mirrored frame")
	assert.False(t, raw[Thumb], "the same X ordering means folded in a raw frame")
	assert.Equal(t, mirrored[Index:], raw[Index:], "other fingers do not depend on mirroring")
}

func TestExtract_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		set  *detector.Landmarks
	}{
		{"nil", nil},
		{"empty", &detector.Landmarks{Kind: detector.KindHand}},
		{"partial hand", &detector.Landmarks{Kind: detector.KindHand, Points: make([]detector.Point3D, 20)}},
		{"face mesh", func() *detector.Landmarks { f := detector.FaceWithIris(0.5, 0.5, false); return &f }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.set, true)
			assert.False(t, ok)
			assert.Equal(t, Fingers{}, got)
		})
	}
}

func TestParseFingers(t *testing.T) {
	f, err := ParseFingers("10101")
	require.NoError(t, err)
	assert.Equal(t, Fingers{true, false, true, false, true}, f)
	assert.Equal(t, "10101", f.String())

	for _, bad := range []string{"", "0100", "010000", "01a00"} {
		_, err := ParseFingers(bad)
		assert.Error(t, err, bad)
	}
}

func TestFingers_Up(t *testing.T) {
	f := MustFingers("01100")

	assert.True(t, f.Up())
	assert.True(t, f.Up(Index, Middle))
	assert.False(t, f.Up(Index, Ring))
}
