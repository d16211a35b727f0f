package gesture

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

var frame640 = image.Pt(640, 480)

func TestDefaultTables_Valid(t *testing.T) {
	for mode, table := range DefaultTables() {
		t.Run(string(mode), func(t *testing.T) {
			require.NoError(t, table.Validate())
			assert.Equal(t, mode, table.Mode)
		})
	}
}

func TestClassifier_EveryTableEntry(t *testing.T) {
	for mode, table := range DefaultTables() {
		c, err := NewClassifier(table)
		require.NoError(t, err)

		for _, e := range table.Entries {
			t.Run(string(mode)+"/"+e.Pattern.String(), func(t *testing.T) {
				hand := detector.HandForFingers(e.Pattern, "Right")
				f, ok := Extract(&hand, true)
				require.True(t, ok)

				assert.Equal(t, e.Label, c.Classify(f, &hand, frame640))
				assert.Equal(t, e.Label, c.Classify(f, nil, frame640), "vector match without landmarks")
			})
		}
	}
}

func TestClassifier_UnknownVectorIsNone(t *testing.T) {
	for mode, table := range DefaultTables() {
		c, err := NewClassifier(table)
		require.NoError(t, err)

		known := make(map[Fingers]bool)
		for _, e := range table.Entries {
			known[e.Pattern] = true
		}

		for bits := 0; bits < 32; bits++ {
			var f Fingers
			for i := 0; i < 5; i++ {
				f[i] = bits&(1<<i) != 0
			}
			if known[f] {
				continue
			}
			assert.Equal(t, None, c.Classify(f, nil, frame640), "%s %s", mode, f)
		}
	}
}

func TestClassifier_PinchTakesPrecedence(t *testing.T) {
	tables := DefaultTables()

	t.Run("virtual mouse click by pinch", func(t *testing.T) {
		c, err := NewClassifier(tables[ModeVirtualMouse])
		require.NoError(t, err)

		hand := detector.Pinch(detector.HandForFingers(MustFingers("01000"), "Right"), detector.ThumbTip, detector.IndexTip)
		f, _ := Extract(&hand, true)

		assert.Equal(t, MustFingers("01000"), f, "vector alone would be move")
		assert.Equal(t, Click, c.Classify(f, &hand, frame640))
	})

	t.Run("virtual mouse pinch requires index up", func(t *testing.T) {
		c, err := NewClassifier(tables[ModeVirtualMouse])
		require.NoError(t, err)

		hand := detector.Pinch(detector.HandForFingers(MustFingers("00001"), "Right"), detector.ThumbTip, detector.IndexTip)
		f, _ := Extract(&hand, true)

		assert.Equal(t, ScrollDown, c.Classify(f, &hand, frame640))
	})

	t.Run("sign language fine", func(t *testing.T) {
		c, err := NewClassifier(tables[ModeSignLanguage])
		require.NoError(t, err)

		hand := detector.Pinch(detector.HandForFingers(MustFingers("01110"), "Right"), detector.ThumbTip, detector.IndexTip)
		f, _ := Extract(&hand, true)

		assert.Equal(t, Fine, c.Classify(f, &hand, frame640))
	})

	t.Run("distance scales with frame size", func(t *testing.T) {
		c, err := NewClassifier(tables[ModeSignLanguage])
		require.NoError(t, err)

		hand := detector.HandForFingers(MustFingers("01000"), "Right")
		hand = detector.WithTip(hand, detector.ThumbTip, 0.45, 0.43)
		f, _ := Extract(&hand, true)

		// 0.03 of the frame height: 14px at 480 rows, 60px at 2000 rows.
		assert.Equal(t, Fine, c.Classify(f, &hand, frame640))
		assert.Equal(t, No, c.Classify(f, &hand, image.Pt(2000, 2000)))
	})
}

func TestClassifier_SignLanguageVocabulary(t *testing.T) {
	table := DefaultTables()[ModeSignLanguage]

	labels := make(map[Label]bool)
	for _, e := range table.Entries {
		assert.True(t, e.Label.IsCaption())
		labels[e.Label] = true
	}
	assert.Len(t, labels, 11)
	assert.Len(t, DefaultTables()[ModeDragDrop].Entries, 4)
}

func TestNewClassifier_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
	}{
		{
			name: "duplicate pattern",
			table: &Table{Mode: ModeDragDrop, Entries: []Entry{
				{MustFingers("01000"), Move},
				{MustFingers("01000"), Click},
			}},
		},
		{
			name:  "unknown label",
			table: &Table{Mode: ModeDragDrop, Entries: []Entry{{MustFingers("01000"), Label("teleport")}}},
		},
		{
			name:  "none label",
			table: &Table{Mode: ModeDragDrop, Entries: []Entry{{MustFingers("01000"), None}}},
		},
		{
			name: "pinch out of range",
			table: &Table{Mode: ModeVirtualMouse, Pinches: []PinchRule{
				{A: 4, B: 99, MaxDistance: 30, Label: Click},
			}},
		},
		{
			name: "pinch without distance",
			table: &Table{Mode: ModeVirtualMouse, Pinches: []PinchRule{
				{A: 4, B: 8, Label: Click},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.table)
			assert.True(t, errors.Is(err, ErrInvalidTable), "got %v", err)
		})
	}
}

func TestFaceClassifier(t *testing.T) {
	c := NewFaceClassifier()

	open := detector.FaceWithIris(0.3, 0.6, false)
	blink := detector.FaceWithIris(0.3, 0.6, true)
	hand := detector.OpenPalmLandmarks()

	assert.Equal(t, Move, c.Classify(&open))
	assert.Equal(t, Click, c.Classify(&blink))
	assert.Equal(t, None, c.Classify(&hand))
	assert.Equal(t, None, c.Classify(nil))

	p, ok := PointerSource(&open)
	require.True(t, ok)
	assert.Equal(t, 0.3, p.X)

	p, ok = PointerSource(&hand)
	require.True(t, ok)
	assert.Equal(t, hand.Points[detector.IndexTip], p)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("racing-car")
	assert.True(t, errors.Is(err, ErrUnknownMode))
}

func TestLabel_Vocabulary(t *testing.T) {
	assert.True(t, Move.Valid())
	assert.True(t, Fine.Valid())
	assert.False(t, Label("teleport").Valid())
	assert.Equal(t, "I Love U", ILoveYou.Caption())
	assert.Equal(t, "", Next.Caption())
	assert.Len(t, CaptionLabels(), 12)
}
