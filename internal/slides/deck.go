// Package slides holds presentation state: the slide deck, the annotation
// trail drawn over it, and a renderer that composes both into preview frames.
package slides

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrEmptyDeck is returned when a deck folder holds no images.
	ErrEmptyDeck = errors.New("deck has no slides")
	// ErrInvalidDeck is returned for deck names that escape the root.
	ErrInvalidDeck = errors.New("invalid deck name")
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true}

// Deck is an ordered list of slide images with a clamped cursor.
type Deck struct {
	name   string
	slides []string
	index  int
}

// NewDeck builds a deck from slide paths in display order.
func NewDeck(name string, slides []string) (*Deck, error) {
	if len(slides) == 0 {
		return nil, ErrEmptyDeck
	}
	return &Deck{name: name, slides: append([]string(nil), slides...)}, nil
}

// LoadDeck reads the deck folder name under root. Slides are ordered by
// filename length, then lexicographically, so "2.png" sorts before "10.png".
func LoadDeck(root, name string) (*Deck, error) {
	dir, err := deckDir(root, name)
	if err != nil {
		return nil, err
	}
	files, err := listImages(dir)
	if err != nil {
		return nil, fmt.Errorf("load deck %q: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load deck %q: %w", name, ErrEmptyDeck)
	}
	sortSlides(files)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(dir, f)
	}
	return NewDeck(name, paths)
}

// ListDecks returns the names of folders under root that hold at least one
// image. A missing root lists nothing.
func ListDecks(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list decks: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files, err := listImages(filepath.Join(root, e.Name()))
		if err != nil || len(files) == 0 {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func deckDir(root, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeck, name)
	}
	dir := filepath.Join(root, name)
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeck, name)
	}
	return dir, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func sortSlides(files []string) {
	sort.Slice(files, func(i, j int) bool {
		if len(files[i]) != len(files[j]) {
			return len(files[i]) < len(files[j])
		}
		return files[i] < files[j]
	})
}

// Name returns the deck identifier.
func (d *Deck) Name() string { return d.name }

// Len returns the number of slides.
func (d *Deck) Len() int { return len(d.slides) }

// Index returns the current slide index.
func (d *Deck) Index() int { return d.index }

// Current returns the path of the current slide.
func (d *Deck) Current() string { return d.slides[d.index] }

// Slides returns a copy of the slide paths.
func (d *Deck) Slides() []string { return append([]string(nil), d.slides...) }

// Next advances one slide, stopping at the last. It reports whether the
// index changed.
func (d *Deck) Next() bool {
	if d.index >= len(d.slides)-1 {
		return false
	}
	d.index++
	return true
}

// Prev goes back one slide, stopping at the first.
func (d *Deck) Prev() bool {
	if d.index == 0 {
		return false
	}
	d.index--
	return true
}
