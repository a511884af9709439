// Package traversal produces the sequence of distinct pixel coordinates that bits are written to and read from.
// Coordinates are relative to the image bounds, so (0, 0) is always the top left pixel.
package traversal

import (
	"image"
	"kiki/pkg/keyseed"
	"math/rand/v2"
)

// Traversal hands out distinct pixel coordinates, one per call to Next, until the image is exhausted.
// The only implementations are the sequential and random traversals in this package.
type Traversal interface {
	Next() (image.Point, bool)
	Mode() Mode
	sealed()
}

// New builds the traversal for mode over a width x height image. key only influences Random.
func New(mode Mode, width, height int, key string) Traversal {
	switch mode {
	case Sequential:
		return NewSequential(width, height)
	default:
		return NewRandom(width, height, keyseed.NewRandFromKey(key))
	}
}

type sequential struct {
	width, height int
	cursor        int
}

func NewSequential(width, height int) Traversal {
	return &sequential{width: max(width, 0), height: max(height, 0)}
}

func (s *sequential) Next() (image.Point, bool) {
	if s.cursor >= s.width*s.height {
		return image.Point{}, false
	}
	p := image.Point{X: s.cursor % s.width, Y: s.cursor / s.width}
	s.cursor++
	return p, true
}

func (s *sequential) Mode() Mode {
	return Sequential
}

func (s *sequential) sealed() {}

// random draws coordinates uniformly and redraws any coordinate it already handed out. Redraws become frequent once
// most of the image has been visited.
type random struct {
	width, height int
	rng           *rand.Rand
	used          map[int]struct{}
}

func NewRandom(width, height int, rng *rand.Rand) Traversal {
	return &random{
		width:  max(width, 0),
		height: max(height, 0),
		rng:    rng,
		used:   make(map[int]struct{}),
	}
}

func (r *random) Next() (image.Point, bool) {
	if len(r.used) >= r.width*r.height {
		return image.Point{}, false
	}

	for {
		x := r.rng.IntN(r.width)
		y := r.rng.IntN(r.height)
		idx := y*r.width + x
		if _, found := r.used[idx]; !found {
			r.used[idx] = struct{}{}
			return image.Point{X: x, Y: y}, true
		}
	}
}

func (r *random) Mode() Mode {
	return Random
}

func (r *random) sealed() {}
