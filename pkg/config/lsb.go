package config

import (
	"fmt"
	"image/png"
	"kiki/pkg/traversal"
	"strings"
)

const (
	// DefaultLargePayloadThreshold is the decoded message length, in bytes, above which extraction asks before
	// reading the rest of the message
	DefaultLargePayloadThreshold = 1024 * 1024
)

var (
	pngCompressionMapping = map[string]png.CompressionLevel{
		"default": png.DefaultCompression,
		"none":    png.NoCompression,
		"fast":    png.BestSpeed,
		"best":    png.BestCompression,
	}
)

type LSBConfig struct {
	Mode traversal.Mode
	Key  string

	// LargePayloadThreshold of 0 means DefaultLargePayloadThreshold, a negative value disables the check
	LargePayloadThreshold int64
	PngCompressionLevel   png.CompressionLevel
}

func (c *LSBConfig) PopulateUnsetConfigVars() {
	if c.LargePayloadThreshold == 0 {
		c.LargePayloadThreshold = DefaultLargePayloadThreshold
	}
}

// RequiresConfirmation reports whether a message of length bytes is above the large payload threshold.
func (c LSBConfig) RequiresConfirmation(length uint32) bool {
	return c.LargePayloadThreshold >= 0 && int64(length) > c.LargePayloadThreshold
}

// ParsePngCompression maps default, none, fast or best to a png compression level.
func ParsePngCompression(name string) (png.CompressionLevel, error) {
	if name == "" {
		return png.DefaultCompression, nil
	}
	level, found := pngCompressionMapping[strings.ToLower(name)]
	if !found {
		return png.DefaultCompression, fmt.Errorf("unknown png compression %q, options are default, none, fast, best", name)
	}
	return level, nil
}
