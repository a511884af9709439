// Package media loads cover images and writes the modified ones back out. Only lossless formats are accepted as
// output since any recompression destroys the hidden bits.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format is a lossless image format that can carry LSB data.
type Format int

const (
	PNG Format = iota
	BMP
)

const (
	MethodLSB = "LSB"
)

var (
	ErrUnsupportedFormat = errors.New("image format is not supported")
	ErrMissingExtension  = errors.New("file is missing an extension")
	ErrUnsupportedMethod = errors.New("method is not supported")

	supportedMethods = map[Format][]string{
		PNG: {MethodLSB},
		BMP: {MethodLSB},
	}
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	default:
		return "<unknown>"
	}
}

func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

// ParseFormat maps a format name or file extension, with or without the leading dot, to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	default:
		return PNG, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return PNG, fmt.Errorf("%w: %s", ErrMissingExtension, path)
	}
	return ParseFormat(ext)
}

func SupportedMethods(f Format) []string {
	return supportedMethods[f]
}

// ResolveMethod picks the method to use for the file at path. An empty method selects the first one the format
// supports.
func ResolveMethod(path, method string) (Format, string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return format, "", err
	}

	supported := SupportedMethods(format)
	if method == "" {
		return format, supported[0], nil
	}
	if !slices.Contains(supported, strings.ToUpper(method)) {
		return format, "", fmt.Errorf("%w: %s is not available for %s, use one of %v", ErrUnsupportedMethod, method, format, supported)
	}
	return format, strings.ToUpper(method), nil
}
