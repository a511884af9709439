package config

import (
	"fmt"
	"kiki/pkg/traversal"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort           = "8080"
	DefaultMaxRequestSize = 64 * 1024 * 1024
)

// File is the layout of the optional YAML configuration file. Command line flags take precedence over it.
type File struct {
	Mode                  string       `yaml:"mode"`
	LargePayloadThreshold int64        `yaml:"large_payload_threshold"`
	PngCompression        string       `yaml:"png_compression"`
	Server                ServerConfig `yaml:"server"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxRequestSize int64    `yaml:"max_request_size"`
	// MaxMessageSize bounds the message length the server agrees to extract, since nobody can confirm it
	MaxMessageSize int64 `yaml:"max_message_size"`
}

func LoadFile(path string) (File, error) {
	var f File
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err = yaml.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	f.PopulateUnsetConfigVars()
	return f, nil
}

func (f *File) PopulateUnsetConfigVars() {
	if f.Server.Port == "" {
		f.Server.Port = DefaultPort
	}
	if f.Server.MaxRequestSize < 1 {
		f.Server.MaxRequestSize = DefaultMaxRequestSize
	}
	if f.Server.MaxMessageSize == 0 {
		f.Server.MaxMessageSize = DefaultLargePayloadThreshold
	}
}

func (f File) LSBConfig() (LSBConfig, error) {
	mode, err := traversal.ParseMode(f.Mode)
	if err != nil {
		return LSBConfig{}, err
	}
	compression, err := ParsePngCompression(f.PngCompression)
	if err != nil {
		return LSBConfig{}, err
	}

	c := LSBConfig{
		Mode:                  mode,
		LargePayloadThreshold: f.LargePayloadThreshold,
		PngCompressionLevel:   compression,
	}
	c.PopulateUnsetConfigVars()
	return c, nil
}
