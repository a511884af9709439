package traversal

import (
	"fmt"
	"strings"
)

// Mode selects the order in which pixels are visited.
type Mode int

const (
	// Random visits pixels in an order drawn from the key seeded generator. It is the default.
	Random Mode = iota
	// Sequential visits pixels in raster order, starting from the top left.
	Sequential
)

// UnknownModeError is returned when a mode option cannot be parsed.
type UnknownModeError struct {
	Option string
}

func (e UnknownModeError) Error() string {
	return fmt.Sprintf("unknown pixel traversal option %q, expected SEQ or RNG", e.Option)
}

// Option returns the option name used on the command line.
func (m Mode) Option() string {
	switch m {
	case Sequential:
		return "SEQ"
	default:
		return "RNG"
	}
}

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	default:
		return "<unknown>"
	}
}

// ParseMode parses SEQ or RNG, case insensitively. An empty option is Random.
func ParseMode(option string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(option)) {
	case "", "RNG":
		return Random, nil
	case "SEQ":
		return Sequential, nil
	default:
		return Random, UnknownModeError{Option: option}
	}
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.Option()), nil
}
