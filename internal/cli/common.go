package cli

import (
	"errors"
	"fmt"
	"io"
	"kiki/internal/logging"
	"kiki/pkg/config"
	"kiki/pkg/model"
	"kiki/pkg/traversal"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const stdio = "-"

func NewSpinner(w io.Writer) *spinner.Spinner {
	return spinner.New(spinner.CharSets[4], 100*time.Millisecond, spinner.WithWriter(w))
}

type rootOpts struct {
	configPath    string
	verbose       bool
	cpuProfile    string
	memProfileDir string

	profiler *profiler
}

func (o *rootOpts) logger(cmd *cobra.Command) *logging.Logger {
	return logging.BuildLogger(cmd.ErrOrStderr(), o.verbose)
}

// loadConfig reads the --config file, or returns the defaults when none was given.
func (o *rootOpts) loadConfig() (config.File, error) {
	if o.configPath == "" {
		var f config.File
		f.PopulateUnsetConfigVars()
		return f, nil
	}
	return config.LoadFile(o.configPath)
}

// lsbOpts are the flags shared by embed and extract
type lsbOpts struct {
	method  string
	key     string
	askKey  bool
	options string
}

func (o *lsbOpts) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.method, "method", "m", "", "Steganography method, defaults to the first one the image format supports")
	cmd.Flags().StringVarP(&o.key, "key", "k", "", "Key seeding the random pixel order")
	cmd.Flags().BoolVar(&o.askKey, "ask-key", false, "Read the key from the terminal without echoing it")
	cmd.Flags().StringVarP(&o.options, "options", "o", "", "Method options: SEQ or RNG")
	cmd.MarkFlagsMutuallyExclusive("key", "ask-key")
}

// lsbConfig layers the command line flags over the config file.
func (o *lsbOpts) lsbConfig(cmd *cobra.Command, file config.File) (config.LSBConfig, error) {
	c, err := file.LSBConfig()
	if err != nil {
		return c, err
	}

	if cmd.Flags().Changed("options") {
		if c.Mode, err = traversal.ParseMode(o.options); err != nil {
			return c, err
		}
	}

	c.Key = o.key
	if o.askKey {
		if c.Key, err = readKey(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return c, err
		}
	}
	return c, nil
}

func readKey(in io.Reader, out io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New("--ask-key needs an interactive terminal")
	}

	fmt.Fprint(out, "Key: ")
	key, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	return string(key), err
}

// readSecret loads the message to hide from path, or from stdin when path is empty or "-".
func readSecret(path string, stdin io.Reader) (model.Payload, error) {
	if path == "" || path == stdio {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return model.Payload{}, fmt.Errorf("reading secret from stdin: %w", err)
		}
		return model.Payload{Name: "stdin", Content: content}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return model.Payload{}, err
	}
	return model.Payload{Name: filepath.Base(path), Content: content}, nil
}
