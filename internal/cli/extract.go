package cli

import (
	"fmt"
	"io"
	"kiki/internal/logging"
	"kiki/pkg/config"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type extractOpts struct {
	lsb        lsbOpts
	yes        bool
	maxMessage int64
}

func extractCommand(root *rootOpts) *cobra.Command {
	opts := extractOpts{}

	extractCmd := &cobra.Command{
		Use:   "extract IMAGE [OUTPUT]",
		Short: "Recover a secret hidden in an image",
		Long: "Recover the secret hidden in IMAGE with the same method, key and options it was embedded with. The " +
			"secret is written to OUTPUT, or stdout when it is absent or -.\n\n" + methodsHelp,
		Example: "kiki extract stego.png secret.txt --key hunter2\nkiki extract stego.bmp -o SEQ",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)

			_, method, err := media.ResolveMethod(args[0], opts.lsb.method)
			if err != nil {
				return err
			}

			file, err := root.loadConfig()
			if err != nil {
				return err
			}
			lsbConfig, err := opts.lsb.lsbConfig(cmd, file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-message") {
				lsbConfig.LargePayloadThreshold = opts.maxMessage
			}

			outputPath := stdio
			if len(args) == 2 {
				outputPath = args[1]
			}

			logger.Debug("Extracting secret",
				"image", args[0],
				"output", outputPath,
				"method", method,
				"key_set", lsbConfig.Key != "",
				"options", lsbConfig.Mode.Option(),
			)

			var confirmer kikiImage.Confirmer = newPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
			if opts.yes {
				confirmer = kikiImage.AlwaysConfirm
			}

			return ExtractSecret(cmd, ExtractParams{
				ImagePath:  args[0],
				OutputPath: outputPath,
				Config:     lsbConfig,
			}, confirmer, logger)
		},
	}

	opts.lsb.bindFlags(extractCmd)
	extractCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Extract messages above --max-message without asking")
	extractCmd.Flags().Int64Var(&opts.maxMessage, "max-message", config.DefaultLargePayloadThreshold, "Message length in bytes above which extraction asks for confirmation, negative to never ask")

	return extractCmd
}

type ExtractParams struct {
	ImagePath string
	// OutputPath of "-" writes the secret to the command's stdout
	OutputPath string
	Config     config.LSBConfig
}

// ExtractSecret recovers the secret from the image at params.ImagePath. The confirmer is consulted when the hidden
// message is above the configured threshold.
func ExtractSecret(cmd *cobra.Command, params ExtractParams, confirmer kikiImage.Confirmer, logger *logging.Logger) error {
	s := NewSpinner(cmd.ErrOrStderr())
	s.Prefix = "Reading image from disk "
	s.Start()
	defer s.Stop()

	stego, err := media.DecodeFile(params.ImagePath)
	if err != nil {
		return err
	}
	bounds := stego.Bounds()
	logger.Debug("Image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	if err = cmd.Context().Err(); err != nil {
		return err
	}

	// the prompt shares stderr with the spinner
	gate := kikiImage.ConfirmFunc(func(length uint32) (bool, error) {
		s.Stop()
		defer s.Start()
		return confirmer.ConfirmLargePayload(length)
	})

	s.Prefix = "Setting up extractor "
	extractor, err := kikiImage.NewImageExtractor(stego, params.Config, gate)
	if err != nil {
		return err
	}

	s.Prefix = "Extracting secret "
	secret, err := extractor.Extract()
	stats := extractor.Stats()
	logger.Debug("Extract stats",
		"data_extraction", stats.DataExtraction.String(),
		"pixels_visited", stats.PixelsVisited,
		"message_length", stats.PayloadSize,
	)
	if err != nil {
		return err
	}

	if params.OutputPath == "" || params.OutputPath == stdio {
		return writeSecret(cmd.OutOrStdout(), secret)
	}

	s.Prefix = "Writing secret to disk "
	if err = os.WriteFile(params.OutputPath, secret, 0644); err != nil {
		return err
	}
	s.FinalMSG = fmt.Sprintf("Extracted %s into %s\n", humanize.IBytes(uint64(len(secret))), params.OutputPath)
	return nil
}

func writeSecret(w io.Writer, secret []byte) error {
	_, err := w.Write(secret)
	return err
}
