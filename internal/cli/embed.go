package cli

import (
	"fmt"
	"io"
	"kiki/internal/logging"
	"kiki/pkg/config"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"kiki/pkg/model"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const methodsHelp = `Methods:
  LSB   least significant bit of the red, green and blue channels (png, bmp)

Method options:
  RNG   visit pixels in an order derived from the key (default)
  SEQ   visit pixels row by row from the top left corner`

type embedOpts struct {
	lsb            lsbOpts
	pngCompression string
}

func embedCommand(root *rootOpts) *cobra.Command {
	opts := embedOpts{}

	embedCmd := &cobra.Command{
		Use:   "embed IMAGE OUTPUT [SECRET]",
		Short: "Hide a secret in an image",
		Long: "Hide a secret in a copy of IMAGE and write it to OUTPUT. The secret is read from SECRET, or stdin when " +
			"it is absent or -. The output format follows the OUTPUT extension.\n\n" + methodsHelp,
		Example: "kiki embed cover.png stego.png secret.txt --key hunter2\necho hello | kiki embed cover.bmp stego.bmp -o SEQ",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)

			format, method, err := media.ResolveMethod(args[1], opts.lsb.method)
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
			if cmd.Flags().Changed("png-compression") {
				if lsbConfig.PngCompressionLevel, err = config.ParsePngCompression(opts.pngCompression); err != nil {
					return err
				}
			}

			secretPath := stdio
			if len(args) == 3 {
				secretPath = args[2]
			}
			secret, err := readSecret(secretPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			logger.Debug("Embedding secret",
				"image", args[0],
				"output", args[1],
				"secret", secret.Name,
				"secret_size", humanize.IBytes(uint64(len(secret.Content))),
				"method", method,
				"key_set", lsbConfig.Key != "",
				"options", lsbConfig.Mode.Option(),
			)

			return EmbedSecret(cmd, EmbedParams{
				ImagePath:  args[0],
				OutputPath: args[1],
				Format:     format,
				Secret:     secret,
				Config:     lsbConfig,
			}, logger)
		},
	}

	opts.lsb.bindFlags(embedCmd)
	embedCmd.Flags().StringVar(&opts.pngCompression, "png-compression", "default", "Compression for png output. Options are default, none, fast, best")

	return embedCmd
}

type EmbedParams struct {
	ImagePath  string
	OutputPath string
	Format     media.Format
	Secret     model.Payload
	Config     config.LSBConfig
}

// EmbedSecret hides params.Secret in the image at params.ImagePath and writes the result to params.OutputPath.
// Progress is shown on the command's stderr.
func EmbedSecret(cmd *cobra.Command, params EmbedParams, logger *logging.Logger) error {
	s := NewSpinner(cmd.ErrOrStderr())
	s.Prefix = "Reading cover image from disk "
	s.Start()
	defer s.Stop()

	cover, err := media.DecodeFile(params.ImagePath)
	if err != nil {
		return err
	}
	bounds := cover.Bounds()
	logger.Debug("Cover image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	s.Prefix = "Setting up embedder "
	embedder, err := kikiImage.NewImageEmbedder(cover, params.Config)
	if err != nil {
		return err
	}
	logger.Debug("Cover capacity", "capacity", humanize.IBytes(uint64(embedder.Capacity())))

	if err = cmd.Context().Err(); err != nil {
		return err
	}

	s.Prefix = "Embedding secret "
	if err = embedder.Embed(params.Secret.Content); err != nil {
		return err
	}

	s.Prefix = fmt.Sprintf("Generating output %s image ", params.Format)
	if err = writeImage(params.OutputPath, func(w io.Writer) error {
		return embedder.WriteEncoded(w, params.Format)
	}); err != nil {
		return err
	}

	s.FinalMSG = fmt.Sprintf("Generated %s with %s hidden in it\n", params.OutputPath, humanize.IBytes(uint64(len(params.Secret.Content))))

	stats := embedder.Stats()
	logger.Debug("Embed stats",
		"setup", stats.Setup.String(),
		"data_embedding", stats.DataEmbedding.String(),
		"output_image_encoding", stats.OutputImageEncoding.String(),
		"pixels_visited", stats.PixelsVisited,
		"bits_written", stats.BitsWritten,
		"psnr", stats.HumanizedPSNR(),
	)
	return nil
}

func writeImage(path string, encode func(w io.Writer) error) error {
	outputFile, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = encode(outputFile); err != nil {
		outputFile.Close()
		return err
	}
	return outputFile.Close()
}
