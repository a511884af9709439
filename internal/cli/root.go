package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newRootCommand(opts *rootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kiki",
		Short: "Hide messages in the pixels of lossless images",
		Long: "kiki hides a message in the least significant bits of an image and recovers it again, optionally " +
			"scattering the bits over the image in an order derived from a key.\n\n" + methodsHelp,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.cpuProfile == "" && opts.memProfileDir == "" {
				return nil
			}
			var err error
			opts.profiler, err = startProfiler(opts.cpuProfile, opts.memProfileDir, opts.logger(cmd))
			return err
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML file with defaults for mode, thresholds and the server")
	rootCmd.PersistentFlags().StringVar(&opts.cpuProfile, "cpu-profile", "", "Dump CPU profile into the supplied file")
	rootCmd.PersistentFlags().StringVar(&opts.memProfileDir, "mem-profile-dir", "", "Dump memory profiles into the supplied directory")

	rootCmd.AddCommand(embedCommand(opts), extractCommand(opts), serveCommand(opts))
	return rootCmd
}

// Execute runs the command line in args. Profiles are flushed before it returns.
func Execute(ctx context.Context, args []string) error {
	opts := &rootOpts{}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	defer func() {
		opts.profiler.Stop()
	}()

	return rootCmd.ExecuteContext(ctx)
}
