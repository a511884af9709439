package cli

import (
	"kiki/internal/server"
	"kiki/pkg/config"

	"github.com/spf13/cobra"
)

func serveCommand(root *rootOpts) *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:     "serve",
		Short:   "Serve an API to embed and extract secrets over the web",
		Example: "kiki serve --port 8888\nkiki serve --config kiki.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				file.Server.Port = port
			}

			srv, err := server.New(file, root.logger(cmd))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	command.Flags().StringVar(&port, "port", config.DefaultPort, "Port on which to start the server")

	return command
}
