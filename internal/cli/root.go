package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/config"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/observability"
)

type rootOptions struct {
	envFile    string
	logger     *zap.Logger
	configOpts []config.Option
}

// NewRootCmd builds the cheatstack command tree. Running it without a subcommand starts the server.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "cheatstack",
		Short:         "Developer cheatsheet catalog and Markdown preview service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logger != nil {
				return nil
			}
			logger, err := observability.NewCLILogger()
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load before the environment (default .env)")

	serve := ServeCmd(opts)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		RenderCmd(),
		SearchCmd(opts),
		ShowCmd(opts),
	)
	return root
}
