package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/app"
	"github.com/km-arc/go-winter/framework/config"
	"github.com/km-arc/go-winter/internal/hello"
)

// cli carries the settings shared by every subcommand. Flags win over
// WINTER_* environment variables.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "winter",
		Short: "Inspect and serve a go-winter application",
		Long: `winter loads configuration from the environment, dotenv files and
application.yml, starts the container and either reports on it or serves it.

Examples:
  winter config get server.port --type int
  winter config keys
  winter beans
  winter serve --set server.port=9090`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.v.BindPFlags(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "application.yml", "YAML configuration file")
	flags.StringSlice("env-file", []string{".env"}, "dotenv files, later files win")
	flags.StringToString("set", nil, "override a configuration key (key=value)")
	flags.String("env", "", "application environment (development, production, testing)")

	c.v.SetEnvPrefix("WINTER")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.configCmd(),
		c.beansCmd(),
		c.serveCmd(),
	)
	return root
}

// configOptions turns the shared flags into config.Load options.
func (c *cli) configOptions(cmd *cobra.Command) ([]config.Option, error) {
	sets, err := cmd.Flags().GetStringToString("set")
	if err != nil {
		return nil, err
	}
	return []config.Option{
		config.WithEnvFile(c.v.GetStringSlice("env-file")...),
		config.WithYAMLFile(c.v.GetString("config")),
		config.WithProperties(sets),
	}, nil
}

// resolver builds a standalone resolver, no container.
func (c *cli) resolver(cmd *cobra.Command) (*config.Resolver, error) {
	opts, err := c.configOptions(cmd)
	if err != nil {
		return nil, err
	}
	store, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	return config.NewResolver(store), nil
}

// application starts the container with the hello application.
func (c *cli) application(cmd *cobra.Command, logger *zap.Logger) (*app.Application, error) {
	opts, err := c.configOptions(cmd)
	if err != nil {
		return nil, err
	}
	appOpts := []app.Option{
		app.WithConfig(opts...),
		app.WithProviders(&hello.Provider{}),
	}
	if env := c.v.GetString("env"); env != "" {
		appOpts = append(appOpts, app.WithEnv(env))
	}
	if logger != nil {
		appOpts = append(appOpts, app.WithLogger(logger))
	}
	return app.New(appOpts...)
}
