package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-client/internal/app"
	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/credential"
	"github.com/vovakirdan/wirechat-client/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		creds      credential.Credentials
		noColor    bool
	)

	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "wirechat",
		Short:         "Chat in a wirechat room from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			boot := log.New("info", os.Stderr)
			cfg, path, err := config.Load(boot, configPath, cmd.Flags())
			if err != nil {
				fmt.Fprintf(os.Stderr, "config: %v\n", err)
				return err
			}

			logger := log.New(cfg.LogLevel, os.Stderr)
			logger.Debug().Str("config", path).Str("server", cfg.Server).Msg("configuration loaded")

			application, err := app.New(app.Options{
				Config:      cfg,
				Credentials: creds,
				NoColor:     noColor,
			}, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize client")
				return err
			}
			defer application.Close()

			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("client exited with error")
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to the config file")
	flags.String("server", defaults.Server, "room server host:port")
	flags.Bool("secure", defaults.Secure, "connect with wss")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("credentials-path", defaults.CredentialsPath, "SQLite file holding the saved username and room")
	flags.Bool("reconnect", defaults.Reconnect.Enabled, "start a new session after a lost connection")
	flags.StringVarP(&creds.Username, "user", "u", "", "username (asked for when not saved)")
	flags.StringVarP(&creds.Room, "room", "r", "", "room to join (asked for when not saved)")
	flags.BoolVar(&noColor, "no-color", false, "disable coloured output")

	return cmd
}
