package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/configstore"
	"github.com/gwportal/gwportal-cli/internal/format"
	"github.com/gwportal/gwportal-cli/internal/logging"
	"github.com/gwportal/gwportal-cli/internal/tui"
)

type App struct {
	Format     string
	PrettyJSON bool
	APIURL     string
	DocsURL    string
	LogLevel   string

	// Fallbacks overrides offlineFallbacks when the flag was given.
	Fallbacks    bool
	fallbacksSet bool

	settings configstore.Settings
	logger   *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "gwportal",
		Short:        "Self-service API gateway onboarding portal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.fallbacksSet = cmd.Flags().Changed("fallbacks")
			return app.resolve()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("GWPORTAL_FORMAT", format.JSON), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Gateway base URL (default from config)")
	cmd.PersistentFlags().StringVar(&app.DocsURL, "docs-url", "", "Documentation URL (default from config)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.Fallbacks, "fallbacks", true, "Substitute sample data when the gateway is unreachable")

	cmd.AddCommand(newAPIsCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newContextCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))
	cmd.AddCommand(newMockServerCmd(app))

	return cmd
}

// resolve layers flags over the resolved config.
func (app *App) resolve() error {
	s, err := configstore.Resolve()
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.APIURL); v != "" {
		s.APIURL = v
	}
	if v := strings.TrimSpace(app.DocsURL); v != "" {
		s.DocsURL = v
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		s.LogLevel = v
	}
	if app.fallbacksSet {
		s.OfflineFallbacks = app.Fallbacks
	}
	s.LogLevel = logging.LevelFromEnv(s.LogLevel)
	app.settings = s
	return nil
}

func (app *App) log() *zap.Logger {
	if app.logger == nil {
		app.logger = logging.NewOrNop(logging.Config{Level: app.settings.LogLevel, Output: "stderr"})
	}
	return app.logger
}

func (app *App) service() *api.Service {
	c := api.Client{
		BaseURL: app.settings.APIURL,
		HTTP:    &http.Client{Timeout: app.settings.Timeout()},
	}
	return api.NewService(c, app.settings.OfflineFallbacks, app.log())
}

// requestContext bounds one backend call by the configured timeout.
func (app *App) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, app.settings.Timeout())
}

func runTUI(app *App) error {
	logger := logging.NewOrNop(logging.Config{Level: app.settings.LogLevel, Output: logging.DefaultFile()})
	defer func() { _ = logger.Sync() }()
	app.logger = logger

	return tui.Run(tui.Config{
		Backend:  app.service(),
		DocsURL:  app.settings.DocsURL,
		PageSize: app.settings.PageSize,
		Timeout:  app.settings.Timeout(),
		Logger:   logger,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
