package cli

import (
	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/buildinfo"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Current()
			return writeData(cmd, app, nil, map[string]any{
				"version":    info.Version,
				"rawVersion": buildinfo.Version,
				"commit":     info.Commit,
				"date":       info.Date,
			})
		},
	}
}
