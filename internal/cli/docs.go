package cli

import (
	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/browseropen"
)

// openURL is swapped in tests.
var openURL = browseropen.Open

func newDocsCmd(app *App) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Open the API documentation in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := browseropen.Validate(app.settings.DocsURL)
			if err != nil {
				return writeFailure(cmd, app, codeConfig, err, nil)
			}
			opened := false
			if !printOnly {
				if err := openURL(u); err != nil {
					return writeFailure(cmd, app, "open_failed", err, map[string]any{"url": u})
				}
				opened = true
			}
			return writeData(cmd, app, nil, map[string]any{"url": u, "opened": opened})
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the URL instead of opening it")
	return cmd
}
