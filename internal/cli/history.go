package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/paging"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "history", Short: "Deployment history"}
	cmd.AddCommand(newHistoryListCmd(app))
	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List create and update events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pf.page < 1 {
				return writeFailure(cmd, app, codeInvalidArgs, errors.New("--page must be >= 1"), nil)
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			r := app.service().ListHistory(ctx)
			if r.Err != nil {
				return writeFailure(cmd, app, codeRequestFailed, r.Err, nil)
			}
			pg := paging.Slice(r.Value, pf.page, pf.sizeOr(app.settings.PageSize))
			items := pg.Items
			if items == nil {
				items = []api.HistoryRecord{}
			}
			return writeData(cmd, app, pageMeta(pg, r.Substituted), items)
		},
	}
	pf.register(cmd)
	return cmd
}
