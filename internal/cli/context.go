package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/wizard"
)

func newContextCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "context", Short: "API context helpers"}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <context>",
		Short: "Check whether an API context is free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := wizard.New()
			s.Details.APIContext = args[0]

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			res, err := s.CheckContext(ctx, app.service())
			if errors.Is(err, api.ErrEmptyContext) {
				return writeFailure(cmd, app, codeInvalidArgs, err, nil)
			}
			if err != nil {
				return writeFailure(cmd, app, codeRequestFailed, err, nil)
			}
			if !res.Available {
				return writeFailure(cmd, app, codeContextInUse, errors.New(res.Message), res)
			}
			return writeData(cmd, app, nil, res)
		},
	})
	return cmd
}
