package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/paging"
	"github.com/gwportal/gwportal-cli/internal/wizard"
)

func newAPIsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "apis", Short: "List, inspect and deploy APIs"}
	cmd.AddCommand(newAPIsListCmd(app))
	cmd.AddCommand(newAPIsGetCmd(app))
	cmd.AddCommand(newAPIsCreateCmd(app))
	cmd.AddCommand(newAPIsUpdateCmd(app))
	return cmd
}

// pageFlags are shared by the listing commands.
type pageFlags struct {
	page int
	size int
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&p.size, "page-size", 0, "Rows per page (default from config)")
}

func (p pageFlags) sizeOr(fallback int) int {
	if p.size > 0 {
		return p.size
	}
	return fallback
}

func pageMeta[T any](pg paging.Page[T], substituted bool) map[string]any {
	return map[string]any{
		"page":        pg.Number,
		"pageSize":    pg.Size,
		"totalPages":  pg.TotalPages,
		"total":       pg.Total,
		"summary":     pg.Summary(),
		"substituted": substituted,
	}
}

func newAPIsListCmd(app *App) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployed APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pf.page < 1 {
				return writeFailure(cmd, app, codeInvalidArgs, errors.New("--page must be >= 1"), nil)
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			r := app.service().ListAPIs(ctx)
			if r.Err != nil {
				return writeFailure(cmd, app, codeRequestFailed, r.Err, nil)
			}
			pg := paging.Slice(r.Value, pf.page, pf.sizeOr(app.settings.PageSize))
			items := pg.Items
			if items == nil {
				items = []api.APIRecord{}
			}
			return writeData(cmd, app, pageMeta(pg, r.Substituted), items)
		},
	}
	pf.register(cmd)
	return cmd
}

func newAPIsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one API with its form fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			r := app.service().FetchAPI(ctx, api.ID(strings.TrimSpace(args[0])))
			if r.Err != nil {
				return writeFailure(cmd, app, codeRequestFailed, r.Err, nil)
			}
			return writeData(cmd, app, nil, r.Value)
		},
	}
}

// formFlags binds one flag per wizard field.
type formFlags struct {
	details forms.Details
	meta    forms.MetaData
}

func (f *formFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.details.GatewayType, "gateway-type", forms.GatewayConsumer, "Gateway type ("+strings.Join(forms.GatewayTypes, "|")+")")
	fs.StringVar(&f.details.DeploymentModel, "deployment-model", "", "Deployment model ("+strings.Join(forms.DeploymentModels, "|")+")")
	fs.StringVar(&f.details.BasePath, "base-path", "", "Base path, e.g. /payments")
	fs.StringVar(&f.details.APIContext, "context", "", "API context, e.g. /payments/v1")
	fs.StringVar(&f.meta.APIName, "name", "", "API name")
	fs.StringVar(&f.meta.APIVersion, "version", "", "API version")
	fs.StringVar(&f.meta.Environment, "environment", "", "Environment ("+strings.Join(forms.Environments, "|")+")")
	fs.StringVar(&f.meta.Owner, "owner", "", "Owning team")
	fs.StringVar(&f.meta.ExpiryDate, "expiry-date", "", "Expiry date (YYYY-MM-DD)")
	fs.StringVar(&f.meta.Security, "security", "", "Security ("+strings.Join(forms.SecurityOptions, "|")+")")
}

// apply copies every flag into the session, or only the changed ones when
// onlyChanged is set.
func (f *formFlags) apply(fs *pflag.FlagSet, s *wizard.Session, onlyChanged bool) {
	set := func(name string, dst *string, v string) {
		if !onlyChanged || fs.Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("gateway-type", &s.Details.GatewayType, f.details.GatewayType)
	set("deployment-model", &s.Details.DeploymentModel, f.details.DeploymentModel)
	set("base-path", &s.Details.BasePath, f.details.BasePath)
	set("context", &s.Details.APIContext, f.details.APIContext)
	set("name", &s.MetaData.APIName, f.meta.APIName)
	set("version", &s.MetaData.APIVersion, f.meta.APIVersion)
	set("environment", &s.MetaData.Environment, f.meta.Environment)
	set("owner", &s.MetaData.Owner, f.meta.Owner)
	set("expiry-date", &s.MetaData.ExpiryDate, f.meta.ExpiryDate)
	set("security", &s.MetaData.Security, f.meta.Security)
}

func newAPIsCreateCmd(app *App) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Deploy a new API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := wizard.New()
			ff.apply(cmd.Flags(), s, false)
			return submit(cmd, app, s)
		},
	}
	ff.register(cmd.Flags())
	return cmd
}

func newAPIsUpdateCmd(app *App) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Redeploy an existing API; unset flags keep the stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			s := wizard.New()
			target := api.APIRecord{ID: api.ID(strings.TrimSpace(args[0]))}
			if err := s.EnterEditMode(ctx, app.service(), target); err != nil {
				return writeFailure(cmd, app, codeRequestFailed, err, nil)
			}
			ff.apply(cmd.Flags(), s, true)
			return submit(cmd, app, s)
		},
	}
	ff.register(cmd.Flags())
	return cmd
}

// submit walks the session through both form steps and sends it.
func submit(cmd *cobra.Command, app *App, s *wizard.Session) error {
	for s.Step() != wizard.StepReview {
		if err := s.Advance(); err != nil {
			return writeFailure(cmd, app, codeValidation, err, nil)
		}
	}

	ctx, cancel := app.requestContext(cmd)
	defer cancel()

	out, err := s.Submit(ctx, app.service())
	if err != nil {
		return writeFailure(cmd, app, failureCode(err, codeDeploymentFailed), err, nil)
	}
	return writeData(cmd, app, nil, map[string]any{
		"mode":    out.Mode.String(),
		"id":      out.ID,
		"message": out.Message,
		"assumed": out.Assumed,
	})
}
