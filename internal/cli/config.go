package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/configstore"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Show or change portal settings"}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings and the files they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userPath, _ := configstore.DefaultPath()
			projectPath, _ := configstore.ProjectPath()
			return writeData(cmd, app, map[string]any{
				"userPath":    userPath,
				"projectPath": projectPath,
				"keys":        configstore.Keys(),
			}, app.settings)
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	var project bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a key in the user config (empty value clears it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configstore.DefaultPath()
			if project {
				path, err = configstore.ProjectPath()
			}
			if err != nil {
				return writeFailure(cmd, app, codeConfig, err, nil)
			}

			st, err := configstore.Load(path)
			if errors.Is(err, os.ErrNotExist) {
				st, err = &configstore.Store{}, nil
			}
			if err != nil {
				return writeFailure(cmd, app, codeConfig, err, nil)
			}
			if err := st.Set(args[0], args[1]); err != nil {
				return writeFailure(cmd, app, codeInvalidArgs, err, map[string]any{"keys": configstore.Keys()})
			}
			if err := configstore.SaveAtomic(path, st); err != nil {
				return writeFailure(cmd, app, codeConfig, err, nil)
			}
			return writeData(cmd, app, map[string]any{"path": path}, st)
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "Write .gwportal/config.yaml in the working directory instead")
	return cmd
}
