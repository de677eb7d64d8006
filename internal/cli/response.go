package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
)

const (
	codeInvalidArgs      = "invalid_args"
	codeValidation       = "validation_failed"
	codeRequestFailed    = "request_failed"
	codeDeploymentFailed = "deployment_failed"
	codeContextInUse     = "context_in_use"
	codeConfig           = "config_error"
)

func writeData(cmd *cobra.Command, app *App, meta map[string]any, data any) error {
	out := map[string]any{
		"ok":   true,
		"meta": meta,
		"data": data,
	}
	if meta == nil {
		delete(out, "meta")
	}
	return writeOut(cmd, app, out)
}

func writeFailure(cmd *cobra.Command, app *App, code string, err error, details any) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	if details == nil {
		details = errorDetails(err)
	}
	out := map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    code,
			"message": err.Error(),
			"details": details,
		},
	}
	// Still return the error so cobra exits non-zero.
	_ = writeOut(cmd, app, out)
	return err
}

// errorDetails exposes the typed parts of err the caller can act on.
func errorDetails(err error) map[string]any {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"missing": ve.Missing, "invalid": ve.Invalid}
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		return map[string]any{"status": se.Status, "message": se.Message}
	}
	if api.IsTransport(err) {
		return map[string]any{"transport": true}
	}
	return nil
}

// failureCode picks the envelope code for a backend error.
func failureCode(err error, fallback string) string {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		return codeValidation
	}
	return fallback
}
