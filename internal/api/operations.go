package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gwportal/gwportal-cli/internal/forms"
)

const (
	MsgDeployed         = "Successfully Deployed API"
	MsgDeploymentFailed = "Deployment failed. Please try again."
	MsgContextAvailable = "Context is available"
	MsgContextCheckFail = "Context check failed"
)

// ListAPIs fetches every registered API in backend order.
func (c Client) ListAPIs(ctx context.Context) ([]APIRecord, error) {
	const op = "list apis"
	resp, err := c.do(ctx, op, http.MethodGet, PathAPIs, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &StatusError{Op: op, Status: resp.status, Message: resp.message()}
	}
	return decode[[]APIRecord](op, resp)
}

// ListHistory fetches the deployment log in backend order.
func (c Client) ListHistory(ctx context.Context) ([]HistoryRecord, error) {
	const op = "list history"
	resp, err := c.do(ctx, op, http.MethodGet, PathHistory, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &StatusError{Op: op, Status: resp.status, Message: resp.message()}
	}
	return decode[[]HistoryRecord](op, resp)
}

// FetchAPI fetches one API with its form-shaped fields.
func (c Client) FetchAPI(ctx context.Context, id ID) (APIDetail, error) {
	const op = "fetch api"
	if strings.TrimSpace(id.String()) == "" {
		return APIDetail{}, ErrMissingID
	}
	resp, err := c.do(ctx, op, http.MethodGet, apiPath(id), nil)
	if err != nil {
		return APIDetail{}, err
	}
	if !resp.ok() {
		return APIDetail{}, &StatusError{Op: op, Status: resp.status, Message: resp.message()}
	}
	d, err := decode[APIDetail](op, resp)
	if err != nil {
		return APIDetail{}, err
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// CreateAPI submits a new deployment request. Only 200 counts as success.
func (c Client) CreateAPI(ctx context.Context, p forms.Payload) (Confirmation, error) {
	resp, err := c.do(ctx, "create api", http.MethodPost, PathCreate, p)
	if err != nil {
		return Confirmation{}, err
	}
	return confirm("create api", resp)
}

// UpdateAPI submits changes to an existing deployment. Only 200 counts as success.
func (c Client) UpdateAPI(ctx context.Context, id ID, p forms.Payload) (Confirmation, error) {
	if strings.TrimSpace(id.String()) == "" {
		return Confirmation{}, ErrMissingID
	}
	resp, err := c.do(ctx, "update api", http.MethodPut, updatePath(id), p)
	if err != nil {
		return Confirmation{}, err
	}
	conf, err := confirm("update api", resp)
	if err == nil && conf.ID == "" {
		conf.ID = id
	}
	return conf, err
}

func confirm(op string, resp response) (Confirmation, error) {
	if resp.status != http.StatusOK {
		return Confirmation{}, &StatusError{Op: op, Status: resp.status, Message: resp.message()}
	}
	// The body is informational; an undecodable one does not undo the deployment.
	conf, _ := decode[Confirmation](op, resp)
	conf.Status = resp.status
	if strings.TrimSpace(conf.Message) == "" {
		conf.Message = MsgDeployed
	}
	return conf, nil
}

// CheckContext asks whether apiContext is free. A blank context is rejected
// before any request is made. A non-2xx reply is an answer, not an error,
// but a body that is not JSON is a DecodeError.
func (c Client) CheckContext(ctx context.Context, apiContext string) (ContextAvailability, error) {
	const op = "check context"
	apiContext = strings.TrimSpace(apiContext)
	if apiContext == "" {
		return ContextAvailability{}, ErrEmptyContext
	}
	body := map[string]string{"apiContext": apiContext}
	resp, err := c.do(ctx, op, http.MethodPost, PathCheckContext, body)
	if err != nil {
		return ContextAvailability{}, err
	}
	if _, err := decode[json.RawMessage](op, resp); err != nil {
		return ContextAvailability{}, err
	}
	out := ContextAvailability{Context: apiContext, Available: resp.ok(), Message: resp.message()}
	if out.Message == "" {
		if out.Available {
			out.Message = MsgContextAvailable
		} else {
			out.Message = MsgContextCheckFail
		}
	}
	return out, nil
}
