// Package wizard implements the three-step create/edit flow for an API
// deployment request: Details, then MetaData, then Review and submit.
//
// Network-bound operations come in Begin/Finish pairs so an event loop can run
// the call elsewhere and apply the result later; the plain methods (Submit,
// EnterEditMode, CheckContext) run both halves synchronously.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
)

type Step int

const (
	StepDetails Step = iota + 1
	StepMetaData
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "Details"
	case StepMetaData:
		return "MetaData"
	case StepReview:
		return "Review"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

var (
	ErrBusy             = errors.New("operation already in progress")
	ErrUseSubmit        = errors.New("review is the last step; submit instead")
	ErrNotOnReview      = errors.New("submit is only available on the review step")
	ErrDeploymentFailed = errors.New(api.MsgDeploymentFailed)
	// ErrStale is returned when a result arrives for a draft that has since
	// been reset. The result is dropped.
	ErrStale = errors.New("result belongs to a discarded draft")
)

// Gateway is the subset of the backend the wizard talks to.
type Gateway interface {
	FetchAPI(ctx context.Context, id api.ID) api.Result[api.APIDetail]
	CreateAPI(ctx context.Context, p forms.Payload) api.Result[api.Confirmation]
	UpdateAPI(ctx context.Context, id api.ID, p forms.Payload) api.Result[api.Confirmation]
	CheckContext(ctx context.Context, apiContext string) api.Result[api.ContextAvailability]
}

// Pending reports which calls are in flight.
type Pending struct {
	Submit  bool
	Fetch   bool
	Context bool
}

func (p Pending) Any() bool { return p.Submit || p.Fetch || p.Context }

// Session is one pass through the wizard. The zero value is not ready; use New.
type Session struct {
	step     Step
	Details  forms.Details
	MetaData forms.MetaData
	editing  *api.APIRecord
	pending  Pending
	// gen changes on every Reset so late results can be told apart.
	gen int
}

func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset returns to step one in create mode with cleared forms. Requests begun
// before the reset finish with ErrStale.
func (s *Session) Reset() {
	s.step = StepDetails
	s.Details = forms.NewDetails()
	s.MetaData = forms.MetaData{}
	s.editing = nil
	s.pending = Pending{}
	s.gen++
}

func (s *Session) Step() Step { return s.step }

func (s *Session) Pending() Pending { return s.pending }

func (s *Session) Mode() Mode {
	if s.editing != nil {
		return ModeEdit
	}
	return ModeCreate
}

// EditingTarget returns a copy of the record being edited, or nil in create mode.
func (s *Session) EditingTarget() *api.APIRecord {
	if s.editing == nil {
		return nil
	}
	cp := *s.editing
	return &cp
}

// Payload merges both forms as they currently stand.
func (s *Session) Payload() forms.Payload {
	return forms.Merge(s.Details, s.MetaData)
}

// Advance validates the current step and moves forward. A failed validation
// leaves the step unchanged.
func (s *Session) Advance() error {
	switch s.step {
	case StepDetails:
		if err := s.Details.Validate(); err != nil {
			return err
		}
		s.step = StepMetaData
	case StepMetaData:
		if err := s.MetaData.Validate(); err != nil {
			return err
		}
		s.step = StepReview
	case StepReview:
		return ErrUseSubmit
	}
	return nil
}

// Retreat moves back one step without validating. Forms are kept.
func (s *Session) Retreat() {
	if s.step > StepDetails {
		s.step--
	}
}

// EditRequest is an in-flight edit fetch.
type EditRequest struct {
	Target api.APIRecord
	gen    int
}

// Send runs the fetch.
func (r EditRequest) Send(ctx context.Context, gw Gateway) api.Result[api.APIDetail] {
	return gw.FetchAPI(ctx, r.Target.ID)
}

func (s *Session) BeginEdit(target api.APIRecord) (EditRequest, error) {
	if strings.TrimSpace(target.ID.String()) == "" {
		return EditRequest{}, api.ErrMissingID
	}
	if s.pending.Fetch {
		return EditRequest{}, ErrBusy
	}
	s.pending.Fetch = true
	return EditRequest{Target: target, gen: s.gen}, nil
}

// FinishEdit loads the fetched record into both forms and switches to edit
// mode on step one. On failure the session is left as it was.
func (s *Session) FinishEdit(req EditRequest, r api.Result[api.APIDetail]) error {
	if req.gen != s.gen {
		return ErrStale
	}
	s.pending.Fetch = false
	if r.Err != nil {
		return r.Err
	}
	target := req.Target
	fetched := r.Value.Record()
	if target.Name == "" {
		target.Name = fetched.Name
	}
	if target.Version == "" {
		target.Version = fetched.Version
	}
	if target.Status == "" {
		target.Status = fetched.Status
	}
	if target.Owner == "" {
		target.Owner = fetched.Owner
	}
	if target.DeployedDate == "" {
		target.DeployedDate = fetched.DeployedDate
	}

	s.Details, s.MetaData = forms.Split(r.Value.Payload)
	s.editing = &target
	s.step = StepDetails
	return nil
}

func (s *Session) EnterEditMode(ctx context.Context, gw Gateway, target api.APIRecord) error {
	req, err := s.BeginEdit(target)
	if err != nil {
		return err
	}
	return s.FinishEdit(req, req.Send(ctx, gw))
}

// SubmitRequest is an in-flight create or update.
type SubmitRequest struct {
	Mode    Mode
	ID      api.ID
	Payload forms.Payload
	gen     int
}

// Send issues create or update depending on the mode captured at Begin.
func (r SubmitRequest) Send(ctx context.Context, gw Gateway) api.Result[api.Confirmation] {
	if r.Mode == ModeEdit {
		return gw.UpdateAPI(ctx, r.ID, r.Payload)
	}
	return gw.CreateAPI(ctx, r.Payload)
}

// Outcome describes a finished submission.
type Outcome struct {
	Mode    Mode
	ID      api.ID
	Message string
	// Assumed is true when the backend was unreachable and success was
	// taken for granted by the fallback policy.
	Assumed bool
}

func (s *Session) BeginSubmit() (SubmitRequest, error) {
	if s.step != StepReview {
		return SubmitRequest{}, ErrNotOnReview
	}
	if s.pending.Submit {
		return SubmitRequest{}, ErrBusy
	}
	if err := s.Details.Validate(); err != nil {
		return SubmitRequest{}, err
	}
	if err := s.MetaData.Validate(); err != nil {
		return SubmitRequest{}, err
	}
	req := SubmitRequest{Mode: s.Mode(), Payload: s.Payload(), gen: s.gen}
	if s.editing != nil {
		req.ID = s.editing.ID
	}
	s.pending.Submit = true
	return req, nil
}

// FinishSubmit resets the session on success. A rejected submission keeps
// the session on the review step so it can be retried. A request from before
// the last Reset changes nothing and returns ErrStale.
func (s *Session) FinishSubmit(req SubmitRequest, r api.Result[api.Confirmation]) (Outcome, error) {
	if req.gen != s.gen {
		return Outcome{}, ErrStale
	}
	s.pending.Submit = false
	if r.Err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrDeploymentFailed, r.Err)
	}
	out := Outcome{
		Mode:    req.Mode,
		ID:      firstID(r.Value.ID, req.ID),
		Message: r.Value.Message,
		Assumed: r.Substituted || r.Value.Assumed,
	}
	if strings.TrimSpace(out.Message) == "" {
		out.Message = api.MsgDeployed
	}
	s.Reset()
	return out, nil
}

func (s *Session) Submit(ctx context.Context, gw Gateway) (Outcome, error) {
	req, err := s.BeginSubmit()
	if err != nil {
		return Outcome{}, err
	}
	return s.FinishSubmit(req, req.Send(ctx, gw))
}

// BeginContextCheck returns the context to check. A blank context is
// rejected here so no request is ever sent for it.
func (s *Session) BeginContextCheck() (string, error) {
	c := strings.TrimSpace(s.Details.APIContext)
	if c == "" {
		return "", api.ErrEmptyContext
	}
	if s.pending.Context {
		return "", ErrBusy
	}
	s.pending.Context = true
	return c, nil
}

func (s *Session) FinishContextCheck(r api.Result[api.ContextAvailability]) (api.ContextAvailability, error) {
	s.pending.Context = false
	if r.Err != nil {
		return api.ContextAvailability{}, r.Err
	}
	return r.Value, nil
}

func (s *Session) CheckContext(ctx context.Context, gw Gateway) (api.ContextAvailability, error) {
	c, err := s.BeginContextCheck()
	if err != nil {
		return api.ContextAvailability{}, err
	}
	return s.FinishContextCheck(gw.CheckContext(ctx, c))
}

func firstID(ids ...api.ID) api.ID {
	for _, id := range ids {
		if strings.TrimSpace(id.String()) != "" {
			return id
		}
	}
	return ""
}
