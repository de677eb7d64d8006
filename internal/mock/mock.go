// Package mock is a local stand-in for the API gateway backend. It keeps its
// data in a JSON state file so the portal can be exercised end to end.
package mock

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/state"
)

const (
	StatusActive = "Active"

	ActionCreated = "Created"
	ActionUpdated = "Updated"

	DefaultUser = "Portal User"

	MsgContextInUse = "Context already in use"

	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 03:04 PM"
)

var (
	ErrNotFound      = errors.New("api not found")
	ErrContextInUse  = errors.New("context already in use")
	ErrInvalidRecord = errors.New("invalid api record")
)

type Store struct {
	Path string
	// Now is the clock used for deployed dates and history timestamps.
	Now func() time.Time
}

func (s Store) Ensure() (*state.State, error) {
	st, err := state.Load(s.Path)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	seed := state.SeedDefault()
	if err := state.SaveAtomic(s.Path, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (s Store) Load() (*state.State, error) { return state.Load(s.Path) }
func (s Store) Save(st *state.State) error  { return state.SaveAtomic(s.Path, st) }

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Store) ListAPIs(st *state.State) []api.APIRecord {
	items := make([]api.APIRecord, 0, len(st.APIs))
	for _, a := range st.APIs {
		items = append(items, a.Record())
	}
	return items
}

func (s Store) ListHistory(st *state.State) []api.HistoryRecord {
	return append([]api.HistoryRecord{}, st.History...)
}

func (s Store) GetAPI(st *state.State, id string) (*api.APIDetail, error) {
	a := st.Find(strings.TrimSpace(id))
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// CreateAPI registers a new Active API deployed today.
func (s Store) CreateAPI(st *state.State, p forms.Payload, user string) (*api.APIDetail, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	if st.ContextOwner(p.APIContext) != nil {
		return nil, ErrContextInUse
	}
	now := s.now()
	a := &api.APIDetail{
		ID:           api.ID(strconv.Itoa(st.NextID)),
		Name:         p.APIName,
		Version:      p.APIVersion,
		Status:       StatusActive,
		DeployedDate: now.Format(dateLayout),
		Payload:      p,
	}
	st.NextID++
	st.APIs = append(st.APIs, a)
	s.record(st, a.Name, ActionCreated, user, now)
	return a, nil
}

// UpdateAPI replaces the forms of an existing API. Status and deployed date
// are kept.
func (s Store) UpdateAPI(st *state.State, id string, p forms.Payload, user string) (*api.APIDetail, error) {
	a, err := s.GetAPI(st, id)
	if err != nil {
		return nil, err
	}
	p, err = normalize(p)
	if err != nil {
		return nil, err
	}
	if owner := st.ContextOwner(p.APIContext); owner != nil && owner != a {
		return nil, ErrContextInUse
	}
	a.Payload = p
	a.Name = p.APIName
	a.Version = p.APIVersion
	s.record(st, a.Name, ActionUpdated, user, s.now())
	return a, nil
}

// ContextInUse reports whether apiContext already belongs to a deployed API.
func (s Store) ContextInUse(st *state.State, apiContext string) bool {
	return st.ContextOwner(strings.TrimSpace(apiContext)) != nil
}

func (s Store) record(st *state.State, apiName, action, user string, at time.Time) {
	if strings.TrimSpace(user) == "" {
		user = DefaultUser
	}
	entry := api.HistoryRecord{
		ID:        api.ID(strconv.Itoa(nextHistoryID(st.History))),
		APIName:   apiName,
		Action:    action,
		User:      user,
		Timestamp: at.Format(timestampLayout),
	}
	// History is kept newest first, like the seed.
	st.History = append([]api.HistoryRecord{entry}, st.History...)
}

func nextHistoryID(history []api.HistoryRecord) int {
	next := len(history) + 1
	for _, h := range history {
		if n, err := strconv.Atoi(h.ID.String()); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

func normalize(p forms.Payload) (forms.Payload, error) {
	d, m := forms.Split(p)
	if err := d.Validate(); err != nil {
		return forms.Payload{}, errors.Join(ErrInvalidRecord, err)
	}
	if err := m.Validate(); err != nil {
		return forms.Payload{}, errors.Join(ErrInvalidRecord, err)
	}
	return forms.Merge(d, m), nil
}
