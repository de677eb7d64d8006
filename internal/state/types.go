package state

import "github.com/gwportal/gwportal-cli/internal/api"

const CurrentVersion = 1

// State is everything the mock gateway persists between runs.
type State struct {
	Version int                 `json:"version"`
	NextID  int                 `json:"nextId"`
	APIs    []*api.APIDetail    `json:"apis"`
	History []api.HistoryRecord `json:"history"`
}

// Find returns the stored API with id, or nil.
func (s *State) Find(id string) *api.APIDetail {
	for _, a := range s.APIs {
		if a.ID.String() == id {
			return a
		}
	}
	return nil
}

// ContextOwner returns the API deployed under apiContext, or nil.
func (s *State) ContextOwner(apiContext string) *api.APIDetail {
	for _, a := range s.APIs {
		if a.APIContext == apiContext {
			return a
		}
	}
	return nil
}
