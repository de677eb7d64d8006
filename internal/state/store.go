package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
)

// DefaultPath is where mock-server keeps its state unless --state is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		h, herr := os.UserHomeDir()
		if herr != nil {
			return "", errors.New("cannot determine config dir")
		}
		dir = filepath.Join(h, ".config")
	}
	return filepath.Join(dir, "gwportal", "mock", "state.json"), nil
}

func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}

// Load reads a state file. A missing file is reported as os.ErrNotExist.
func Load(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("state %s has version %d, newer than supported %d", path, s.Version, CurrentVersion)
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.NextID <= 0 {
		s.NextID = nextFreeID(s.APIs)
	}
	return &s, nil
}

// nextFreeID is one past the largest numeric id, or past the count when no
// id is numeric.
func nextFreeID(apis []*api.APIDetail) int {
	next := len(apis) + 1
	for _, a := range apis {
		if n, err := strconv.Atoi(a.ID.String()); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// SaveAtomic writes through a temp file in the same directory so readers
// never see a partial document.
func SaveAtomic(path string, s *State) error {
	if s == nil {
		return errors.New("missing state")
	}
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	f, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// SeedDefault returns the sample listing and history with full forms behind
// each record, so edits against a fresh mock prefill every field.
func SeedDefault() *State {
	samples := api.SampleAPIs()
	basePaths := []string{"/payments", "/users", "/orders"}
	models := []string{"Cloud", "Hybrid", "On-Premise"}
	security := []string{"OAuth", "API Key", "OAuth"}

	st := &State{Version: CurrentVersion, History: api.SampleHistory()}
	for i, rec := range samples {
		st.APIs = append(st.APIs, &api.APIDetail{
			ID:           rec.ID,
			Name:         rec.Name,
			Version:      rec.Version,
			Status:       rec.Status,
			DeployedDate: rec.DeployedDate,
			Payload: forms.Payload{
				Details: forms.Details{
					GatewayType:     forms.GatewayConsumer,
					DeploymentModel: models[i],
					BasePath:        basePaths[i],
					APIContext:      basePaths[i] + "/v" + strconv.Itoa(i+1),
				},
				MetaData: forms.MetaData{
					APIName:     rec.Name,
					APIVersion:  rec.Version,
					Environment: "Production",
					Owner:       rec.Owner,
					Security:    security[i],
				},
			},
		})
	}
	st.NextID = len(st.APIs) + 1
	return st
}
