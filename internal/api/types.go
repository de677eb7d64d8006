package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gwportal/gwportal-cli/internal/forms"
)

// ID is a server-assigned identifier. The backend sends numbers for some
// resources and strings for others; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return fmt.Errorf("invalid id: %s", string(trimmed))
}

// MarshalJSON writes ids that read as plain integers back as numbers, the
// form the backend issues them in. Anything else, including zero-padded
// digits like "007", stays a string.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if isCanonicalInt(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id ID) String() string { return string(id) }

// maxExactDigits keeps numeric ids within float64's exact integer range, so
// JSON readers that decode numbers as doubles see the same id.
const maxExactDigits = 15

func isCanonicalInt(s string) bool {
	if s == "" || len(s) > maxExactDigits {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// APIRecord is one row of the API listing.
type APIRecord struct {
	ID           ID     `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Version      string `json:"version" yaml:"version"`
	Status       string `json:"status" yaml:"status"`
	Owner        string `json:"owner" yaml:"owner"`
	DeployedDate string `json:"deployedDate" yaml:"deployedDate"`
}

// APIDetail is the fetch-one response: the listing fields plus the
// form-shaped fields the wizard edits.
type APIDetail struct {
	ID            ID     `json:"id" yaml:"id"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
	DeployedDate  string `json:"deployedDate,omitempty" yaml:"deployedDate,omitempty"`
	forms.Payload `yaml:",inline"`
}

// Record projects the detail onto a listing row, preferring the listing
// names and falling back to the form names.
func (d APIDetail) Record() APIRecord {
	return APIRecord{
		ID:           d.ID,
		Name:         firstNonEmpty(d.Name, d.APIName),
		Version:      firstNonEmpty(d.Version, d.APIVersion),
		Status:       d.Status,
		Owner:        d.Owner,
		DeployedDate: d.DeployedDate,
	}
}

// HistoryRecord is one entry of the append-only deployment log.
type HistoryRecord struct {
	ID        ID     `json:"id" yaml:"id"`
	APIName   string `json:"apiName" yaml:"apiName"`
	Action    string `json:"action" yaml:"action"`
	User      string `json:"user" yaml:"user"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Confirmation is the outcome of a create or update call.
type Confirmation struct {
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	ID      ID     `json:"id,omitempty" yaml:"id,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Assumed is set when the call never reached the backend and success was
	// taken for granted.
	Assumed bool `json:"assumed,omitempty" yaml:"assumed,omitempty"`
}

// ContextAvailability is the answer to a context check.
type ContextAvailability struct {
	Context   string `json:"apiContext" yaml:"apiContext"`
	Available bool   `json:"available" yaml:"available"`
	Message   string `json:"message" yaml:"message"`
	Assumed   bool   `json:"assumed,omitempty" yaml:"assumed,omitempty"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
