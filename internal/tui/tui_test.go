package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/nav"
	"github.com/gwportal/gwportal-cli/internal/wizard"
)

type fakeBackend struct {
	apis     api.Result[[]api.APIRecord]
	history  api.Result[[]api.HistoryRecord]
	detail   api.Result[api.APIDetail]
	submit   api.Result[api.Confirmation]
	context  api.Result[api.ContextAvailability]
	calls    []string
	payloads []forms.Payload
}

func (f *fakeBackend) ListAPIs(context.Context) api.Result[[]api.APIRecord] {
	f.calls = append(f.calls, "list apis")
	return f.apis
}

func (f *fakeBackend) ListHistory(context.Context) api.Result[[]api.HistoryRecord] {
	f.calls = append(f.calls, "list history")
	return f.history
}

func (f *fakeBackend) FetchAPI(_ context.Context, id api.ID) api.Result[api.APIDetail] {
	f.calls = append(f.calls, "fetch "+id.String())
	return f.detail
}

func (f *fakeBackend) CreateAPI(_ context.Context, p forms.Payload) api.Result[api.Confirmation] {
	f.calls = append(f.calls, "create")
	f.payloads = append(f.payloads, p)
	return f.submit
}

func (f *fakeBackend) UpdateAPI(_ context.Context, id api.ID, p forms.Payload) api.Result[api.Confirmation] {
	f.calls = append(f.calls, "update "+id.String())
	f.payloads = append(f.payloads, p)
	return f.submit
}

func (f *fakeBackend) CheckContext(_ context.Context, c string) api.Result[api.ContextAvailability] {
	f.calls = append(f.calls, "check "+c)
	return f.context
}

func newTestModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := New(Config{Backend: b, PageSize: 2, DocsURL: "https://docs.example.com/api-documentation"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// send feeds msg through Update and then runs every resulting command,
// feeding their messages back until nothing is left. Spinner ticks are
// dropped so the loop terminates.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range run(cmd) {
		m = send(t, m, out)
	}
	return m
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyPress(k))
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func records(n int) []api.APIRecord {
	out := make([]api.APIRecord, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = api.APIRecord{ID: api.ID(id), Name: "API " + id, Version: "1.0", Status: "Active"}
	}
	return out
}

func TestMenus_NavigateAndBack(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	assert.Equal(t, nav.Home, m.Screen())

	m = press(t, m, "enter")
	assert.Equal(t, nav.ProductTeams, m.Screen())

	m = press(t, m, "esc")
	assert.Equal(t, nav.Home, m.Screen())

	m = press(t, m, "down", "enter")
	assert.Equal(t, nav.Administrator, m.Screen())
	assert.Contains(t, m.View(), "User Management")

	m = press(t, m, "esc")
	assert.Equal(t, nav.Home, m.Screen())
}

func TestViewAPIs_FetchesOnEntryAndPages(t *testing.T) {
	b := &fakeBackend{apis: api.Result[[]api.APIRecord]{Value: records(5)}}
	m := newTestModel(t, b)

	m = press(t, m, "enter", "down", "enter")
	require.Equal(t, nav.ViewAPIs, m.Screen())
	assert.Equal(t, []string{"list apis"}, b.calls)
	assert.Equal(t, "Showing 1 to 2 of 5 entries", m.apis.Current().Summary())

	m = press(t, m, "right", "right", "right")
	assert.Equal(t, 3, m.apis.Cursor().Page())
	assert.Contains(t, m.View(), "Showing 5 to 5 of 5 entries")

	m = press(t, m, "2")
	assert.Equal(t, 2, m.apis.Cursor().Page())
	m = press(t, m, "left", "left")
	assert.Equal(t, 1, m.apis.Cursor().Page())
}

func TestViewAPIs_TypedPageNumberJumps(t *testing.T) {
	b := &fakeBackend{apis: api.Result[[]api.APIRecord]{Value: records(25)}}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter")
	require.Equal(t, 13, m.apis.Cursor().TotalPages())

	m = press(t, m, "1", "2")
	assert.Equal(t, 12, m.apis.Cursor().Page())
	assert.Contains(t, m.View(), "Showing 23 to 24 of 25 entries")

	// 129 is past the last page, so the 9 starts a new number.
	m = press(t, m, "9")
	assert.Equal(t, 9, m.apis.Cursor().Page())

	m = press(t, m, "right", "1", "3")
	assert.Equal(t, 13, m.apis.Cursor().Page())
	m = press(t, m, "0")
	assert.Equal(t, 13, m.apis.Cursor().Page())
}

func TestPageDigits(t *testing.T) {
	tests := []struct {
		typed string
		d     rune
		want  string
	}{
		{"", '3', "3"},
		{"1", '2', "12"},
		{"1", '4', "4"},
		{"", '0', ""},
		{"1", '0', "10"},
		{"13", '0', ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pageDigits(tt.typed, tt.d, 13), "%q+%q", tt.typed, tt.d)
	}
}

func TestViewAPIs_SampleDataIsFlagged(t *testing.T) {
	b := &fakeBackend{apis: api.Result[[]api.APIRecord]{Value: api.SampleAPIs(), Substituted: true}}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter")

	require.NotNil(t, m.notice)
	assert.Equal(t, noticeWarn, m.notice.kind)
	assert.True(t, m.apis.Substituted())
	assert.Contains(t, m.View(), "sample data")
}

func TestHistory_ErrorKeepsScreenInteractive(t *testing.T) {
	b := &fakeBackend{history: api.Result[[]api.HistoryRecord]{Err: &api.StatusError{Op: "list history", Status: 500}}}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "down", "down", "enter")

	require.Equal(t, nav.APIHistory, m.Screen())
	require.NotNil(t, m.notice)
	assert.Equal(t, noticeError, m.notice.kind)
	assert.Contains(t, m.notice.text, "HTTP 500")

	m = press(t, m, "esc")
	assert.Equal(t, nav.ProductTeams, m.Screen())
}

// fillCreateForm walks the create wizard to the review step.
func fillCreateForm(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "enter", "enter")
	require.Equal(t, nav.CreateAPI, m.Screen())

	// gateway type defaults to Consumer; pick a deployment model.
	m = press(t, m, "tab", "right")
	m = press(t, m, "tab")
	m = typeText(t, m, "/inventory")
	m = press(t, m, "tab")
	m = typeText(t, m, "/inventory/v1")
	m = press(t, m, "enter")
	require.Equal(t, wizard.StepMetaData, m.session.Step())

	m = typeText(t, m, "Inventory API")
	m = press(t, m, "tab")
	m = typeText(t, m, "1.0")
	m = press(t, m, "tab", "right")
	m = press(t, m, "enter")
	require.Equal(t, wizard.StepReview, m.session.Step())
	return m
}

func TestWizard_CreateFlowSubmitsAndReturnsHome(t *testing.T) {
	b := &fakeBackend{submit: api.Result[api.Confirmation]{Value: api.Confirmation{Message: api.MsgDeployed}}}
	m := fillCreateForm(t, newTestModel(t, b))
	assert.Contains(t, m.View(), "/inventory/v1")

	m = press(t, m, "enter")
	assert.Equal(t, []string{"create"}, b.calls)
	require.Len(t, b.payloads, 1)
	assert.Equal(t, forms.Payload{
		Details:  forms.Details{GatewayType: forms.GatewayConsumer, DeploymentModel: "Cloud", BasePath: "/inventory", APIContext: "/inventory/v1"},
		MetaData: forms.MetaData{APIName: "Inventory API", APIVersion: "1.0", Environment: "Development"},
	}, b.payloads[0])

	assert.Equal(t, nav.Home, m.Screen())
	require.NotNil(t, m.notice)
	assert.Equal(t, noticeSuccess, m.notice.kind)
	assert.Equal(t, api.MsgDeployed, m.notice.text)
	assert.Equal(t, wizard.StepDetails, m.session.Step())
	assert.Empty(t, m.session.Details.BasePath)
}

// hold feeds key through Update but returns the command's messages instead
// of delivering them, so a reply can arrive after the user has moved on.
func hold(t *testing.T, m Model, key string) (Model, []tea.Msg) {
	t.Helper()
	next, cmd := m.Update(keyPress(key))
	return next.(Model), run(cmd)
}

func TestWizard_LateSubmitReplyLeavesNewDraftAlone(t *testing.T) {
	b := &fakeBackend{submit: api.Result[api.Confirmation]{Value: api.Confirmation{Message: api.MsgDeployed}}}
	m := fillCreateForm(t, newTestModel(t, b))

	m, replies := hold(t, m, "ctrl+s")
	require.Len(t, replies, 1)
	require.True(t, m.session.Pending().Submit)

	// Leave the wizard and start over before the reply lands.
	m = press(t, m, "esc", "enter", "tab", "tab")
	require.Equal(t, nav.CreateAPI, m.Screen())
	assert.False(t, m.session.Pending().Submit)
	m = typeText(t, m, "/drafts")

	for _, msg := range replies {
		m = send(t, m, msg)
	}
	assert.Equal(t, nav.CreateAPI, m.Screen())
	assert.Equal(t, wizard.StepDetails, m.session.Step())
	assert.Equal(t, "/drafts", m.session.Details.BasePath)
	assert.Nil(t, m.notice)
}

func TestEdit_LateFetchAfterLeavingIsDropped(t *testing.T) {
	b := &fakeBackend{
		apis:   api.Result[[]api.APIRecord]{Value: records(1)},
		detail: api.Result[api.APIDetail]{Value: api.APIDetail{ID: "1", Payload: forms.Payload{Details: forms.Details{BasePath: "/x"}}}},
	}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter")
	require.Equal(t, nav.ViewAPIs, m.Screen())

	m, replies := hold(t, m, "e")
	require.Len(t, replies, 1)
	m = press(t, m, "esc")

	for _, msg := range replies {
		m = send(t, m, msg)
	}
	assert.Equal(t, nav.ProductTeams, m.Screen())
	assert.Equal(t, wizard.ModeCreate, m.session.Mode())
	assert.Empty(t, m.session.Details.BasePath)
}

func TestWizard_RejectedSubmitStaysOnReview(t *testing.T) {
	b := &fakeBackend{submit: api.Result[api.Confirmation]{Err: &api.StatusError{Op: "create api", Status: 409, Message: "Context already in use"}}}
	m := fillCreateForm(t, newTestModel(t, b))

	m = press(t, m, "ctrl+s")
	assert.Equal(t, nav.CreateAPI, m.Screen())
	assert.Equal(t, wizard.StepReview, m.session.Step())
	require.NotNil(t, m.notice)
	assert.True(t, strings.HasPrefix(m.notice.text, api.MsgDeploymentFailed))
	assert.Contains(t, m.notice.text, "Context already in use")
}

func TestWizard_AdvanceBlockedUntilFilled(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m = press(t, m, "enter", "enter", "enter")

	assert.Equal(t, wizard.StepDetails, m.session.Step())
	require.NotNil(t, m.notice)
	assert.Contains(t, m.notice.text, "Please fill all required fields")
	// Focus jumps to the first missing field.
	assert.Equal(t, "deploymentModel", m.form.focused(wizard.StepDetails).name)
}

func TestWizard_RetreatKeepsValues(t *testing.T) {
	m := fillCreateForm(t, newTestModel(t, &fakeBackend{}))
	m = press(t, m, "ctrl+b", "ctrl+b")
	assert.Equal(t, wizard.StepDetails, m.session.Step())
	assert.Equal(t, "/inventory", m.session.Details.BasePath)
	assert.Equal(t, "Inventory API", m.session.MetaData.APIName)
}

func TestWizard_ContextCheck(t *testing.T) {
	b := &fakeBackend{context: api.Result[api.ContextAvailability]{Value: api.ContextAvailability{Available: false, Message: "Context already in use"}}}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "enter")

	m = press(t, m, "ctrl+k")
	assert.Empty(t, b.calls, "blank context must not reach the backend")
	require.NotNil(t, m.notice)
	assert.Equal(t, "Please enter API Context", m.notice.text)

	m = press(t, m, "tab", "tab", "tab")
	m = typeText(t, m, "/payments/v1")
	m = press(t, m, "ctrl+k")
	assert.Equal(t, []string{"check /payments/v1"}, b.calls)
	assert.Equal(t, noticeError, m.notice.kind)
	assert.Equal(t, "Context already in use", m.notice.text)
}

func TestEdit_LoadsRecordIntoWizard(t *testing.T) {
	detail := api.APIDetail{
		ID: "2", Name: "API 2", Version: "1.0", Status: "Active",
		Payload: forms.Merge(
			forms.Details{GatewayType: forms.GatewayB2B, DeploymentModel: "Hybrid", BasePath: "/users", APIContext: "/users/v1"},
			forms.MetaData{APIName: "API 2", APIVersion: "1.0", Environment: "QA"},
		),
	}
	b := &fakeBackend{
		apis:   api.Result[[]api.APIRecord]{Value: records(3)},
		detail: api.Result[api.APIDetail]{Value: detail},
		submit: api.Result[api.Confirmation]{Value: api.Confirmation{Message: api.MsgDeployed}},
	}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter", "down", "e")

	require.Equal(t, nav.EditAPI, m.Screen())
	assert.Equal(t, wizard.ModeEdit, m.session.Mode())
	assert.Equal(t, "/users", m.session.Details.BasePath)
	assert.Equal(t, "/users", m.form.steps[wizard.StepDetails][2].input.Value())
	assert.Contains(t, m.View(), "Edit API")

	m = press(t, m, "enter", "enter", "enter")
	assert.Equal(t, []string{"list apis", "fetch 2", "update 2"}, b.calls)
	assert.Equal(t, nav.Home, m.Screen())
	assert.Equal(t, wizard.ModeCreate, m.session.Mode())
}

func TestEdit_FetchFailureStaysOnListing(t *testing.T) {
	b := &fakeBackend{
		apis:   api.Result[[]api.APIRecord]{Value: records(1)},
		detail: api.Result[api.APIDetail]{Err: &api.TransportError{Op: "fetch api", Err: errors.New("refused")}},
	}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter", "e")

	assert.Equal(t, nav.ViewAPIs, m.Screen())
	assert.Equal(t, wizard.ModeCreate, m.session.Mode())
	require.NotNil(t, m.notice)
	assert.Equal(t, noticeError, m.notice.kind)
}

func TestCreateEntryResetsEditSession(t *testing.T) {
	b := &fakeBackend{
		apis:   api.Result[[]api.APIRecord]{Value: records(1)},
		detail: api.Result[api.APIDetail]{Value: api.APIDetail{ID: "1", Payload: forms.Payload{Details: forms.Details{BasePath: "/x"}}}},
	}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter", "e")
	require.Equal(t, wizard.ModeEdit, m.session.Mode())

	m = press(t, m, "esc", "up", "enter")
	require.Equal(t, nav.CreateAPI, m.Screen())
	assert.Equal(t, wizard.ModeCreate, m.session.Mode())
	assert.Empty(t, m.session.Details.BasePath)
	assert.Empty(t, m.form.steps[wizard.StepDetails][2].input.Value())
}

func TestCopyID(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	b := &fakeBackend{apis: api.Result[[]api.APIRecord]{Value: records(2)}}
	m := newTestModel(t, b)
	m = press(t, m, "enter", "down", "enter", "down", "y")
	assert.Equal(t, "2", copied)
	assert.Equal(t, "Copied id 2", m.notice.text)
}

func TestDocumentation_OpensConfiguredURL(t *testing.T) {
	var opened string
	m := New(Config{
		Backend: &fakeBackend{},
		DocsURL: "https://docs.example.com/api-documentation",
		OpenURL: func(u string) error { opened = u; return nil },
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = press(t, m, "enter", "down", "down", "enter")

	assert.Equal(t, "https://docs.example.com/api-documentation", opened)
	assert.Equal(t, nav.ProductTeams, m.Screen())
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// "q" is text inside the wizard, not quit.
	m = press(t, m, "enter", "enter", "tab", "tab")
	_, cmd = m.Update(keyPress("q"))
	if cmd != nil {
		assert.NotEqual(t, tea.QuitMsg{}, cmd())
	}
}

func TestTruncateUsesCellWidth(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "日…", truncate("日本語", 4))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestCauseText(t *testing.T) {
	assert.Equal(t, "gateway unreachable", causeText(&api.TransportError{Op: "x", Err: errors.New("dial")}))
	assert.Equal(t, "nope (HTTP 400)", causeText(&api.StatusError{Op: "x", Status: 400, Message: "nope"}))
	assert.Equal(t, "HTTP 502", causeText(&api.StatusError{Op: "x", Status: 502}))
	assert.Equal(t, "Please fill all required fields: basePath, environment",
		causeText(&forms.ValidationError{Step: "details", Missing: []string{"basePath"}, Invalid: []string{"environment"}}))
}
