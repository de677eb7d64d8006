package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/nav"
	"github.com/gwportal/gwportal-cli/internal/wizard"
)

// formField is one wizard input. Fields with options are selectors cycled
// with left/right; the rest are free-text inputs.
type formField struct {
	name     string
	label    string
	required bool
	options  []string
	input    textinput.Model

	get func(*wizard.Session) string
	set func(*wizard.Session, string)
}

func (f formField) choice() bool { return len(f.options) > 0 }

// wizardForm holds the inputs of the two editable steps. The session stays
// the source of truth: every edit is written straight back to it.
type wizardForm struct {
	steps map[wizard.Step][]formField
	focus int
}

func textField(name, label, placeholder string, required bool, get func(*wizard.Session) string, set func(*wizard.Session, string)) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 256
	in.Cursor.SetMode(cursor.CursorStatic)
	return formField{name: name, label: label, required: required, input: in, get: get, set: set}
}

func choiceField(name, label string, options []string, required bool, get func(*wizard.Session) string, set func(*wizard.Session, string)) formField {
	return formField{name: name, label: label, required: required, options: options, get: get, set: set}
}

func newWizardForm() wizardForm {
	details := []formField{
		choiceField("gatewayType", "Gateway Type", forms.GatewayTypes, true,
			func(s *wizard.Session) string { return s.Details.GatewayType },
			func(s *wizard.Session, v string) { s.Details.GatewayType = v }),
		choiceField("deploymentModel", "Deployment Model", forms.DeploymentModels, true,
			func(s *wizard.Session) string { return s.Details.DeploymentModel },
			func(s *wizard.Session, v string) { s.Details.DeploymentModel = v }),
		textField("basePath", "Base Path", "/payments", true,
			func(s *wizard.Session) string { return s.Details.BasePath },
			func(s *wizard.Session, v string) { s.Details.BasePath = v }),
		textField("apiContext", "API Context", "/payments/v1", true,
			func(s *wizard.Session) string { return s.Details.APIContext },
			func(s *wizard.Session, v string) { s.Details.APIContext = v }),
	}
	meta := []formField{
		textField("apiName", "API Name", "Payment API", true,
			func(s *wizard.Session) string { return s.MetaData.APIName },
			func(s *wizard.Session, v string) { s.MetaData.APIName = v }),
		textField("apiVersion", "API Version", "1.0", true,
			func(s *wizard.Session) string { return s.MetaData.APIVersion },
			func(s *wizard.Session, v string) { s.MetaData.APIVersion = v }),
		choiceField("environment", "Environment", forms.Environments, true,
			func(s *wizard.Session) string { return s.MetaData.Environment },
			func(s *wizard.Session, v string) { s.MetaData.Environment = v }),
		textField("owner", "Owner", "Team Alpha", false,
			func(s *wizard.Session) string { return s.MetaData.Owner },
			func(s *wizard.Session, v string) { s.MetaData.Owner = v }),
		textField("expiryDate", "Expiry Date", "YYYY-MM-DD", false,
			func(s *wizard.Session) string { return s.MetaData.ExpiryDate },
			func(s *wizard.Session, v string) { s.MetaData.ExpiryDate = v }),
		choiceField("security", "Security", forms.SecurityOptions, false,
			func(s *wizard.Session) string { return s.MetaData.Security },
			func(s *wizard.Session, v string) { s.MetaData.Security = v }),
	}
	return wizardForm{steps: map[wizard.Step][]formField{
		wizard.StepDetails:  details,
		wizard.StepMetaData: meta,
	}}
}

// load copies the session into the inputs and focuses the first field.
func (f *wizardForm) load(s *wizard.Session) {
	for step, fields := range f.steps {
		for i := range fields {
			if !fields[i].choice() {
				fields[i].input.SetValue(fields[i].get(s))
			}
		}
		f.steps[step] = fields
	}
	f.focusField(s.Step(), 0)
}

func (f *wizardForm) focusField(step wizard.Step, idx int) {
	fields := f.steps[step]
	if len(fields) == 0 {
		f.focus = 0
		return
	}
	idx = ((idx % len(fields)) + len(fields)) % len(fields)
	for i := range fields {
		if i == idx && !fields[i].choice() {
			fields[i].input.Focus()
		} else {
			fields[i].input.Blur()
		}
	}
	f.focus = idx
}

func (f *wizardForm) focused(step wizard.Step) *formField {
	fields := f.steps[step]
	if f.focus < 0 || f.focus >= len(fields) {
		return nil
	}
	return &fields[f.focus]
}

// focusByName moves focus to the named field when it is on step.
func (f *wizardForm) focusByName(step wizard.Step, name string) {
	for i, fl := range f.steps[step] {
		if fl.name == name {
			f.focusField(step, i)
			return
		}
	}
}

func (m Model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.session.Step()

	switch {
	case key.Matches(msg, m.keys.Back):
		cmd := m.back()
		return m, cmd
	case key.Matches(msg, m.keys.PrevStep):
		m.session.Retreat()
		m.form.focusField(m.session.Step(), 0)
		return m, nil
	}

	if step == wizard.StepReview {
		switch {
		case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Enter):
			cmd := m.startSubmit()
			return m, cmd
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextStep):
		if err := m.session.Advance(); err != nil {
			m.setNotice(noticeError, causeText(err))
			var ve *forms.ValidationError
			if errors.As(err, &ve) {
				if first := firstProblem(ve); first != "" {
					m.form.focusByName(step, first)
				}
			}
			return m, nil
		}
		m.notice = nil
		m.form.focusField(m.session.Step(), 0)
		return m, nil
	case key.Matches(msg, m.keys.Check):
		cmd := m.startContextCheck()
		return m, cmd
	case key.Matches(msg, m.keys.NextField):
		m.form.focusField(step, m.form.focus+1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.focusField(step, m.form.focus-1)
		return m, nil
	}

	f := m.form.focused(step)
	if f == nil {
		return m, nil
	}
	if f.choice() {
		switch msg.String() {
		case "left":
			f.set(m.session, forms.Cycle(f.options, f.get(m.session), -1))
		case "right", " ":
			f.set(m.session, forms.Cycle(f.options, f.get(m.session), 1))
		case "?":
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.set(m.session, f.input.Value())
	return m, cmd
}

func firstProblem(ve *forms.ValidationError) string {
	if len(ve.Missing) > 0 {
		return ve.Missing[0]
	}
	if len(ve.Invalid) > 0 {
		return ve.Invalid[0]
	}
	return ""
}

func (m Model) renderWizard() string {
	var b strings.Builder
	title := nav.CreateAPI.Title()
	if t := m.session.EditingTarget(); t != nil {
		title = fmt.Sprintf("%s · %s (id %s)", nav.EditAPI.Title(), recordLabel(*t), t.ID)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderSteps(m.session.Step()))
	b.WriteString("\n\n")

	if m.session.Step() == wizard.StepReview {
		b.WriteString(m.renderReview())
		return b.String()
	}

	step := m.session.Step()
	for i, f := range m.form.steps[step] {
		focused := i == m.form.focus
		label := labelStyle.Render(f.label)
		if f.required {
			label += requiredStyle.Render(" *")
		}
		marker := "  "
		if focused {
			marker = focusStyle.Render("> ")
		}
		b.WriteString(marker + label + "\n")
		b.WriteString("    " + renderFieldValue(f, m.session, focused) + "\n")
		if f.name == "apiContext" {
			b.WriteString("    " + subtitleStyle.Render("ctrl+k checks availability") + "\n")
		}
	}
	return b.String()
}

func renderFieldValue(f formField, s *wizard.Session, focused bool) string {
	if !f.choice() {
		return f.input.View()
	}
	v := f.get(s)
	if v == "" {
		v = subtitleStyle.Render("Select…")
	}
	if focused {
		return focusStyle.Render("‹ ") + v + focusStyle.Render(" ›")
	}
	return v
}

func renderSteps(current wizard.Step) string {
	steps := []wizard.Step{wizard.StepDetails, wizard.StepMetaData, wizard.StepReview}
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		label := fmt.Sprintf("%d %s", int(s), s)
		switch {
		case s == current:
			parts = append(parts, focusStyle.Render(label))
		case s < current:
			parts = append(parts, lipgloss.NewStyle().Foreground(portalOK).Render("✓ "+s.String()))
		default:
			parts = append(parts, subtitleStyle.Render(label))
		}
	}
	return strings.Join(parts, subtitleStyle.Render(" ─ "))
}

func (m Model) renderReview() string {
	row := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		return labelStyle.Width(20).Render(label) + value + "\n"
	}
	d, md := m.session.Details, m.session.MetaData

	var b strings.Builder
	b.WriteString(titleStyle.Render("Details") + "\n")
	b.WriteString(row("Gateway Type", d.GatewayType))
	b.WriteString(row("Deployment Model", d.DeploymentModel))
	b.WriteString(row("Base Path", d.BasePath))
	b.WriteString(row("API Context", d.APIContext))
	b.WriteString("\n" + titleStyle.Render("Meta Data") + "\n")
	b.WriteString(row("API Name", md.APIName))
	b.WriteString(row("API Version", md.APIVersion))
	b.WriteString(row("Environment", md.Environment))
	b.WriteString(row("Owner", md.Owner))
	b.WriteString(row("Expiry Date", md.ExpiryDate))
	b.WriteString(row("Security", md.Security))
	return b.String()
}
