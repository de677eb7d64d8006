// Package nav is the portal's screen graph: a fixed set of named screens,
// a hard-coded Back target for each, and what entering a screen triggers.
// There is no history stack.
package nav

type Screen string

const (
	Home          Screen = "home"
	ProductTeams  Screen = "product-teams"
	Administrator Screen = "administrator"
	CreateAPI     Screen = "create-api"
	EditAPI       Screen = "edit-api"
	ViewAPIs      Screen = "view-apis"
	APIHistory    Screen = "api-history"
)

// Screens lists every screen.
var Screens = []Screen{Home, ProductTeams, Administrator, CreateAPI, EditAPI, ViewAPIs, APIHistory}

var parents = map[Screen]Screen{
	ProductTeams:  Home,
	Administrator: Home,
	CreateAPI:     ProductTeams,
	EditAPI:       ProductTeams,
	ViewAPIs:      ProductTeams,
	APIHistory:    ProductTeams,
}

var titles = map[Screen]string{
	Home:          "API Management Portal",
	ProductTeams:  "Product Teams",
	Administrator: "Administrator",
	CreateAPI:     "Create API",
	EditAPI:       "Edit API",
	ViewAPIs:      "View APIs",
	APIHistory:    "API History",
}

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	_, ok := titles[s]
	return ok
}

func (s Screen) Title() string { return titles[s] }

// Parent is where Back leads. Home has no parent and returns itself.
func (s Screen) Parent() Screen {
	if p, ok := parents[s]; ok {
		return p
	}
	return Home
}

// Effect is the side effect of entering a screen.
type Effect int

const (
	EffectNone Effect = iota
	EffectFetchAPIs
	EffectFetchHistory
	EffectResetWizard
)

// Transition is the result of a Go.
type Transition struct {
	From   Screen
	To     Screen
	Effect Effect
}

// Shell holds the active screen.
type Shell struct {
	current Screen
}

func NewShell() *Shell { return &Shell{current: Home} }

func (s *Shell) Current() Screen { return s.current }

// Go switches to screen and reports what the switch triggers. Unknown
// screens are ignored.
func (s *Shell) Go(screen Screen) Transition {
	if !screen.Valid() {
		return Transition{From: s.current, To: s.current}
	}
	t := Transition{From: s.current, To: screen}
	switch screen {
	case ViewAPIs:
		t.Effect = EffectFetchAPIs
	case APIHistory:
		t.Effect = EffectFetchHistory
	case CreateAPI:
		// Opening the wizard from anywhere but itself starts a clean create flow.
		if s.current != CreateAPI {
			t.Effect = EffectResetWizard
		}
	}
	s.current = screen
	return t
}

// Back goes to the current screen's parent.
func (s *Shell) Back() Transition {
	return s.Go(s.current.Parent())
}
