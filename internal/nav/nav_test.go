package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShell_StartsHome(t *testing.T) {
	assert.Equal(t, Home, NewShell().Current())
}

func TestShell_GoTriggersFetches(t *testing.T) {
	s := NewShell()
	assert.Equal(t, EffectNone, s.Go(ProductTeams).Effect)
	assert.Equal(t, EffectFetchAPIs, s.Go(ViewAPIs).Effect)
	assert.Equal(t, EffectFetchHistory, s.Go(APIHistory).Effect)
	assert.Equal(t, EffectResetWizard, s.Go(CreateAPI).Effect)
	assert.Equal(t, EffectNone, s.Go(CreateAPI).Effect)
	assert.Equal(t, EffectNone, s.Go(EditAPI).Effect)
}

func TestShell_BackUsesFixedParents(t *testing.T) {
	s := NewShell()
	s.Go(ViewAPIs)
	s.Go(EditAPI)

	tr := s.Back()
	assert.Equal(t, EditAPI, tr.From)
	assert.Equal(t, ProductTeams, tr.To)
	assert.Equal(t, Home, s.Back().To)
	assert.Equal(t, Home, s.Back().To)

	s.Go(Administrator)
	assert.Equal(t, Home, s.Back().To)
}

func TestShell_IgnoresUnknownScreens(t *testing.T) {
	s := NewShell()
	s.Go(ProductTeams)
	tr := s.Go(Screen("billing"))
	assert.Equal(t, ProductTeams, tr.To)
	assert.Equal(t, ProductTeams, s.Current())
}

func TestScreens_HaveTitles(t *testing.T) {
	for _, sc := range Screens {
		assert.NotEmpty(t, sc.Title(), sc)
	}
}
