package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefault_Basics(t *testing.T) {
	st := SeedDefault()
	require.Len(t, st.APIs, 3)
	assert.Len(t, st.History, 3)
	assert.Equal(t, 4, st.NextID)

	pay := st.Find("1")
	require.NotNil(t, pay)
	assert.Equal(t, "Payment API", pay.Name)
	assert.Equal(t, "Payment API", pay.APIName)
	assert.Equal(t, "Team Alpha", pay.Owner)
	assert.NoError(t, pay.Details.Validate())
	assert.NoError(t, pay.MetaData.Validate())

	assert.Same(t, pay, st.ContextOwner(pay.APIContext))
	assert.Nil(t, st.ContextOwner("/nowhere"))
	assert.Nil(t, st.Find("99"))
}

func TestSaveAtomicAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock", "state.json")

	require.NoError(t, SaveAtomic(path, SeedDefault()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "\n"))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Find("2"))
	assert.Equal(t, "/users", loaded.Find("2").BasePath)
	assert.Equal(t, 4, loaded.NextID)
}

func TestLoad_FillsNextID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"apis":[{"id":7,"name":"X"}]}`), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, st.NextID)
	assert.NotNil(t, st.Find("7"))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	newer := filepath.Join(dir, "newer.json")
	require.NoError(t, os.WriteFile(newer, []byte(`{"version":99}`), 0o600))
	_, err = Load(newer)
	assert.ErrorContains(t, err, "newer than supported")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	_, err = Load(broken)
	assert.Error(t, err)
}

func TestSaveAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, SaveAtomic(path, SeedDefault()))
	require.NoError(t, SaveAtomic(path, SeedDefault()))
	assert.Error(t, SaveAtomic(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}
