package configstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user and project layers at dir and clears the env layer.
func isolate(t *testing.T) (userPath, projectPath string) {
	t.Helper()
	dir := t.TempDir()
	origUser, origWd := osUserConfigDir, osGetwd
	t.Cleanup(func() {
		osUserConfigDir, osGetwd = origUser, origWd
	})
	osUserConfigDir = func() (string, error) { return filepath.Join(dir, "user"), nil }
	osGetwd = func() (string, error) { return filepath.Join(dir, "project"), nil }
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvDocsURL, "")
	t.Setenv(EnvOfflineFallbacks, "")

	userPath, err := DefaultPath()
	require.NoError(t, err)
	projectPath, err = ProjectPath()
	require.NoError(t, err)
	return userPath, projectPath
}

func TestSaveAtomicAndLoad_RoundTripAndTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	size := 25
	st := &Store{APIURL: "  http://localhost:8090  ", PageSize: &size}
	require.NoError(t, SaveAtomic(path, st))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", loaded.APIURL)
	require.NotNil(t, loaded.PageSize)
	assert.Equal(t, 25, *loaded.PageSize)
	assert.Nil(t, loaded.OfflineFallbacks)
}

func TestSaveAtomic_Validations(t *testing.T) {
	assert.Error(t, SaveAtomic("", &Store{}))
	assert.Error(t, SaveAtomic("x.yaml", nil))
	_, err := Load("")
	assert.Error(t, err)
}

func TestResolve_DefaultsOnly(t *testing.T) {
	isolate(t)
	s, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, DefaultDocsURL, s.DocsURL)
	assert.Equal(t, 10, s.PageSize)
	assert.Equal(t, 30*time.Second, s.Timeout())
	assert.True(t, s.OfflineFallbacks)
	assert.Empty(t, s.Sources)
}

func TestResolve_LayersUserProjectEnv(t *testing.T) {
	userPath, projectPath := isolate(t)

	size := 5
	off := false
	require.NoError(t, SaveAtomic(userPath, &Store{APIURL: "http://user", PageSize: &size, LogLevel: "debug"}))
	require.NoError(t, SaveAtomic(projectPath, &Store{APIURL: "http://project", OfflineFallbacks: &off}))

	s, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://project", s.APIURL)
	assert.Equal(t, 5, s.PageSize)
	assert.Equal(t, "debug", s.LogLevel)
	assert.False(t, s.OfflineFallbacks)
	assert.Equal(t, []string{userPath, projectPath}, s.Sources)

	t.Setenv(EnvAPIURL, "http://env")
	t.Setenv(EnvOfflineFallbacks, "true")
	s, err = Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://env", s.APIURL)
	assert.True(t, s.OfflineFallbacks)
}

func TestResolve_BadFileOrEnv(t *testing.T) {
	userPath, _ := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("apiUrl: [unclosed"), 0o600))
	_, err := Resolve()
	assert.Error(t, err)

	require.NoError(t, os.Remove(userPath))
	t.Setenv(EnvOfflineFallbacks, "sometimes")
	_, err = Resolve()
	assert.ErrorContains(t, err, EnvOfflineFallbacks)
}

func TestStoreSet(t *testing.T) {
	var st Store
	require.NoError(t, st.Set("apiUrl", " http://localhost:8090 "))
	require.NoError(t, st.Set("pageSize", "20"))
	require.NoError(t, st.Set("offlineFallbacks", "false"))
	require.NoError(t, st.Set("logLevel", "WARN"))

	assert.Equal(t, "http://localhost:8090", st.APIURL)
	assert.Equal(t, 20, *st.PageSize)
	assert.False(t, *st.OfflineFallbacks)
	assert.Equal(t, "warn", st.LogLevel)

	assert.ErrorContains(t, st.Set("colour", "blue"), "unknown config key")
	assert.Error(t, st.Set("pageSize", "0"))
	assert.Error(t, st.Set("timeoutSeconds", "soon"))
	assert.Equal(t, 20, *st.PageSize)
	assert.Nil(t, st.TimeoutSeconds)

	require.NoError(t, st.Set("pageSize", ""))
	assert.Nil(t, st.PageSize)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"apiUrl", "docsUrl", "logLevel", "offlineFallbacks", "pageSize", "timeoutSeconds"}, Keys())
}
