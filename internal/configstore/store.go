package configstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values used when no config file exists.
const (
	DefaultAPIURL         = "https://api.example.com"
	DefaultDocsURL        = "https://docs.example.com/api-documentation"
	DefaultPageSize       = 10
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
)

const (
	EnvAPIURL           = "GWPORTAL_API_URL"
	EnvDocsURL          = "GWPORTAL_DOCS_URL"
	EnvOfflineFallbacks = "GWPORTAL_OFFLINE_FALLBACKS"
)

const (
	appDir           = "gwportal"
	projectConfigDir = ".gwportal"
	configFileName   = "config.yaml"
)

// For mocking in tests
var (
	osUserConfigDir = os.UserConfigDir
	osGetwd         = os.Getwd
)

// Store is one config file. Unset fields leave lower layers alone, which is
// why the scalars are pointers.
type Store struct {
	APIURL           string `yaml:"apiUrl,omitempty" json:"apiUrl,omitempty"`
	DocsURL          string `yaml:"docsUrl,omitempty" json:"docsUrl,omitempty"`
	PageSize         *int   `yaml:"pageSize,omitempty" json:"pageSize,omitempty"`
	TimeoutSeconds   *int   `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"`
	OfflineFallbacks *bool  `yaml:"offlineFallbacks,omitempty" json:"offlineFallbacks,omitempty"`
	LogLevel         string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
}

// Settings is the resolved configuration after layering.
type Settings struct {
	APIURL           string `yaml:"apiUrl" json:"apiUrl"`
	DocsURL          string `yaml:"docsUrl" json:"docsUrl"`
	PageSize         int    `yaml:"pageSize" json:"pageSize"`
	TimeoutSeconds   int    `yaml:"timeoutSeconds" json:"timeoutSeconds"`
	OfflineFallbacks bool   `yaml:"offlineFallbacks" json:"offlineFallbacks"`
	LogLevel         string `yaml:"logLevel" json:"logLevel"`

	// Sources lists the files that contributed, lowest layer first.
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`
}

func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func Defaults() Settings {
	return Settings{
		APIURL:           DefaultAPIURL,
		DocsURL:          DefaultDocsURL,
		PageSize:         DefaultPageSize,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		OfflineFallbacks: true,
		LogLevel:         DefaultLogLevel,
	}
}

func DefaultPath() (string, error) {
	dir, err := osUserConfigDir()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("cannot determine user config dir")
	}
	return filepath.Join(dir, appDir, configFileName), nil
}

func ProjectPath() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func Load(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st Store
	if err := yaml.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	st.APIURL = strings.TrimSpace(st.APIURL)
	st.DocsURL = strings.TrimSpace(st.DocsURL)
	st.LogLevel = strings.TrimSpace(st.LogLevel)
	return &st, nil
}

func SaveAtomic(path string, st *Store) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("missing path")
	}
	if st == nil {
		return errors.New("missing store")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	payload, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Apply overlays the fields set in st onto s.
func (s Settings) Apply(st *Store) Settings {
	if st == nil {
		return s
	}
	if st.APIURL != "" {
		s.APIURL = st.APIURL
	}
	if st.DocsURL != "" {
		s.DocsURL = st.DocsURL
	}
	if st.PageSize != nil && *st.PageSize > 0 {
		s.PageSize = *st.PageSize
	}
	if st.TimeoutSeconds != nil && *st.TimeoutSeconds > 0 {
		s.TimeoutSeconds = *st.TimeoutSeconds
	}
	if st.OfflineFallbacks != nil {
		s.OfflineFallbacks = *st.OfflineFallbacks
	}
	if st.LogLevel != "" {
		s.LogLevel = st.LogLevel
	}
	return s
}

// Resolve layers defaults, the user file, the project file and the
// environment. Missing files are skipped; unreadable ones are errors.
func Resolve() (Settings, error) {
	s := Defaults()

	var paths []string
	if p, err := DefaultPath(); err == nil {
		paths = append(paths, p)
	}
	if p, err := ProjectPath(); err == nil {
		paths = append(paths, p)
	}
	for _, p := range paths {
		st, err := Load(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Settings{}, fmt.Errorf("load config %s: %w", p, err)
		}
		s = s.Apply(st)
		s.Sources = append(s.Sources, p)
	}

	env, err := fromEnv()
	if err != nil {
		return Settings{}, err
	}
	return s.Apply(env), nil
}

func fromEnv() (*Store, error) {
	st := &Store{
		APIURL:  strings.TrimSpace(os.Getenv(EnvAPIURL)),
		DocsURL: strings.TrimSpace(os.Getenv(EnvDocsURL)),
	}
	if v := strings.TrimSpace(os.Getenv(EnvOfflineFallbacks)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvOfflineFallbacks, err)
		}
		st.OfflineFallbacks = &b
	}
	return st, nil
}

// Keys lists the settable keys in a stable order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(*Store, string) error{
	"apiUrl": func(st *Store, v string) error {
		st.APIURL = v
		return nil
	},
	"docsUrl": func(st *Store, v string) error {
		st.DocsURL = v
		return nil
	},
	"pageSize": func(st *Store, v string) error {
		n, err := positiveInt(v)
		st.PageSize = &n
		return err
	},
	"timeoutSeconds": func(st *Store, v string) error {
		n, err := positiveInt(v)
		st.TimeoutSeconds = &n
		return err
	},
	"offlineFallbacks": func(st *Store, v string) error {
		b, err := strconv.ParseBool(v)
		st.OfflineFallbacks = &b
		return err
	},
	"logLevel": func(st *Store, v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "warning", "error":
			st.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("unknown log level %q", v)
	},
}

// Set assigns one key from its string form. An empty value clears it.
func (st *Store) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		st.clear(key)
		return nil
	}
	next := *st
	if err := set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*st = next
	return nil
}

func (st *Store) clear(key string) {
	switch key {
	case "apiUrl":
		st.APIURL = ""
	case "docsUrl":
		st.DocsURL = ""
	case "pageSize":
		st.PageSize = nil
	case "timeoutSeconds":
		st.TimeoutSeconds = nil
	case "offlineFallbacks":
		st.OfflineFallbacks = nil
	case "logLevel":
		st.LogLevel = ""
	}
}

func positiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
