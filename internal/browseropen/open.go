// Package browseropen launches the system browser for documentation links.
package browseropen

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoLauncher is returned when every launcher for the platform failed.
var ErrNoLauncher = errors.New("no browser launcher succeeded")

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// platform describes where we are running.
type platform struct {
	goos       string
	wsl        bool
	browserEnv string
}

func currentPlatform() platform {
	p := platform{goos: runtime.GOOS, browserEnv: strings.TrimSpace(os.Getenv("BROWSER"))}
	if p.goos == "linux" {
		p.wsl = isWSL()
	}
	return p
}

// Open validates raw as an absolute http(s) URL and hands it to the first
// launcher that starts.
func Open(raw string) error {
	u, err := Validate(raw)
	if err != nil {
		return err
	}
	return openFor(currentPlatform(), u)
}

// Validate trims raw and checks that it is an absolute http or https URL.
func Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("missing url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u.String(), nil
}

func openFor(p platform, u string) error {
	return run(launchers(p, u))
}

// launchers lists the argv candidates for p in the order they are tried.
func launchers(p platform, u string) [][]string {
	switch p.goos {
	case "darwin":
		return [][]string{{"open", u}}
	case "windows":
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", u},
			{"cmd", "/c", "start", "", u},
			{"powershell", "-NoProfile", "-Command", "Start-Process", u},
			{"explorer", u},
		}
	}

	var out [][]string
	if p.wsl {
		out = append(out,
			[]string{"wslview", u},
			[]string{"cmd.exe", "/c", "start", "", u},
			[]string{"powershell.exe", "-NoProfile", "-Command", "Start-Process", u},
			[]string{"explorer.exe", u},
		)
	}
	out = append(out, fromBrowserEnv(p.browserEnv, u)...)
	return append(out, []string{"xdg-open", u})
}

// fromBrowserEnv expands a colon-separated BROWSER value. Entries holding
// %s get the URL substituted, the rest get it appended.
func fromBrowserEnv(raw, u string) [][]string {
	var out [][]string
	for _, part := range strings.Split(raw, ":") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var argv []string
		if strings.Contains(part, "%s") {
			argv = strings.Fields(strings.ReplaceAll(part, "%s", u))
		} else {
			argv = append(strings.Fields(part), u)
		}
		out = append(out, argv)
	}
	return out
}

func run(candidates [][]string) error {
	var errs []error
	for _, argv := range candidates {
		if len(argv) == 0 {
			continue
		}
		err := startCommand(argv[0], argv[1:]...)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", argv[0], err))
	}
	return errors.Join(append([]error{ErrNoLauncher}, errs...)...)
}

func isWSL() bool {
	if os.Getenv("WSL_INTEROP") != "" || os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	for _, path := range []string{"/proc/sys/kernel/osrelease", "/proc/version"} {
		if b, err := os.ReadFile(path); err == nil && strings.Contains(strings.ToLower(string(b)), "microsoft") {
			return true
		}
	}
	return false
}
