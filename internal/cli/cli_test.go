package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clean-dependency-project/check-atlassian-version/internal/resolve"
)

func runWith(t *testing.T, resolvers Resolvers, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"check_atlassian_version"}, args...), &stdout, &stderr, resolvers)
	return code, stdout.String(), stderr.String()
}

func TestRun_Severities(t *testing.T) {
	tests := []struct {
		name     string
		mock     resolve.MockResolver
		exitCode int
		stdout   string
	}{
		{
			name:     "warning",
			mock:     resolve.MockResolver{Installed: "9.4.2", Latest: "9.4.5"},
			exitCode: 1,
			stdout:   "WARNING: Installed version 9.4.2 differs in patch version from the latest 9.4.5\n",
		},
		{
			name:     "ok",
			mock:     resolve.MockResolver{Installed: "9.4.5", Latest: "9.4.5"},
			exitCode: 0,
			stdout:   "OK: Installed version 9.4.5 is up-to-date\n",
		},
		{
			name:     "critical",
			mock:     resolve.MockResolver{Installed: "9.3.0", Latest: "9.4.0"},
			exitCode: 2,
			stdout:   "CRITICAL: Installed version 9.3.0 is significantly out of date compared to the latest 9.4.0\n",
		},
		{
			name: "unknown",
			mock: resolve.MockResolver{
				InstalledErr: resolve.ResolveError{Op: resolve.OpResolveInstalled, Err: resolve.ErrNotFound},
				Latest:       "9.4.0",
			},
			exitCode: 3,
			stdout:   "UNKNOWN: Error encountered - UNKNOWN: Version not found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := tt.mock
			code, stdout, _ := runWith(t, Resolvers{Installed: &mock, Latest: &mock},
				"--host", "jira.example.com", "--software", "jira")

			if code != tt.exitCode {
				t.Errorf("expected exit code %d, got %d", tt.exitCode, code)
			}
			if stdout != tt.stdout {
				t.Errorf("expected stdout %q, got %q", tt.stdout, stdout)
			}
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	mock := &resolve.MockResolver{Installed: "9.4.2", Latest: "9.4.2"}
	resolvers := Resolvers{Installed: mock, Latest: mock}

	tests := []struct {
		name string
		args []string
	}{
		{"missing host", []string{"--software", "jira"}},
		{"missing software", []string{"--host", "jira.example.com"}},
		{"unknown software", []string{"--host", "jira.example.com", "--software", "bitbucket"}},
		{"blank host", []string{"--host", " ", "--software", "jira"}},
		{"non-positive timeout", []string{"--host", "jira.example.com", "--software", "jira", "--timeout", "0s"}},
		{"bad log level", []string{"--host", "jira.example.com", "--software", "jira", "--log-level", "loud"}},
		{"missing config file", []string{"--host", "jira.example.com", "--software", "jira", "--config", "/nonexistent/check.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runWith(t, resolvers, tt.args...)
			if code != 3 {
				t.Errorf("expected exit code 3, got %d", code)
			}
			if !strings.HasPrefix(stdout, "UNKNOWN: ") {
				t.Errorf("expected UNKNOWN line on stdout, got %q", stdout)
			}
		})
	}

	if mock.InstalledCalls != 0 || mock.LatestCalls != 0 {
		t.Errorf("expected no lookups on usage errors, got %d/%d", mock.InstalledCalls, mock.LatestCalls)
	}
}

func TestRun_ShortFlags(t *testing.T) {
	r := &recordingInstalled{version: "8.5.4"}
	latest := &resolve.MockResolver{Latest: "8.5.4"}

	code, stdout, _ := runWith(t, Resolvers{Installed: r, Latest: latest},
		"-H", "wiki.example.com", "--software", "confluence", "-S", "--auth", "monitor:secret")

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stdout)
	}
	if r.baseURL != "https://wiki.example.com" {
		t.Errorf("unexpected base URL %s", r.baseURL)
	}
	if r.creds == nil || r.creds.Username != "monitor" || r.creds.Password != "secret" {
		t.Errorf("unexpected credentials %+v", r.creds)
	}
}

func TestRun_LogsStayOffStdout(t *testing.T) {
	mock := &resolve.MockResolver{InstalledErr: errors.New("boom"), Latest: "9.4.0"}
	code, stdout, stderr := runWith(t, Resolvers{Installed: mock, Latest: mock},
		"--host", "jira.example.com", "--software", "jira", "--log-level", "debug")

	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if strings.Count(stdout, "\n") != 1 {
		t.Errorf("expected exactly one stdout line, got %q", stdout)
	}
	if !strings.Contains(stderr, "failed to resolve installed version") {
		t.Errorf("expected warning on stderr, got %q", stderr)
	}
}

// Exercises the HTTP resolvers against a fake Jira server that also serves the release feed.
func TestRun_EndToEndHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/serverInfo":
			if user, pass, ok := r.BasicAuth(); !ok || user != "monitor" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"version":"9.4.2","deploymentType":"Server"}`))
		case "/feeds/jira-software.json":
			_, _ = w.Write([]byte(`downloads([
				{"edition":"Standard","version":"9.4.5"},
				{"edition":"Standard","version":"9.4.3"},
				{"edition":"Enterprise","version":"9.4.4"}
			])`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	configPath := filepath.Join(t.TempDir(), "check.yaml")
	configData := "feed:\n  base_url: \"" + server.URL + "/feeds\"\nhttp:\n  timeout: \"5s\"\n"
	if err := os.WriteFile(configPath, []byte(configData), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	host := strings.TrimPrefix(server.URL, "http://")

	code, stdout, _ := runWith(t, Resolvers{},
		"--host", host, "--software", "jira", "--auth", "monitor:secret", "--config", configPath)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	expected := "WARNING: Installed version 9.4.2 differs in patch version from the latest 9.4.5\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	code, stdout, _ = runWith(t, Resolvers{},
		"--host", host, "--software", "jira", "--auth", "monitor:secret", "--lts", "--config", configPath)
	if code != 1 || !strings.Contains(stdout, "latest 9.4.4") {
		t.Errorf("expected LTS warning against 9.4.4, got %d %q", code, stdout)
	}

	code, stdout, _ = runWith(t, Resolvers{},
		"--host", host, "--software", "jira", "--config", configPath)
	if code != 3 || !strings.HasPrefix(stdout, "UNKNOWN: Error encountered - UNKNOWN: Request error - 401 Unauthorized") {
		t.Errorf("expected UNKNOWN for unauthorized request, got %d %q", code, stdout)
	}
}
