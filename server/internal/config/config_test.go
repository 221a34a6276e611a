package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "server: {}\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Dashboard.Interval != DefaultDashboardInterval {
		t.Errorf("dashboard.interval: got %v, want %v", cfg.Server.Dashboard.Interval, DefaultDashboardInterval)
	}
	if cfg.Storage.StudentsPath != DefaultStudentsPath || cfg.Storage.AttendancePath != DefaultAttendancePath {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if len(cfg.Subjects) != 4 || !cfg.HasSubject("Electronics") {
		t.Errorf("subjects: got %v", cfg.Subjects)
	}
	if cfg.Policy.Name != analytics.PolicyRisk {
		t.Errorf("policy: got %q, want risk", cfg.Policy.Name)
	}
	if !cfg.Server.Metrics.Enabled || cfg.Server.Metrics.Path != DefaultMetricsPath {
		t.Errorf("metrics: got %+v", cfg.Server.Metrics)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  auth:
    mode: password
    password_hash_env: FACULTY_HASH
    header: x-staff-secret
  dashboard:
    interval: 2s
storage:
  students_path: /data/roster.csv
  attendance_path: /data/log.csv
subjects: [Maths, Chemistry]
policy:
  name: eligibility
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-staff-secret" {
		t.Errorf("header: got %q", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Server.Dashboard.Interval != 2*time.Second {
		t.Errorf("interval: got %v", cfg.Server.Dashboard.Interval)
	}
	if cfg.HasSubject("Physics") || !cfg.HasSubject("Chemistry") {
		t.Errorf("subjects: got %v", cfg.Subjects)
	}
	pol, err := cfg.Policy.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pol.Classify(80).Label != analytics.LabelConditional {
		t.Errorf("Classify(80) = %q, want Conditional", pol.Classify(80).Label)
	}
}

func TestLoad_CustomPolicy(t *testing.T) {
	p := writeConfig(t, `policy:
  name: custom
  bands:
    - {label: Good, min: 90}
    - {label: Fair, min: 70}
    - {label: Poor, min: 0}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pol, _ := cfg.Policy.Resolve()
	if got := pol.Classify(72).Label; got != "Fair" {
		t.Errorf("Classify(72) = %q, want Fair", got)
	}
}

func TestLoad_NonMonotonicPolicy_ConfigurationError(t *testing.T) {
	p := writeConfig(t, `policy:
  name: custom
  bands:
    - {label: Low, min: 50}
    - {label: High, min: 80}
    - {label: None, min: 0}
`)
	_, err := Load(p)
	var ce *analytics.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *analytics.ConfigurationError", err)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: password
    password_hash_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != DefaultAuthHeader {
		t.Errorf("EffectiveHeader: got %q, want %q", h, DefaultAuthHeader)
	}
}

func TestLoad_PasswordHashResolution(t *testing.T) {
	t.Setenv("TEST_FACULTY_HASH", "$2a$10$abc")
	p := writeConfig(t, `server:
  auth:
    mode: password
    password_hash_env: TEST_FACULTY_HASH
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.PasswordHash(); h != "$2a$10$abc" {
		t.Errorf("PasswordHash(): got %q", h)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown auth mode", "server:\n  auth:\n    mode: oauth2\n"},
		{"password mode without hash env", "server:\n  auth:\n    mode: password\n"},
		{"port out of range", "server:\n  http_port: 70000\n"},
		{"zero interval", "server:\n  dashboard:\n    interval: 0s\n"},
		{"same storage paths", "storage:\n  students_path: a.csv\n  attendance_path: a.csv\n"},
		{"empty subjects", "subjects: []\n"},
		{"duplicate subject", "subjects: [CS, CS]\n"},
		{"unknown policy", "policy:\n  name: lenient\n"},
		{"bad metrics path", "server:\n  metrics:\n    enabled: true\n    path: metrics\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("ATTENDANCE_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ATTENDANCE_TEST_DOTENV") })

	if err := LoadDotEnv(p); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("ATTENDANCE_TEST_DOTENV"); got != "from-file" {
		t.Errorf("env = %q, want from-file", got)
	}
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv(missing) = %v, want nil", err)
	}
}

// watchPolicies runs WatchPolicy on path and returns the channel of reported
// policies plus a stop function that checks the watcher exits cleanly.
func watchPolicies(t *testing.T, path string) (<-chan analytics.Policy, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan analytics.Policy, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchPolicy(ctx, path, func(p analytics.Policy) {
			select {
			case changes <- p:
			default:
			}
		})
	}()
	time.Sleep(100 * time.Millisecond) // let the watcher register

	stop := func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("WatchPolicy returned %v", err)
			}
		case <-time.After(time.Second):
			t.Error("WatchPolicy did not stop after cancel")
		}
	}
	return changes, stop
}

func TestWatchPolicy_ReportsChangedPolicy(t *testing.T) {
	p := writeConfig(t, "policy:\n  name: risk\n")
	changes, stop := watchPolicies(t, p)
	defer stop()

	if err := os.WriteFile(p, []byte("policy:\n  name: eligibility\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if got.Name != analytics.PolicyEligibility || got.Classify(80).Label != analytics.LabelConditional {
			t.Errorf("policy: got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no policy change reported")
	}
}

func TestWatchPolicy_SkipsUnchangedAndInvalid(t *testing.T) {
	p := writeConfig(t, "policy:\n  name: risk\n")
	changes, stop := watchPolicies(t, p)
	defer stop()

	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(3 * reloadDelay)
	}
	// Same policy, other keys changed.
	write("server:\n  http_port: 9191\npolicy:\n  name: risk\n")
	// Bands out of order.
	write("policy:\n  name: custom\n  bands:\n    - {label: Low, min: 50}\n    - {label: High, min: 80}\n")

	select {
	case got := <-changes:
		t.Fatalf("unexpected policy change: %+v", got)
	default:
	}

	write("policy:\n  name: custom\n  bands:\n    - {label: Good, min: 90}\n    - {label: Poor, min: 0}\n")
	select {
	case got := <-changes:
		if got.Name != analytics.PolicyCustom || len(got.Bands) != 2 {
			t.Errorf("policy: got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no policy change reported")
	}
}

func TestLoad_Alerts(t *testing.T) {
	t.Setenv("TEST_SLACK_URL", "https://hooks.example.test/x")
	p := writeConfig(t, `alerts:
  rules:
    - name: low-attendance
      condition: percentage < 60
      severity: critical
      cooldown: 1h
    - name: not-eligible
      condition: label == Not Eligible
  webhooks:
    - type: slack
      url_env: TEST_SLACK_URL
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Alerts.Rules) != 2 || cfg.Alerts.Rules[0].Cooldown != time.Hour {
		t.Errorf("rules: got %+v", cfg.Alerts.Rules)
	}
	if u := cfg.Alerts.Webhooks[0].URL(); u != "https://hooks.example.test/x" {
		t.Errorf("webhook URL: got %q", u)
	}
}

func TestLoad_AlertsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"rule without name", "alerts:\n  rules:\n    - condition: percentage < 60\n"},
		{"duplicate rule", "alerts:\n  rules:\n    - {name: a, condition: percentage < 60}\n    - {name: a, condition: total > 1}\n"},
		{"short condition", "alerts:\n  rules:\n    - {name: a, condition: percentage}\n"},
		{"bad severity", "alerts:\n  rules:\n    - {name: a, condition: percentage < 60, severity: page}\n"},
		{"bad webhook type", "alerts:\n  webhooks:\n    - {type: email, url_env: X}\n"},
		{"webhook without env", "alerts:\n  webhooks:\n    - {type: http}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
