package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// Default values for the configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultDashboardInterval = 5 * time.Second
	DefaultStudentsPath      = "students.csv"
	DefaultAttendancePath    = "attendance.csv"
	DefaultAuthHeader        = "x-faculty-password"
	DefaultMetricsPath       = "/metrics"
)

// DefaultSubjects is the subject set offered when none is configured.
var DefaultSubjects = []string{"Maths", "Physics", "CS", "Electronics"}

// Config is the full configuration tree parsed from config.yaml.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Subjects []string      `yaml:"subjects"`
	Policy   PolicyConfig  `yaml:"policy"`
	Alerts   AlertsConfig  `yaml:"alerts"`
}

// ServerConfig holds the HTTP-facing settings.
type ServerConfig struct {
	// HTTPPort serves the REST API, the dashboard stream and metrics.
	HTTPPort int `yaml:"http_port"`

	// Auth gates the faculty routes.
	Auth AuthConfig `yaml:"auth"`

	// Dashboard controls the WebSocket summary broadcast.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Metrics controls the Prometheus exposition endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// AuthConfig controls the faculty password gate.
type AuthConfig struct {
	// Mode is one of: password | none.
	Mode string `yaml:"mode"`

	// PasswordHashEnv names the environment variable holding the bcrypt hash
	// of the faculty password. Generate one with the facultypw command.
	PasswordHashEnv string `yaml:"password_hash_env"`

	// Header is the request header carrying the plaintext password.
	Header string `yaml:"header"`
}

// PasswordHash returns the bcrypt hash resolved from the environment.
func (a AuthConfig) PasswordHash() string {
	if a.PasswordHashEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordHashEnv)
}

// EffectiveHeader returns the configured header name, or DefaultAuthHeader.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// DashboardConfig controls the WebSocket hub.
type DashboardConfig struct {
	// Interval between summary broadcasts.
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// StorageConfig names the CSV files.
type StorageConfig struct {
	StudentsPath   string `yaml:"students_path"`
	AttendancePath string `yaml:"attendance_path"`
}

// PolicyConfig selects the classification thresholds.
type PolicyConfig struct {
	// Name is one of: risk | eligibility | custom.
	Name string `yaml:"name"`

	// Bands is required when Name is custom and ignored otherwise.
	Bands []analytics.Band `yaml:"bands"`
}

// AlertsConfig holds attendance alert rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one per-student alert condition.
type AlertRule struct {
	// Name is the alert identifier, used with the roll as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression: "percentage < 60", "absent >= 5",
	// "label == CRITICAL".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 24 hours if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Resolve builds and validates the analytics policy.
func (p PolicyConfig) Resolve() (analytics.Policy, error) {
	return analytics.PolicyByName(p.Name, p.Bands)
}

// HasSubject reports whether s is in the configured subject set.
func (c *Config) HasSubject(s string) bool {
	for _, v := range c.Subjects {
		if v == s {
			return true
		}
	}
	return false
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from a .env file. Variables already
// set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %q: %w", path, err)
	}
	return nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:  DefaultHTTPPort,
			Dashboard: DashboardConfig{Interval: DefaultDashboardInterval},
			Metrics:   MetricsConfig{Enabled: true, Path: DefaultMetricsPath},
		},
		Storage: StorageConfig{
			StudentsPath:   DefaultStudentsPath,
			AttendancePath: DefaultAttendancePath,
		},
		Subjects: append([]string(nil), DefaultSubjects...),
		Policy:   PolicyConfig{Name: analytics.PolicyRisk},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "password":
		if cfg.Server.Auth.PasswordHashEnv == "" {
			return fmt.Errorf("server.auth.password_hash_env is required in password mode")
		}
	case "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want password|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Dashboard.Interval <= 0 {
		return fmt.Errorf("server.dashboard.interval must be positive")
	}
	if cfg.Server.Metrics.Enabled && !strings.HasPrefix(cfg.Server.Metrics.Path, "/") {
		return fmt.Errorf("server.metrics.path %q must start with /", cfg.Server.Metrics.Path)
	}
	if cfg.Storage.StudentsPath == "" || cfg.Storage.AttendancePath == "" {
		return fmt.Errorf("storage.students_path and storage.attendance_path are required")
	}
	if cfg.Storage.StudentsPath == cfg.Storage.AttendancePath {
		return fmt.Errorf("storage paths must differ")
	}
	if len(cfg.Subjects) == 0 {
		return fmt.Errorf("subjects must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Subjects))
	for i, s := range cfg.Subjects {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("subjects[%d] is empty", i)
		}
		if seen[s] {
			return fmt.Errorf("subjects[%d] %q is duplicated", i, s)
		}
		seen[s] = true
	}
	if _, err := cfg.Policy.Resolve(); err != nil {
		return err
	}
	return validateAlerts(cfg.Alerts)
}

func validateAlerts(a AlertsConfig) error {
	names := make(map[string]bool, len(a.Rules))
	for i, r := range a.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d].name is required", i)
		}
		if names[r.Name] {
			return fmt.Errorf("alerts.rules[%d] name %q is duplicated", i, r.Name)
		}
		names[r.Name] = true
		if f := strings.Fields(r.Condition); len(f) < 3 {
			return fmt.Errorf("alerts.rules[%d].condition %q: want \"field op value\"", i, r.Condition)
		}
		switch r.Severity {
		case "", "critical", "warning", "info":
		default:
			return fmt.Errorf("alerts.rules[%d].severity %q unknown: want critical|warning|info", i, r.Severity)
		}
	}
	for i, w := range a.Webhooks {
		switch w.Type {
		case "teams", "slack", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d].type %q unknown: want teams|slack|http", i, w.Type)
		}
		if w.URLEnv == "" {
			return fmt.Errorf("alerts.webhooks[%d].url_env is required", i)
		}
	}
	return nil
}
