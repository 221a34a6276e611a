// Package config loads the service configuration from config.yaml.
//
// Config fields:
//   - Server.HTTPPort            — REST API, dashboard stream and /metrics (default 8080)
//   - Server.Auth.Mode           — "password" or "none"
//   - Server.Auth.PasswordHashEnv — environment variable holding the faculty bcrypt hash
//   - Server.Auth.Header         — header carrying the faculty password (default "x-faculty-password")
//   - Server.Dashboard.Interval  — dashboard broadcast period (default 5s)
//   - Storage.StudentsPath / AttendancePath — CSV files (default students.csv, attendance.csv)
//   - Subjects                   — allowed subject names (default Maths, Physics, CS, Electronics)
//   - Policy.Name / Policy.Bands — threshold policy: risk (default), eligibility or custom
//
// Load(path) applies defaults before unmarshalling, then validates. An
// unusable policy is reported as *analytics.ConfigurationError.
//
// LoadDotEnv reads a .env file so the *_env keys above can resolve secrets.
// Watch re-runs Load on file changes and hands the result to a callback.
package config
