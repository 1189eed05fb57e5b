package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rota/pkg/core/engine"
	"github.com/jakechorley/shift-rota/pkg/core/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, Validate(cfg))
	assert.Equal(t, 100, cfg.Generation.Iterations)
	assert.Equal(t, 7, cfg.Generation.LookbackDays)
	assert.Equal(t, engine.DefaultWeights(), cfg.Generation.Weights)
	assert.Equal(t, model.DefaultWorkerSettings(), cfg.Defaults.WorkerSettings())
}

func TestLoadFromPath_PartialOverridesKeepDefaults(t *testing.T) {
	path := writeFile(t, "shift_rota_config.test.yaml", `
httpAddr: ":9090"
lockTTL: 30s
generation:
  iterations: 25
  timeBudget: 2s
  weights:
    requestedWork: 1500
defaults:
  maxConsecutive: 4
publish:
  spreadsheetID: sheet-123
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 25, cfg.Generation.Iterations)
	assert.Equal(t, 100, cfg.Generation.ForcedIterations)
	assert.Equal(t, 2*time.Second, cfg.Generation.TimeBudget)
	assert.Equal(t, 1500, cfg.Generation.Weights.RequestedWork)
	assert.Equal(t, -10000, cfg.Generation.Weights.UnfilledSlot)
	assert.Equal(t, 4, cfg.Defaults.MaxConsecutive)
	assert.Equal(t, 2, cfg.Defaults.MinDaysOff)
	assert.Equal(t, "sheet-123", cfg.Publish.SpreadsheetID)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rota")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	path := writeFile(t, "config.yaml", "databaseURL: postgres://file/rota\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/rota", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero iterations", "generation:\n  iterations: 0\n"},
		{"zero max consecutive", "defaults:\n  maxConsecutive: 0\n"},
		{"empty http addr", "httpAddr: \"\"\n"},
		{"unfilled cheaper than forced", "generation:\n  weights:\n    unfilledSlot: -100\n"},
		{"bad yaml", "generation: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			_, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv_FindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shift_rota_config.ci.yaml"), []byte("httpAddr: \":7000\"\n"), 0600))
	t.Chdir(dir)

	cfg, err := LoadWithEnv("ci")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)

	_, err = LoadWithEnv("missing")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "SHIFT_ROTA_TEST_VALUE=loaded\n")
	t.Setenv("SHIFT_ROTA_TEST_VALUE", "")
	os.Unsetenv("SHIFT_ROTA_TEST_VALUE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("SHIFT_ROTA_TEST_VALUE"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	valid := writeFile(t, "oauthClient.json", `{"installed":{
		"client_id":"id.apps.googleusercontent.com","project_id":"rota",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url":"https://www.googleapis.com/oauth2/v1/certs",
		"client_secret":"secret","redirect_uris":["http://localhost"]}}`)

	cfg, err := LoadOAuthClientFromPath(valid)
	require.NoError(t, err)
	assert.Equal(t, "rota", cfg.Installed.ProjectID)

	invalid := writeFile(t, "oauthClient.json", `{"installed":{"client_id":"id","auth_uri":"not-a-url"}}`)
	_, err = LoadOAuthClientFromPath(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
