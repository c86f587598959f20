package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"NexoraPanel/models"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "FB_USER_TOKEN", "FB_PAGE_TOKEN", "FACEBOOK_API_URL", "FACEBOOK_API_VERSION",
		"IMAGE_FOLDER", "POST_INTERVAL_SECONDS", "HTTP_TIMEOUT_SECONDS", "MODULES_FILE",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}
	for _, module := range []string{"SUITE", "INVESTMENTS", "MANAGEMENT", "OPS_TEAM"} {
		for _, suffix := range []string{"PAGE_ID", "PAGE_TOKEN", "POSTS_FILE", "IMAGE_DIR", "POST_SCHEDULE", "INTERVAL_SECONDS"} {
			t.Setenv("NEXORA_"+module+"_"+suffix, "")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "5000", cfg.Port)
	require.Equal(t, "https://graph.facebook.com", cfg.FacebookAPIURL)
	require.Equal(t, "v19.0", cfg.FacebookVersion)
	require.Equal(t, "images", cfg.ImageDir)
	require.Equal(t, 30*time.Minute, cfg.PostInterval)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 5.0, cfg.RateLimitRPS)
	require.Equal(t, 20, cfg.RateLimitBurst)
	require.Empty(t, cfg.UserToken)

	require.Len(t, cfg.Modules, 3)
	names := []string{cfg.Modules[0].Name, cfg.Modules[1].Name, cfg.Modules[2].Name}
	require.Equal(t, []string{"suite", "investments", "management"}, names)

	suite, ok := cfg.Module("suite")
	require.True(t, ok)
	require.Equal(t, "967550829768297", suite.PageID)
	require.Equal(t, "images", suite.ImageDir)
	require.Equal(t, 30*time.Minute, suite.Interval)
	require.Empty(t, suite.AccessToken)

	_, ok = cfg.Module("direct_posting")
	require.False(t, ok)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("FB_USER_TOKEN", "  user-token ")
	t.Setenv("FB_PAGE_TOKEN", "shared-page-token")
	t.Setenv("FACEBOOK_API_URL", "http://localhost:9999/")
	t.Setenv("POST_INTERVAL_SECONDS", "600")
	t.Setenv("IMAGE_FOLDER", "/srv/images")
	t.Setenv("NEXORA_MANAGEMENT_PAGE_TOKEN", "management-token")
	t.Setenv("NEXORA_MANAGEMENT_INTERVAL_SECONDS", "45")
	t.Setenv("NEXORA_INVESTMENTS_PAGE_ID", "555")
	t.Setenv("NEXORA_SUITE_POST_SCHEDULE", "0 9 * * *")
	t.Setenv("NEXORA_SUITE_IMAGE_DIR", "/srv/suite")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "user-token", cfg.UserToken)
	require.Equal(t, "http://localhost:9999", cfg.FacebookAPIURL)

	management, _ := cfg.Module("management")
	require.Equal(t, "management-token", management.AccessToken)
	require.Equal(t, 45*time.Second, management.Interval)
	require.Equal(t, "/srv/images", management.ImageDir)

	investments, _ := cfg.Module("investments")
	require.Equal(t, "555", investments.PageID)
	require.Equal(t, "shared-page-token", investments.AccessToken, "falls back to FB_PAGE_TOKEN")
	require.Equal(t, 10*time.Minute, investments.Interval)

	suite, _ := cfg.Module("suite")
	require.Equal(t, "0 9 * * *", suite.PostSchedule)
	require.Equal(t, "/srv/suite", suite.ImageDir)
}

func writeModulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModulesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODULES_FILE", writeModulesFile(t, `
modules:
  - name: ops-team
    page_id: "42"
    access_token: yaml-token
    posts_file: posts/ops.json
    interval_seconds: 120
    post_schedule: "@every 1h"
  - name: news
    display_name: Nexora News
    page_id: "43"
    posts_file: posts/news.json
`))
	t.Setenv("NEXORA_OPS_TEAM_PAGE_ID", "4242")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Modules, 2)

	ops := cfg.Modules[0]
	require.Equal(t, "ops-team", ops.Name)
	require.Equal(t, "ops-team", ops.DisplayName)
	require.Equal(t, "4242", ops.PageID)
	require.Equal(t, "yaml-token", ops.AccessToken)
	require.Equal(t, 2*time.Minute, ops.Interval)
	require.Equal(t, "@every 1h", ops.PostSchedule)

	news := cfg.Modules[1]
	require.Equal(t, "Nexora News", news.DisplayName)
	require.Equal(t, 30*time.Minute, news.Interval)
}

func TestLoadModulesFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "empty list", content: "modules: []\n", errPart: "defines no modules"},
		{name: "unknown field", content: "modules:\n  - name: a\n    colour: red\n", errPart: "colour"},
		{name: "reserved name", content: "modules:\n  - name: direct_posting\n", errPart: "reserved"},
		{name: "duplicate", content: "modules:\n  - name: a\n  - name: a\n", errPart: "duplicate"},
		{name: "missing name", content: "modules:\n  - page_id: \"1\"\n", errPart: "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MODULES_FILE", writeModulesFile(t, tt.content))

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadModulesFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODULES_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadNonPositiveIntervalFallsBack(t *testing.T) {
	for _, raw := range []string{"0", "-30"} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("POST_INTERVAL_SECONDS", raw)
			t.Setenv("NEXORA_MANAGEMENT_INTERVAL_SECONDS", raw)

			cfg, err := Load()
			require.NoError(t, err)
			require.Equal(t, 30*time.Minute, cfg.PostInterval)
			for _, m := range cfg.Modules {
				require.Equal(t, 30*time.Minute, m.Interval, m.Name)
			}
		})
	}
}

func TestLoadModulesFileNonPositiveInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("POST_INTERVAL_SECONDS", "600")
	t.Setenv("MODULES_FILE", writeModulesFile(t, "modules:\n  - name: news\n    interval_seconds: -5\n"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, cfg.Modules[0].Interval)
}

func TestValidateModulesRejectsNonPositiveInterval(t *testing.T) {
	err := validateModules([]models.ModuleConfig{{Name: "suite", Interval: 0}})
	require.ErrorContains(t, err, "interval must be positive")

	require.NoError(t, validateModules([]models.ModuleConfig{{Name: "suite", Interval: time.Second}}))
}
