package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/utils"
)

// defaultPostIntervalSeconds is the batch runner cadence when none is set.
const defaultPostIntervalSeconds = 1800

type Config struct {
	Port            string
	UserToken       string
	PageToken       string
	FacebookAPIURL  string
	FacebookVersion string
	ImageDir        string
	PostInterval    time.Duration
	HTTPTimeout     time.Duration
	ModulesFile     string
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxBodyBytes    int64
	Modules         []models.ModuleConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		UserToken:       strings.TrimSpace(os.Getenv("FB_USER_TOKEN")),
		PageToken:       strings.TrimSpace(os.Getenv("FB_PAGE_TOKEN")),
		FacebookAPIURL:  strings.TrimRight(getEnv("FACEBOOK_API_URL", "https://graph.facebook.com"), "/"),
		FacebookVersion: getEnv("FACEBOOK_API_VERSION", "v19.0"),
		ImageDir:        getEnv("IMAGE_FOLDER", "images"),
		PostInterval:    time.Duration(getEnvPositiveInt("POST_INTERVAL_SECONDS", defaultPostIntervalSeconds)) * time.Second,
		HTTPTimeout:     time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		ModulesFile:     os.Getenv("MODULES_FILE"),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}

	modules := defaultModules()
	if cfg.ModulesFile != "" {
		loaded, err := LoadModulesFile(cfg.ModulesFile)
		if err != nil {
			return nil, fmt.Errorf("load modules file: %w", err)
		}
		modules = loaded
	}

	for i := range modules {
		applyModuleEnv(&modules[i], cfg)
	}
	if err := validateModules(modules); err != nil {
		return nil, err
	}
	cfg.Modules = modules

	return cfg, nil
}

// Module returns the module configuration registered under name.
func (c *Config) Module(name string) (models.ModuleConfig, bool) {
	for _, m := range c.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return models.ModuleConfig{}, false
}

func defaultModules() []models.ModuleConfig {
	return []models.ModuleConfig{
		{
			Name:        "suite",
			DisplayName: "Nexora Suite",
			PageID:      "967550829768297",
			PostsFile:   "posts/visa_posts.json",
		},
		{
			Name:        "investments",
			DisplayName: "Nexora Investments",
			PostsFile:   "posts/tour_posts.json",
		},
		{
			Name:        "management",
			DisplayName: "Nexora Management",
			PageID:      "178168346255851",
			PostsFile:   "posts/management_posts.json",
		},
	}
}

// envPrefix is NEXORA_<NAME>_, e.g. NEXORA_SUITE_PAGE_ID.
func envPrefix(name string) string {
	return "NEXORA_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
}

func applyModuleEnv(m *models.ModuleConfig, cfg *Config) {
	prefix := envPrefix(m.Name)

	m.PageID = getEnv(prefix+"PAGE_ID", m.PageID)
	m.AccessToken = getEnv(prefix+"PAGE_TOKEN", m.AccessToken)
	if m.AccessToken == "" {
		m.AccessToken = cfg.PageToken
	}
	m.PostsFile = getEnv(prefix+"POSTS_FILE", m.PostsFile)
	m.ImageDir = getEnv(prefix+"IMAGE_DIR", m.ImageDir)
	if m.ImageDir == "" {
		m.ImageDir = cfg.ImageDir
	}
	m.PostSchedule = getEnv(prefix+"POST_SCHEDULE", m.PostSchedule)

	if secs := getEnvInt(prefix+"INTERVAL_SECONDS", 0); secs > 0 {
		m.Interval = time.Duration(secs) * time.Second
	}
	if m.Interval <= 0 {
		m.Interval = cfg.PostInterval
	}
	if m.DisplayName == "" {
		m.DisplayName = m.Name
	}
}

func validateModules(modules []models.ModuleConfig) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.Name == "" {
			return fmt.Errorf("module name is required")
		}
		if m.Name == models.DirectPostingModule {
			return fmt.Errorf("module name %q is reserved", m.Name)
		}
		if m.Interval <= 0 {
			return fmt.Errorf("module %s: interval must be positive, got %s", m.Name, m.Interval)
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate module %q", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvPositiveInt is getEnvInt for values that must be at least 1. Zero or
// negative values fall back to the default with a warning.
func getEnvPositiveInt(key string, defaultValue int) int {
	value := getEnvInt(key, defaultValue)
	if value < 1 {
		utils.Warnf("%s=%d is not positive, using %d", key, value, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
