package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clova.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.True(t, cfg.VerifyRequests)
	require.Equal(t, "ko", cfg.DefaultLang)
	require.Equal(t, "templates.yaml", cfg.TemplatesPath)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
route: /clova
application_ids:
  - com.example.dice
  - com.example.color
verify_requests: false
pretty_debug_logs: true
default_lang: en
skill: color
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/clova", cfg.Route)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, []string{"com.example.dice", "com.example.color"}, cfg.ApplicationIDs)
	require.False(t, cfg.VerifyRequests)
	require.True(t, cfg.PrettyDebugLogs)
	require.Equal(t, "en", cfg.DefaultLang)
	require.Equal(t, SkillColor, cfg.Skill)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_EnvOverlay(t *testing.T) {
	path := writeConfig(t, "skill: color\ndefault_lang: en\n")
	t.Setenv("CLOVA_SKILL", "magicball")
	t.Setenv("CLOVA_APPLICATION_IDS", "app-A, app-B")
	t.Setenv("CLOVA_VERIFY_REQUESTS", "false")
	t.Setenv("CLOVA_TEMPLATE_TABLE", "clova-templates")
	t.Setenv("CLOVA_SEED_TEMPLATES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, SkillMagicBall, cfg.Skill)
	require.Equal(t, "en", cfg.DefaultLang)
	require.Equal(t, []string{"app-A", "app-B"}, cfg.ApplicationIDs)
	require.False(t, cfg.VerifyRequests)
	require.Equal(t, "clova-templates", cfg.TemplateTable)
	require.True(t, cfg.SeedTemplates)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "route: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "route without slash", mutate: func(c *Config) { c.Route = "clova" }},
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }},
		{name: "unknown lang", mutate: func(c *Config) { c.DefaultLang = "fr" }},
		{name: "unknown skill", mutate: func(c *Config) { c.Skill = "pizza" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "no template source", mutate: func(c *Config) { c.TemplatesPath = "" }},
		{name: "seed without table", mutate: func(c *Config) { c.SeedTemplates = true }},
		{name: "seed without file", mutate: func(c *Config) {
			c.SeedTemplates = true
			c.TemplateTable = "clova-templates"
			c.TemplatesPath = ""
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}
