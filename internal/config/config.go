// Package config loads the webhook settings from clova.yml and CLOVA_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPath = "clova.yml"
	envPrefix   = "CLOVA_"
)

// Skill names understood by cmd.
const (
	SkillColor     = "color"
	SkillDice      = "dice"
	SkillMagicBall = "magicball"
)

type Config struct {
	Route string `koanf:"route"`
	Addr  string `koanf:"addr"`
	// ApplicationIDs is the verification allow-list. Entries may hold
	// comma-separated lists, as env values do.
	ApplicationIDs  []string `koanf:"application_ids"`
	VerifyRequests  bool     `koanf:"verify_requests"`
	PrettyDebugLogs bool     `koanf:"pretty_debug_logs"`
	DefaultLang     string   `koanf:"default_lang"`
	LogLevel        string   `koanf:"log_level"`
	Skill           string   `koanf:"skill"`
	TemplatesPath   string   `koanf:"templates_path"`
	// TemplateTable selects the DynamoDB template source over TemplatesPath.
	TemplateTable string `koanf:"template_table"`
	// SeedTemplates copies TemplatesPath into TemplateTable at startup.
	SeedTemplates bool `koanf:"seed_templates"`
	// ParamPrefix enables loading <prefix>/application_ids from SSM.
	ParamPrefix string `koanf:"param_prefix"`
}

func Default() *Config {
	return &Config{
		Route:          "/",
		Addr:           ":8080",
		VerifyRequests: true,
		DefaultLang:    "ko",
		LogLevel:       "info",
		Skill:          SkillDice,
		TemplatesPath:  "templates.yaml",
	}
}

// Load reads path if it exists, then overlays CLOVA_* variables
// (CLOVA_DEFAULT_LANG -> default_lang) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: access %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ApplicationIDs = splitIDs(cfg.ApplicationIDs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitIDs(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, id := range strings.Split(entry, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

var validSkills = map[string]bool{
	SkillColor:     true,
	SkillDice:      true,
	SkillMagicBall: true,
}

var validLangs = map[string]bool{"ko": true, "en": true, "ja": true}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Route, "/") {
		return fmt.Errorf("config: route %q must start with /", c.Route)
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if !validLangs[c.DefaultLang] {
		return fmt.Errorf("config: invalid default_lang %q: must be one of ko, en, ja", c.DefaultLang)
	}
	if !validSkills[c.Skill] {
		return fmt.Errorf("config: invalid skill %q: must be one of color, dice, magicball", c.Skill)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.TemplateTable == "" && c.TemplatesPath == "" {
		return fmt.Errorf("config: templates_path or template_table is required")
	}
	if c.SeedTemplates && (c.TemplateTable == "" || c.TemplatesPath == "") {
		return fmt.Errorf("config: seed_templates needs both templates_path and template_table")
	}
	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
