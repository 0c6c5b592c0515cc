// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds the directories content definitions are loaded from.
type ContentConfig struct {
	SkillsDir     string `mapstructure:"skills_dir"`
	ItemsDir      string `mapstructure:"items_dir"`
	IntrinsicsDir string `mapstructure:"intrinsics_dir"`
	TacticsDir    string `mapstructure:"tactics_dir"`
	DomainsDir    string `mapstructure:"domains_dir"`
	LocalesDir    string `mapstructure:"locales_dir"`
	// ScriptsDir is the directory of Lua effect and plan scripts; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// BattleConfig holds resolution pipeline settings.
type BattleConfig struct {
	// MaxFollowUpDepth bounds how many follow-up resolutions may nest inside one action.
	MaxFollowUpDepth int `mapstructure:"max_follow_up_depth"`
	// VarianceDice is the dice expression added to base power by the damage formula.
	VarianceDice string `mapstructure:"variance_dice"`
	// Locale selects the message catalog used for the battle log.
	Locale string `mapstructure:"locale"`
	// HitPauseFrames is the number of frames the driver pauses after a damaging hit.
	HitPauseFrames int `mapstructure:"hit_pause_frames"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps opcodes per script call; 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	required := []struct {
		key, val string
	}{
		{"content.skills_dir", c.SkillsDir},
		{"content.items_dir", c.ItemsDir},
		{"content.intrinsics_dir", c.IntrinsicsDir},
		{"content.tactics_dir", c.TacticsDir},
		{"content.locales_dir", c.LocalesDir},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, r.key+" must not be empty")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.MaxFollowUpDepth < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_follow_up_depth must be >= 0, got %d", b.MaxFollowUpDepth))
	}
	if b.VarianceDice == "" {
		errs = append(errs, "battle.variance_dice must not be empty")
	}
	if b.Locale == "" {
		errs = append(errs, "battle.locale must not be empty")
	}
	if b.HitPauseFrames < 0 {
		errs = append(errs, fmt.Sprintf("battle.hit_pause_frames must be >= 0, got %d", b.HitPauseFrames))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DFX_ prefix
	v.SetEnvPrefix("DFX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance populated only with default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("content.skills_dir", "content/skills")
	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.intrinsics_dir", "content/intrinsics")
	v.SetDefault("content.tactics_dir", "content/tactics")
	v.SetDefault("content.domains_dir", "content/ai")
	v.SetDefault("content.locales_dir", "content/locales")
	v.SetDefault("content.scripts_dir", "content/scripts")

	v.SetDefault("battle.max_follow_up_depth", 1)
	v.SetDefault("battle.variance_dice", "1d4")
	v.SetDefault("battle.locale", "en-US")
	v.SetDefault("battle.hit_pause_frames", 2)

	v.SetDefault("scripting.instruction_limit", 0)
}
