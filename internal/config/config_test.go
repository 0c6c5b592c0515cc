package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Content: ContentConfig{
			SkillsDir:     "content/skills",
			ItemsDir:      "content/items",
			IntrinsicsDir: "content/intrinsics",
			TacticsDir:    "content/tactics",
			DomainsDir:    "content/ai",
			LocalesDir:    "content/locales",
		},
		Battle: BattleConfig{
			MaxFollowUpDepth: 1,
			VarianceDice:     "1d4",
			Locale:           "en-US",
			HitPauseFrames:   2,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
content:
  skills_dir: data/skills
battle:
  max_follow_up_depth: 3
  locale: fr-FR
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "data/skills", cfg.Content.SkillsDir)
	assert.Equal(t, "content/items", cfg.Content.ItemsDir, "default must survive partial file")
	assert.Equal(t, 3, cfg.Battle.MaxFollowUpDepth)
	assert.Equal(t, "fr-FR", cfg.Battle.Locale)
	assert.Equal(t, "1d4", cfg.Battle.VarianceDice)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper_Defaults(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Battle.MaxFollowUpDepth)
	assert.Equal(t, "en-US", cfg.Battle.Locale)
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644))
	t.Setenv("DFX_BATTLE_LOCALE", "de-DE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de-DE", cfg.Battle.Locale)
}

func TestValidateLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateContentDirsRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Content.SkillsDir = ""
	cfg.Content.LocalesDir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content.skills_dir")
	assert.Contains(t, err.Error(), "content.locales_dir")
}

func TestValidateScriptsDirOptional(t *testing.T) {
	cfg := validConfig()
	cfg.Content.ScriptsDir = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateBattle(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.VarianceDice = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.Locale = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMultipleErrors(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "battle.variance_dice")
}

func TestPropertyFollowUpDepth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(-100, 100).Draw(t, "depth")
		cfg := validConfig()
		cfg.Battle.MaxFollowUpDepth = depth
		err := cfg.Validate()
		if depth < 0 {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	})
}

func TestPropertyInstructionLimit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(-1000, 1000).Draw(t, "limit")
		cfg := validConfig()
		cfg.Scripting.InstructionLimit = limit
		err := cfg.Validate()
		if limit < 0 {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	})
}
