// Package config provides Viper-based configuration loading for the arena.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns persistence on. When false the simulator runs fights in memory only.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// FightConfig holds the rules every fight runs under.
type FightConfig struct {
	MaxTurns        int           `mapstructure:"max_turns"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	// MaxDuration bounds a whole fight's wall-clock time; 0 disables the watchdog.
	MaxDuration    time.Duration `mapstructure:"max_duration"`
	CritChance     float64       `mapstructure:"crit_chance"`
	CritMultiplier float64       `mapstructure:"crit_multiplier"`
	EnergyRegen    int           `mapstructure:"energy_regen"`
	ScoreK         int           `mapstructure:"score_k"`
	// LogDraws logs every RNG draw at debug level.
	LogDraws bool `mapstructure:"log_draws"`
}

// Rules converts the section to fight.Rules.
//
// Postcondition: the result passes fight.Rules.Validate iff f passes validateFight.
func (f FightConfig) Rules() fight.Rules {
	return fight.Rules{
		MaxTurns:        f.MaxTurns,
		ProviderTimeout: f.ProviderTimeout,
		MaxDuration:     f.MaxDuration,
		CritChance:      f.CritChance,
		CritMultiplier:  f.CritMultiplier,
		EnergyRegen:     f.EnergyRegen,
		ScoreK:          f.ScoreK,
	}
}

// ContentConfig names the directories content is loaded from.
type ContentConfig struct {
	Alterations string `mapstructure:"alterations"`
	Actions     string `mapstructure:"actions"`
	Monsters    string `mapstructure:"monsters"`
	AI          string `mapstructure:"ai"`
	Scripts     string `mapstructure:"scripts"`
	// ScriptInstructionLimit caps opcodes per Lua call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Fight    FightConfig    `mapstructure:"fight"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateFight(c.Fight); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFight(f FightConfig) error {
	return f.Rules().Validate()
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Alterations == "" {
		errs = append(errs, "content.alterations must not be empty")
	}
	if c.Actions == "" {
		errs = append(errs, "content.actions must not be empty")
	}
	if c.Monsters == "" {
		errs = append(errs, "content.monsters must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// New returns a Viper instance with defaults and ARENA_ environment overrides
// installed, ready for a config file or explicit Set calls.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	rules := fight.DefaultRules()
	v.SetDefault("fight.max_turns", rules.MaxTurns)
	v.SetDefault("fight.provider_timeout", rules.ProviderTimeout)
	v.SetDefault("fight.max_duration", rules.MaxDuration)
	v.SetDefault("fight.crit_chance", rules.CritChance)
	v.SetDefault("fight.crit_multiplier", rules.CritMultiplier)
	v.SetDefault("fight.energy_regen", rules.EnergyRegen)
	v.SetDefault("fight.score_k", rules.ScoreK)
	v.SetDefault("fight.log_draws", false)

	v.SetDefault("content.alterations", "content/alterations")
	v.SetDefault("content.actions", "content/actions")
	v.SetDefault("content.monsters", "content/monsters")
	v.SetDefault("content.ai", "content/ai")
	v.SetDefault("content.scripts", "content/scripts")
	v.SetDefault("content.script_instruction_limit", 0)
}
