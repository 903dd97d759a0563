// Package config loads csentinel's runtime configuration, grounded on
// safedep-pmg's config package: a viper-backed struct overridable by bound
// pflag flags, with a watched config file for hot-reloadable fields.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type configKey struct{}

// Config is the full runtime configuration for cmd/sentinel, unmarshalled
// from sentinel.yaml and/or CLI flags. cmd/lpsof does not read it.
type Config struct {
	// IntervalSeconds is the tick/poll period, in seconds, for watch mode.
	IntervalSeconds int `mapstructure:"interval_seconds"`
	// CronSchedule, if set, overrides IntervalSeconds with a full cron
	// expression (e.g. "0 */6 * * *") for watch-mode scheduling.
	CronSchedule string `mapstructure:"cron_schedule"`

	// SyslogTarget is "host:port"; empty disables the syslog sink.
	SyslogTarget string `mapstructure:"syslog_target"`
	// SyslogFormat is "cef" or "json".
	SyslogFormat string `mapstructure:"syslog_format"`

	// LogFilePath is the append-only event log sink path; empty disables it.
	LogFilePath string `mapstructure:"log_file_path"`

	// EmailTarget is the sendmail recipient; empty disables the email sink.
	EmailTarget string `mapstructure:"email_target"`
	// RiskThreshold gates the email sink: only risk_score >= threshold fires.
	RiskThreshold int `mapstructure:"risk_threshold"`

	// BaselineSystemDir is the preferred, privileged baseline directory.
	BaselineSystemDir string `mapstructure:"baseline_system_dir"`
	// StateDir is the only directory state files may be written under.
	StateDir string `mapstructure:"state_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

const (
	configName = "sentinel"
	configType = "yaml"
)

// DefaultConfig returns csentinel's built-in defaults, used both as viper's
// fallback values and to seed a freshly written config file.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds:   60,
		SyslogFormat:      "cef",
		RiskThreshold:      31,
		BaselineSystemDir: "/var/lib/sentinel",
		StateDir:          "/var/tmp",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// SearchPaths returns the config-file lookup order: system path first, then
// the per-user fallback, mirroring the baseline store's own load-path rule.
func SearchPaths() []string {
	paths := []string{"/etc/sentinel"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".sentinel"))
	}
	return paths
}

// Load reads sentinel.yaml from SearchPaths, overlays any bound CLI flags in
// fs, and unmarshals the result. A missing config file is not an error: the
// built-in defaults apply.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	for _, p := range SearchPaths() {
		v.AddConfigPath(p)
	}

	for key, value := range asMap(DefaultConfig()) {
		v.SetDefault(key, value)
	}

	bindFlags(v, fs)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// WatchReload re-invokes onChange with the freshly unmarshalled Config
// whenever the active config file changes on disk, so the SIEM risk
// threshold and syslog target can be hot-reloaded between ticks without a
// restart.
func WatchReload(v *viper.Viper, onChange func(Config)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	bind := func(key, flag string) {
		if f := fs.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	bind("interval_seconds", "interval")
	bind("syslog_target", "syslog")
	bind("syslog_format", "syslog-format")
	bind("log_file_path", "log-file")
	bind("email_target", "email")
	bind("risk_threshold", "risk-threshold")
	bind("cron_schedule", "cron")
}

func asMap(cfg Config) map[string]any {
	return map[string]any{
		"interval_seconds":    cfg.IntervalSeconds,
		"cron_schedule":       cfg.CronSchedule,
		"syslog_target":       cfg.SyslogTarget,
		"syslog_format":       cfg.SyslogFormat,
		"log_file_path":       cfg.LogFilePath,
		"email_target":        cfg.EmailTarget,
		"risk_threshold":      cfg.RiskThreshold,
		"baseline_system_dir": cfg.BaselineSystemDir,
		"state_dir":           cfg.StateDir,
		"log_level":           cfg.LogLevel,
		"log_format":          cfg.LogFormat,
	}
}

// Inject attaches cfg to ctx.
func Inject(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the Config attached to ctx, or DefaultConfig() if
// none was injected.
func FromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey{}).(Config); ok {
		return cfg
	}
	return DefaultConfig()
}
