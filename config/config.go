// Package config provides YAML configuration parsing for pulsecheck.
//
// A configuration file supplies the target list, engine defaults and the
// settings of the collaborators around the engine (HTTP trigger, alerting,
// logging).
//
// Example configuration:
//
//	concurrency: 5
//	defaults:
//	  timeout: 10s
//	  max_retries: 2
//
//	targets:
//	  - name: Shop
//	    url: https://shop.example.com
//	    expect: {not: {in: [503]}}
//
//	grids:
//	  - name: Platform
//	    url_template: "https://{{.env}}.example.com/health"
//	    dimensions:
//	      env: [prod, staging]
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults applied by [Parse] when the file leaves a value unset.
const (
	DefaultConcurrency = 5
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultMethod      = "HEAD"
	DefaultAddr        = ":8080"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultSubject     = "[pulsecheck]"
)

// Config is the root configuration structure for pulsecheck.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Concurrency is the maximum number of targets checked at once.
	// Defaults to 5.
	Concurrency int `yaml:"concurrency"`

	// Defaults apply to every target and grid that leaves a field unset.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Server configures the HTTP trigger.
	Server ServerConfig `yaml:"server"`

	// Logging configures the log handler.
	Logging LoggingConfig `yaml:"logging"`

	// Alert configures notification channels for down targets.
	Alert AlertConfig `yaml:"alert"`

	// Targets defines individual health check targets.
	Targets []TargetConfig `yaml:"targets"`

	// Grids defines target grids that expand via cartesian product.
	Grids []GridConfig `yaml:"grids"`
}

// DefaultsConfig holds fallback values for targets.
type DefaultsConfig struct {
	Timeout    Duration `yaml:"timeout"`
	MaxRetries *int     `yaml:"max_retries"`
	Method     string   `yaml:"method"`
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	// Addr is the listen address. Defaults to ":8080".
	Addr string `yaml:"addr"`

	// AuthToken is the shared bearer secret. Empty disables authentication.
	// Supports environment variable substitution.
	AuthToken string `yaml:"auth_token"`
}

// LoggingConfig configures the log handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level"`

	// Format is json or text. Defaults to json.
	Format string `yaml:"format"`
}

// AlertConfig configures alert delivery. A channel without credentials is
// disabled.
type AlertConfig struct {
	// SubjectPrefix starts every alert subject. Defaults to "[pulsecheck]".
	SubjectPrefix string         `yaml:"subject_prefix"`
	Email         EmailConfig    `yaml:"email"`
	Telegram      TelegramConfig `yaml:"telegram"`
}

// EmailConfig configures the Resend email channel.
type EmailConfig struct {
	APIKey string   `yaml:"api_key"`
	From   string   `yaml:"from"`
	To     []string `yaml:"to"`
}

// Enabled reports whether the email channel has credentials.
func (e EmailConfig) Enabled() bool {
	return e.APIKey != ""
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Enabled reports whether the Telegram channel has credentials.
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// TargetConfig defines a single health check target.
type TargetConfig struct {
	// URL is the address to probe.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Name is the display name. Defaults to the URL.
	Name string `yaml:"name"`

	// Method is HEAD or GET. Falls back to defaults.method.
	Method string `yaml:"method"`

	// Timeout is the per-request timeout. Falls back to defaults.timeout.
	Timeout Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after a failed first attempt.
	// Falls back to defaults.max_retries.
	MaxRetries *int `yaml:"max_retries"`

	// Expect is the acceptance rule. See [RuleConfig].
	Expect RuleConfig `yaml:"expect"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Labels are metadata key-value pairs carried into results and alerts.
	Labels map[string]string `yaml:"labels"`
}

// DisplayName returns the name used in messages about the target.
func (t TargetConfig) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.URL
}

// GridConfig defines a target grid that expands via cartesian product.
//
// For example, with dimensions {env: [prod, staging], svc: [api, web]},
// the grid expands to 4 targets: prod/api, prod/web, staging/api, staging/web.
type GridConfig struct {
	// Name is the base name for generated targets.
	Name string `yaml:"name"`

	// URLTemplate is a Go template for generating target URLs.
	// Dimension keys are available as template variables: {{.env}}, {{.svc}}
	// Supports environment variable substitution in the template.
	URLTemplate string `yaml:"url_template"`

	// Dimensions maps dimension names to their possible values.
	Dimensions map[string][]string `yaml:"dimensions"`

	Method     string            `yaml:"method"`
	Timeout    Duration          `yaml:"timeout"`
	MaxRetries *int              `yaml:"max_retries"`
	Expect     RuleConfig        `yaml:"expect"`
	Headers    map[string]string `yaml:"headers"`

	// Labels are merged with auto-generated dimension labels and win on
	// collision.
	Labels map[string]string `yaml:"labels"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URLs, URL templates, header values,
// the auth token and alert credentials. Defaults are applied before
// validation. Malformed expect rules never fail parsing; see [Warnings].
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expand(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset values and normalises method names.
func (c *Config) applyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Defaults.Timeout == 0 {
		c.Defaults.Timeout = Duration(DefaultTimeout)
	}
	if c.Defaults.MaxRetries == nil {
		n := DefaultMaxRetries
		c.Defaults.MaxRetries = &n
	}
	if c.Defaults.Method == "" {
		c.Defaults.Method = DefaultMethod
	}
	c.Defaults.Method = strings.ToUpper(c.Defaults.Method)

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Alert.SubjectPrefix == "" {
		c.Alert.SubjectPrefix = DefaultSubject
	}

	for i := range c.Targets {
		c.Targets[i].Method = strings.ToUpper(c.Targets[i].Method)
	}
	for i := range c.Grids {
		c.Grids[i].Method = strings.ToUpper(c.Grids[i].Method)
	}
}

// expand substitutes environment variables in every field that supports it.
func (c *Config) expand() error {
	var err error

	if c.Server.AuthToken, err = expandEnvVars(c.Server.AuthToken); err != nil {
		return fmt.Errorf("server.auth_token: %w", err)
	}
	if c.Alert.Email.APIKey, err = expandEnvVars(c.Alert.Email.APIKey); err != nil {
		return fmt.Errorf("alert.email.api_key: %w", err)
	}
	if c.Alert.Telegram.Token, err = expandEnvVars(c.Alert.Telegram.Token); err != nil {
		return fmt.Errorf("alert.telegram.token: %w", err)
	}

	for i := range c.Targets {
		t := &c.Targets[i]
		if t.URL, err = expandEnvVars(t.URL); err != nil {
			return fmt.Errorf("targets[%d] (%s): url: %w", i, t.DisplayName(), err)
		}
		if err := expandHeaders(t.Headers); err != nil {
			return fmt.Errorf("targets[%d] (%s): %w", i, t.DisplayName(), err)
		}
	}

	for i := range c.Grids {
		g := &c.Grids[i]
		if g.URLTemplate, err = expandEnvVars(g.URLTemplate); err != nil {
			return fmt.Errorf("grids[%d] (%s): url_template: %w", i, g.Name, err)
		}
		if err := expandHeaders(g.Headers); err != nil {
			return fmt.Errorf("grids[%d] (%s): %w", i, g.Name, err)
		}
	}

	return nil
}

func expandHeaders(headers map[string]string) error {
	for k, v := range headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		headers[k] = expanded
	}
	return nil
}
