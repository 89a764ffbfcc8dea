package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"text/template"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

func init() {
	// report field errors with their YAML keys
	validation.ErrorTag = "yaml"
}

// maxRetriesLimit mirrors the largest retry budget a target accepts.
const maxRetriesLimit = 10

// Validate checks the configuration after defaults have been applied.
//
// Acceptance rules are not validated here: a malformed rule only makes its
// target permanently down. Use [Warnings] to surface them.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.Defaults),
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Alert),
		validation.Field(&c.Targets),
		validation.Field(&c.Grids),
	)
}

// Validate implements validation.Validatable.
func (d DefaultsConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Timeout, validation.Min(Duration(0)).Error("must not be negative")),
		validation.Field(&d.MaxRetries, validation.Min(0), validation.Max(maxRetriesLimit)),
		validation.Field(&d.Method, validation.In("HEAD", "GET").Error("must be HEAD or GET")),
	)
}

// Validate implements validation.Validatable.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required, validation.By(validateHostPort)),
	)
}

// Validate implements validation.Validatable.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&l.Format,
			validation.Required,
			validation.In(LogFormatJSON, LogFormatText),
		),
	)
}

// Validate implements validation.Validatable.
func (a AlertConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Email),
		validation.Field(&a.Telegram),
	)
}

// Validate implements validation.Validatable.
func (e EmailConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.From, validation.When(e.Enabled(), validation.Required)),
		validation.Field(&e.To,
			validation.When(e.Enabled(), validation.Required),
			validation.Each(is.EmailFormat),
		),
	)
}

// Validate implements validation.Validatable.
func (t TelegramConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ChatID, validation.When(t.Enabled(), validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (t TargetConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.URL, validation.Required, validation.By(validateTargetURL)),
		validation.Field(&t.Method, validation.In("HEAD", "GET").Error("must be HEAD or GET")),
		validation.Field(&t.Timeout, validation.Min(Duration(0)).Error("must not be negative")),
		validation.Field(&t.MaxRetries, validation.Min(0), validation.Max(maxRetriesLimit)),
	)
}

// Validate implements validation.Validatable.
func (g GridConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.URLTemplate, validation.Required, validation.By(validateTemplate)),
		validation.Field(&g.Dimensions, validation.Required, validation.By(validateDimensions)),
		validation.Field(&g.Method, validation.In("HEAD", "GET").Error("must be HEAD or GET")),
		validation.Field(&g.Timeout, validation.Min(Duration(0)).Error("must not be negative")),
		validation.Field(&g.MaxRetries, validation.Min(0), validation.Max(maxRetriesLimit)),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateTargetURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

// validateTemplate fails fast before grid expansion tries to use the template.
func validateTemplate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if _, err := template.New("").Parse(s); err != nil {
		return validation.NewError("validation_invalid_template", "invalid template: "+err.Error())
	}
	return nil
}

func validateDimensions(value interface{}) error {
	dims, ok := value.(map[string][]string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a map of value lists")
	}

	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := dims[name]
		if len(values) == 0 {
			return validation.NewError("validation_empty_dimension",
				fmt.Sprintf("dimension %q has no values", name))
		}
		seen := make(map[string]struct{}, len(values))
		for _, v := range values {
			if v == "" {
				return validation.NewError("validation_empty_value",
					fmt.Sprintf("dimension %q contains an empty value", name))
			}
			if _, exists := seen[v]; exists {
				return validation.NewError("validation_duplicate_value",
					fmt.Sprintf("dimension %q has duplicate value %q", name, v))
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}
