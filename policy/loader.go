package policy

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// categoryOverride is one category's entry in an override file. Zero
// fields keep the built-in default.
type categoryOverride struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	InitialDelay     time.Duration `mapstructure:"initial_delay"`
	MaxDelay         time.Duration `mapstructure:"max_delay"`
	Multiplier       float64       `mapstructure:"multiplier"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`
}

// Validate checks that every set field is usable.
func (o categoryOverride) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&o.MaxAttempts, validation.Min(0)),
		validation.Field(&o.InitialDelay, validation.Min(time.Duration(0))),
		validation.Field(&o.MaxDelay, validation.Min(time.Duration(0))),
		validation.Field(&o.Multiplier, validation.When(o.Multiplier != 0, validation.Min(1.0))),
		validation.Field(&o.FailureThreshold, validation.Min(0)),
		validation.Field(&o.SuccessThreshold, validation.Min(0)),
		validation.Field(&o.ResetTimeout, validation.Min(time.Duration(0))),
	)
}

// routeOverride adds or replaces one tool route.
type routeOverride struct {
	Category string `mapstructure:"category"`
	Circuit  string `mapstructure:"circuit"`
}

// Validate checks the override names a category.
func (o routeOverride) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Category, validation.Required),
	)
}

type fileConfig struct {
	Categories map[string]categoryOverride `mapstructure:"categories"`
	Routes     map[string]routeOverride    `mapstructure:"routes"`
}

// Load reads category and route overrides from the file at path and
// merges them over the built-in defaults. Environment variables with
// the TOOLGUARD_ prefix take precedence over values in the file: the
// key categories.package-lookup.timeout is overridden by
// TOOLGUARD_CATEGORIES_PACKAGE_LOOKUP_TIMEOUT. The override surface is
// intentionally narrow: numeric budgets and routing only; retryable
// predicates are fixed per category.
func Load(path string) (*Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TOOLGUARD")
	// Nested keys use dots and category names use hyphens; both map to
	// underscores in the env spelling.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("policy: read config: %w", err)
	}
	return FromViper(v)
}

// FromViper builds a table from an already-populated viper instance.
func FromViper(v *viper.Viper) (*Table, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("policy: decode config: %w", err)
	}

	categories := Defaults()
	for name, o := range fc.Categories {
		cat := Category(name)
		cfg, ok := categories[cat]
		if !ok {
			return nil, fmt.Errorf("policy: unknown category %q", name)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("policy: category %q: %w", name, err)
		}
		categories[cat] = o.apply(cfg)
	}

	routes := DefaultRoutes()
	for tool, o := range fc.Routes {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("policy: route %q: %w", tool, err)
		}
		cat := Category(o.Category)
		if _, ok := categories[cat]; !ok {
			return nil, fmt.Errorf("policy: route %q: unknown category %q", tool, o.Category)
		}
		circuit := o.Circuit
		if circuit == "" {
			circuit = tool
		}
		routes[tool] = Route{Category: cat, Circuit: circuit}
	}

	return NewTable(categories, routes), nil
}

// apply overlays the set fields of the override onto cfg.
func (o categoryOverride) apply(cfg CategoryConfig) CategoryConfig {
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = o.MaxAttempts
	}
	if o.InitialDelay > 0 {
		cfg.Retry.InitialDelay = o.InitialDelay
	}
	if o.MaxDelay > 0 {
		cfg.Retry.MaxDelay = o.MaxDelay
	}
	if o.Multiplier > 0 {
		cfg.Retry.Multiplier = o.Multiplier
	}
	if o.FailureThreshold > 0 {
		cfg.Circuit.FailureThreshold = o.FailureThreshold
	}
	if o.SuccessThreshold > 0 {
		cfg.Circuit.SuccessThreshold = o.SuccessThreshold
	}
	if o.ResetTimeout > 0 {
		cfg.Circuit.ResetTimeout = o.ResetTimeout
	}
	return cfg
}
