package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Remote store backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendNone     = "none"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("storebackend", validateStoreBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "football", "basketball", "other":
		return true
	default:
		return false
	}
}

func validateStoreBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case BackendPostgres, BackendRedis, BackendMemory, BackendNone:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendPostgres:
		if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.Name == "") {
			return fmt.Errorf("store backend postgres requires database.url or database.host and database.name")
		}
		if cfg.IsProduction() && cfg.Database.URL == "" && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("store backend redis requires redis.addr")
		}
	}

	if cfg.Retry.Inference.MaxDelay > 0 && cfg.Retry.Inference.MaxDelay < cfg.Retry.Inference.InitialDelay {
		return fmt.Errorf("retry.inference.max_delay cannot be below initial_delay")
	}
	if cfg.Retry.Store.MaxDelay > 0 && cfg.Retry.Store.MaxDelay < cfg.Retry.Store.InitialDelay {
		return fmt.Errorf("retry.store.max_delay cannot be below initial_delay")
	}
	if cfg.Schedule.ActiveWindow > cfg.Schedule.GraceWindow {
		return fmt.Errorf("schedule.active_window cannot exceed schedule.grace_window")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var sb strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&sb, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&sb, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&sb, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&sb, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&sb, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&sb, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "category":
			fmt.Fprintf(&sb, "- Field '%s' must be one of: football, basketball, other\n", field)
		case "storebackend":
			fmt.Fprintf(&sb, "- Field '%s' must be one of: postgres, redis, memory, none\n", field)
		case "oneof":
			fmt.Fprintf(&sb, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&sb, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", sb.String())
}
