package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the config for required fields and valid values.
// All problems are reported together.
func Validate(c *Config) error {
	var errors []string

	for _, err := range validateSidecar(c.Sidecar) {
		errors = append(errors, err.Error())
	}

	for _, err := range validateUpdate(c.Update) {
		errors = append(errors, err.Error())
	}

	if err := validateLog(c.Log); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateSidecar(s SidecarConfig) []error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, ValidationError{Field: "sidecar.name", Message: "name is required"})
	} else if filepath.Base(s.Name) != s.Name {
		errs = append(errs, ValidationError{
			Field:   "sidecar.name",
			Message: fmt.Sprintf("'%s' must be a file name, set sidecar.dir for the location", s.Name),
		})
	}

	if err := s.Streams.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "sidecar.streams", Message: err.Error()})
	}

	if err := s.Policy.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "sidecar.policy", Message: err.Error()})
	}

	return errs
}

func validateUpdate(u UpdateConfig) []error {
	var errs []error

	if _, err := u.TimeoutDuration(); err != nil {
		errs = append(errs, ValidationError{Field: "update.timeout", Message: err.Error()})
	}

	// The rest only matters when updates run
	if !u.Enabled {
		return errs
	}

	if err := u.Source.Validate(); err != nil {
		return append(errs, ValidationError{Field: "update.source", Message: err.Error()})
	}

	if u.Binary == "" {
		errs = append(errs, ValidationError{Field: "update.binary", Message: "binary name is required"})
	}

	if u.Source.IsGitHub() {
		if u.GitHub.Owner == "" || u.GitHub.Repo == "" {
			errs = append(errs, ValidationError{
				Field:   "update.github",
				Message: "owner and repo are required for github source",
			})
		}
		return errs
	}

	if u.URL == "" {
		errs = append(errs, ValidationError{Field: "update.url", Message: "url is required for manifest source"})
	} else if parsed, err := url.Parse(u.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "update.url",
			Message: fmt.Sprintf("'%s' must be an http or https URL", u.URL),
		})
	}

	return errs
}

func validateLog(l LogConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return ValidationError{Field: "log.level", Message: err.Error()}
	}
	return nil
}
