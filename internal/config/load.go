package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
)

// Load reads an options file on top of Default and validates the result.
// An empty file yields the defaults.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options %s: %w", path, err)
	}

	opts := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing options %s: %w", path, err)
	}

	if errs := Validate(&opts); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &opts, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("options validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their YAML key.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Artifact names are single path segments.
	_ = v.RegisterValidation("filetemplate", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), `/\`)
	})

	return v
}

// Validate checks Options for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(o *Options) []string {
	var errs []string

	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	// Level ranges differ per codec.
	if o.Level != nil {
		kinds, _ := o.Kinds()
		for _, k := range kinds {
			switch k {
			case codec.Gzip, codec.Deflate, codec.LZ4:
				if *o.Level > 9 {
					errs = append(errs, fmt.Sprintf("level: %d is out of range for %s (0-9)", *o.Level, k))
				}
			case codec.Zstd:
				if *o.Level < 1 {
					errs = append(errs, fmt.Sprintf("level: %d is out of range for %s (1-22)", *o.Level, k))
				}
			}
		}
	}

	return errs
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s: at least %s value(s) required", field, fe.Param())
		}
		return fmt.Sprintf("%s: must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s: must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: invalid value '%v', must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required":
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		return fmt.Sprintf("%s: value is required", ns)
	case "filetemplate":
		return fmt.Sprintf("%s: '%v' must not contain path separators", field, fe.Value())
	default:
		return fmt.Sprintf("%s: failed rule '%s'", field, fe.Tag())
	}
}
