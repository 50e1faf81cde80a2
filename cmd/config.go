package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/letsencrypt/validator/v10"

	berrors "github.com/eastcoast-online/envcheck/errors"
	"github.com/eastcoast-online/envcheck/strictyaml"
)

// OpenTelemetryConfig configures tracing via OpenTelemetry.
// To enable tracing, set a nonzero SampleRatio and configure an Endpoint
type OpenTelemetryConfig struct {
	// Endpoint to connect to with the OTLP protocol over gRPC.
	// It should be of the form "localhost:4317"
	//
	// It always connects over plaintext, and so is only intended to connect
	// to a local OpenTelemetry collector. This should not be used over an
	// insecure network.
	Endpoint string `yaml:"endpoint" validate:"omitempty,hostname_port"`

	// SampleRatio is the ratio of new traces to head sample.
	// This only affects new traces without a parent with its own sampling
	// decision, and otherwise use the parent's sampling decision.
	//
	// Set to something between 0 and 1, where 1 is sampling all traces.
	SampleRatio float64 `yaml:"sampleratio" validate:"min=0,max=1"`
}

// ReadConfigFile reads the YAML file at filename into out. Keys in the file
// that out does not declare are errors.
func ReadConfigFile(filename string, out any) error {
	configData, err := os.ReadFile(filename)
	if err != nil {
		return berrors.ConfigurationError(err, "reading config file %q", filename)
	}
	err = strictyaml.Unmarshal(configData, out)
	if err != nil {
		return berrors.ConfigurationError(err, "parsing config file %q", filename)
	}
	return nil
}

// ValidateConfig checks the `validate` struct tags of config, which must be a
// pointer to a struct. Failures name fields by their YAML keys.
func ValidateConfig(config any) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	err := v.Struct(config)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return berrors.ConfigurationError(err, "validating config")
	}
	var errs []error
	for _, fe := range validationErrs {
		errs = append(errs, fmt.Errorf("%s: value %v fails %q", fe.Namespace(), fe.Value(), describeTag(fe)))
	}
	return berrors.ConfigurationError(errors.Join(errs...), "validating config")
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
