package strategy

import (
	"bytes"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

var paramValidator = newParamValidator()

func newParamValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validateParams checks the validate tags of params. codes maps a yaml field
// name to the error code reported for it.
func validateParams(params any, codes map[string]errors.ErrorCode) error {
	err := paramValidator.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to validate parameters", err)
	}

	fe := fieldErrors[0]
	code, ok := codes[fe.Field()]
	if !ok {
		code = errors.ErrCodeInvalidParameter
	}

	switch fe.Tag() {
	case "gte":
		return errors.NewValidationErrorf(code, fe.Field(), fe.Value(), "must be at least %s", fe.Param())
	case "gt":
		return errors.NewValidationErrorf(code, fe.Field(), fe.Value(), "must be greater than %s", fe.Param())
	default:
		return errors.NewValidationErrorf(code, fe.Field(), fe.Value(), "failed %q check", fe.Tag())
	}
}

// DecodeParams decodes a loosely typed parameter map, as read from a YAML
// config, into out. Unknown keys are rejected.
func DecodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}

	data, err := yaml.Marshal(params)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to encode parameters", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to decode parameters", err)
	}

	return nil
}
