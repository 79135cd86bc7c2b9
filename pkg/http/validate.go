package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	validatorOnce sync.Once
	requestRules  *validator.Validate
)

// rules returns the shared validator, which names fields after their JSON
// keys so messages match what the client sent.
func rules() *validator.Validate {
	validatorOnce.Do(func() {
		requestRules = validator.New()
		requestRules.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "param", "query"} {
				if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return requestRules
}

// ReadAndValidateRequest binds the body, applies defaults and validates. A nil
// result means the request is usable; otherwise it lists what was wrong.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return describe(err)
	}
	if err := defaults.Set(req); err != nil {
		return describe(err)
	}
	if err := rules().StructCtx(c.Request().Context(), req); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) []ValidationError {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		out := make([]ValidationError, len(fields))
		for i, fe := range fields {
			out[i] = ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: fe.Field() + " " + ruleText(fe),
				Params:  ruleParams(fe),
			}
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_BODY", Message: msg}}
}

// ruleTexts phrases each failed rule as the predicate the field had to satisfy.
var ruleTexts = map[string]string{
	"required": "is required",
	"alphanum": "must contain only letters and digits",
	"url":      "must be a valid URL",
	"nefield":  "must differ from %s",
	"oneof":    "must be one of %s",
	"gt":       "must be greater than %s",
	"gte":      "must be at least %s",
	"lt":       "must be less than %s",
	"lte":      "must be at most %s",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
}

func ruleText(fe validator.FieldError) string {
	text, ok := ruleTexts[fe.Tag()]
	if !ok {
		return "failed rule " + fe.Tag()
	}
	if !strings.Contains(text, "%s") {
		return text
	}
	param := fe.Param()
	switch fe.Tag() {
	case "oneof":
		param = strings.Join(strings.Fields(param), ", ")
	case "min", "max":
		if fe.Kind() == reflect.String {
			param += " characters"
		}
	}
	return fmt.Sprintf(text, param)
}

func ruleParams(fe validator.FieldError) map[string]interface{} {
	if fe.Param() == "" {
		return nil
	}
	switch fe.Tag() {
	case "oneof":
		return map[string]interface{}{"options": strings.Fields(fe.Param())}
	case "nefield":
		return map[string]interface{}{"other": fe.Param()}
	case "min", "gte":
		return map[string]interface{}{"min": fe.Param()}
	case "max", "lte":
		return map[string]interface{}{"max": fe.Param()}
	}
	return map[string]interface{}{"value": fe.Param()}
}
