package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/api/http/presenter"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
	return v
}

// bindJSON parses and validates the body into out. When it returns false the
// 400 response has already been written and the handler must return err.
func bindJSON(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, presenter.Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]presenter.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, presenter.FieldError{
					Field:   fe.Field(),
					Rule:    fe.Tag(),
					Param:   fe.Param(),
					Message: validationMessage(fe.Tag(), fe.Param()),
				})
			}
			return false, presenter.ValidationError(c, "invalid request body", fields)
		}
		return false, presenter.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	return true, nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
