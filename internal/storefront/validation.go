package storefront

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shopping-buddy/internal/llm"
)

var registerOnce sync.Once

// registerValidators adds the "backend" tag to gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		if err := v.RegisterValidation("backend", validBackend); err != nil {
			panic(fmt.Sprintf("register backend validator: %v", err))
		}
	})
}

func validBackend(fl validator.FieldLevel) bool {
	_, err := llm.ParseBackend(fl.Field().String())
	return err == nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// validationMessage turns binding errors into a single readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "backend":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, backendList()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func backendList() string {
	names := make([]string, 0, 4)
	for _, b := range llm.Backends() {
		names = append(names, string(b))
	}
	return strings.Join(names, ", ")
}
