package controller

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterValidators adds the username binding tag to gin's validator and
// reports fields by their JSON name
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return v.RegisterValidation("username", validateUsername)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	return username != "me" && usernamePattern.MatchString(username)
}
