package controllers

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Vietnamese mobile numbers: 0 or +84 followed by a 3/5/7/8/9 prefix and 8 digits.
var vnPhonePattern = regexp.MustCompile(`^(0|\+84)(3|5|7|8|9)[0-9]{8}$`)

// RegisterValidators adds the custom binding tags to gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("vnphone", validateVNPhone)
}

func validateVNPhone(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer(" ", "", ".", "", "-", "").Replace(fl.Field().String())
	return vnPhonePattern.MatchString(phone)
}
