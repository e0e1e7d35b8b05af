package api

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	validator "github.com/go-playground/validator/v10"

	"github.com/abdoElHodaky/exchange-core/internal/catalog"
)

// registerValidators extends gin's default binding engine with the
// exchange's own tag, grounded on the teacher's
// internal/validation.Validator pattern of registering domain-specific
// tags rather than hand-rolling checks in every handler.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("ticker", validateTicker)
}

func validateTicker(fl validator.FieldLevel) bool {
	return catalog.ValidTicker(strings.ToUpper(fl.Field().String()))
}
