package middleware

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/memolite-backend/internal/app/model"
)

var registerOnce sync.Once

// RegisterValidators adds memo_visibility and memo_state to gin's binding validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			RegisterCustomValidators(v)
		}
	})
}

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("memo_visibility", validateVisibilityRule)
	v.RegisterValidation("memo_state", validateStateRule)
}

// PUBLIC, PRIVATE or ALL, case-insensitive
func validateVisibilityRule(fl validator.FieldLevel) bool {
	_, ok := model.ParseVisibilityFilter(fl.Field().String())
	return ok
}

func validateStateRule(fl validator.FieldLevel) bool {
	_, ok := model.ParseStateFilter(strings.TrimSpace(fl.Field().String()))
	return ok
}
