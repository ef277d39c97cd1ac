package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/campushub/timetable-api/internal/models"
)

// NewValidator builds the shared validator with the domain tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(models.UserRole(fl.Field().String()))
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.ValidWeekday(models.Weekday(fl.Field().String()))
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return models.ValidClockTime(fl.Field().String())
	})
	return v
}
