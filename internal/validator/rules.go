package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
)

var (
	courseCodePattern = regexp.MustCompile(`^[A-Za-z]{2,6}[0-9]{2,4}[A-Za-z]?$`)
	clockPattern      = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		t := models.ResourceType(fl.Field().String())
		for _, known := range models.ResourceTypes {
			if t == known {
				return true
			}
		}
		return false
	})

	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		switch models.AttendanceStatus(fl.Field().String()) {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().String()
		for _, d := range models.Weekdays {
			if d == day {
				return true
			}
		}
		return false
	})

	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return courseCodePattern.MatchString(fl.Field().String())
	})
}
