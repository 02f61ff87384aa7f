package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("session_rating", validateSessionRating)
	validate.RegisterValidation("reminder_time", validateReminderTime)
}

func GetValidator() *validator.Validate {
	return validate
}

// -1 means "not yet rated", 0 is reserved, 1-5 is a user rating.
func validateSessionRating(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating == -1 || (rating >= 1 && rating <= 5)
}

var reminderTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func validateReminderTime(fl validator.FieldLevel) bool {
	return reminderTimeRegex.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param() + " characters"
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param() + " characters"
			case "gt":
				message = fieldError.Field() + " must be greater than " + fieldError.Param()
			case "session_rating":
				message = fieldError.Field() + " must be -1 (unrated) or between 1 and 5"
			case "reminder_time":
				message = fieldError.Field() + " must be a HH:MM time of day"
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

type Validator interface {
	Validate() error
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
