package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/sharda-hr/performance-service/internal/errors"
	"github.com/sharda-hr/performance-service/internal/models"
)

// Validator combines struct-tag validation with the structural question rules
// that tags cannot express.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Validate performs complete validation. For plain DTOs this is struct tags
// only; question payloads go through Question() additionally.
func (v *Validator) Validate(s interface{}) error {
	return v.ValidateStruct(s)
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("period_type", validatePeriodType)
	validate.RegisterValidation("answer_type", validateAnswerType)
	validate.RegisterValidation("kpi_status", validateKPIStatus)
	validate.RegisterValidation("hr_role", validateHRRole)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validatePeriodType(fl validator.FieldLevel) bool {
	validTypes := []models.PeriodType{
		models.PeriodDaily,
		models.PeriodWeekly,
		models.PeriodMonthly,
		models.PeriodQuarterly,
		models.PeriodHalfYearly,
		models.PeriodYearly,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateAnswerType(fl validator.FieldLevel) bool {
	validTypes := []models.AnswerType{
		models.AnswerScore,
		models.AnswerDropdown,
		models.AnswerText,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateKPIStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.KPIStatus{
		models.KPIStatusDraft,
		models.KPIStatusSubmitted,
		models.KPIStatusUnderReview,
		models.KPIStatusApproved,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateHRRole(fl validator.FieldLevel) bool {
	validRoles := []models.HRRole{
		models.RoleSuperAdmin,
		models.RoleHRAdmin,
		models.RoleHRExecutive,
		models.RoleITAdmin,
		models.RoleManager,
		models.RoleEmployee,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}
