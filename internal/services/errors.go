package services

import (
	"errors"
	"fmt"

	apperrors "github.com/sharda-hr/performance-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrInvalidState     = errors.New("operation not allowed in current state")

	// Template specific errors
	ErrTemplateNotFound = errors.New("template not found")
	ErrQuestionNotFound = errors.New("question not found in template")

	// KPI record specific errors
	ErrKPINotFound          = errors.New("KPI record not found")
	ErrKPIPeriodConflict    = errors.New("a KPI record already exists for this employee, template and period window")
	ErrKPINotEditable       = errors.New("KPI record responses can only be changed while in draft")
	ErrKPIAlreadySubmitted  = errors.New("KPI record has already been submitted")
	ErrKPIInvalidTransition = errors.New("invalid KPI status transition")
	ErrKPIReviewNotAllowed  = errors.New("KPI record is not awaiting review")

	// Goal specific errors
	ErrGoalNotFound = errors.New("goal not found")

	// Employee/permission errors
	ErrEmployeeNotFound = errors.New("employee not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	EmployeeID string `json:"employee_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: employee %s cannot %s %s %d - %s",
		pe.EmployeeID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(employeeID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		EmployeeID: employeeID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrKPINotFound) ||
		errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrKPIPeriodConflict)
}

// IsInvalidState checks if error represents a forbidden lifecycle operation
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrKPINotEditable) ||
		errors.Is(err, ErrKPIAlreadySubmitted) ||
		errors.Is(err, ErrKPIInvalidTransition) ||
		errors.Is(err, ErrKPIReviewNotAllowed)
}

// IsPermission checks if error represents a permission failure
func IsPermission(err error) bool {
	if errors.Is(err, ErrForbidden) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}
