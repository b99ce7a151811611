package serverutils

import "github.com/gofiber/fiber/v2"

// AppError is the operator-visible failure shape: a human-readable message plus
// a machine-readable code. Raw errors never cross the API boundary.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: fiber.StatusNotFound}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: message, Status: fiber.StatusBadRequest}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: fiber.StatusConflict}
}

func NewSafetyViolationError(message string) *AppError {
	// 422 rather than 500: the request was understood but refused by the safety gate.
	return &AppError{Code: "SAFETY_VIOLATION", Message: message, Status: fiber.StatusUnprocessableEntity}
}

func NewInternalError(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: fiber.StatusInternalServerError}
}
