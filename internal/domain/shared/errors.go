package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Billing domain errors
var (
	ErrNoApplicableConfig  = NewDomainError("NO_APPLICABLE_CONFIG", "No billing configuration is effective for the requested date")
	ErrMissingMeterReading = NewDomainError("MISSING_METER_READING", "No meter reading covers the statement period")
	ErrInvalidAmount       = NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrDuplicateDetected   = NewDomainError("DUPLICATE_DETECTED", "A matching record already exists; confirm to proceed")
	ErrDuplicateInvoice    = NewDomainError("DUPLICATE_INVOICE", "An invoice already exists for this account and statement date")
	ErrNonMonotonicReading = NewDomainError("NONMONOTONIC_READING", "Current reading is lower than the previous reading")
)
