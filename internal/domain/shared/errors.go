package shared

// DomainError is an error with a stable code that the HTTP layer can map
// to an API error code.
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

// ErrInvalidInput rejects malformed caller input before any state is read
var ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
