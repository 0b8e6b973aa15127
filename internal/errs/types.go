package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// ConfigError is fatal: the widget cannot start with the given configuration.
type ConfigError struct {
	ErrorMessage
	Field string
}

// MissingCredentialError is returned when a market call is made without an API key.
type MissingCredentialError struct {
	ErrorMessage
}

// TransportError covers network failures, non-2xx statuses and unreadable bodies.
type TransportError struct {
	ErrorMessage
	StatusCode int
	Err        error
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidPayloadError is returned when a structurally valid response lacks an expected field.
type InvalidPayloadError struct {
	ErrorMessage
	Field  string
	Detail string
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		ErrorMessage: ErrorMessage{Message: message},
		Field:        field,
	}
}

func NewMissingCredentialError() *MissingCredentialError {
	return &MissingCredentialError{
		ErrorMessage: ErrorMessage{Message: "API key is required"},
	}
}

func NewTransportError(statusCode int, err error) *TransportError {
	return &TransportError{
		ErrorMessage: ErrorMessage{Message: "Market API request failed"},
		StatusCode:   statusCode,
		Err:          err,
	}
}

func NewInvalidPayloadError(message, field, detail string) *InvalidPayloadError {
	return &InvalidPayloadError{
		ErrorMessage: ErrorMessage{Message: message},
		Field:        field,
		Detail:       detail,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

// Describe returns the message with the wrapped cause, for logs.
func Describe(err error) string {
	switch e := err.(type) {
	case *TransportError:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s: status %d", e.Message, e.StatusCode)
		}
	case *InvalidPayloadError:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Message, e.Detail)
		}
	case *DatabaseError:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
