package llm

// ServiceError reports a failed remote generation call or an unexpected
// payload shape. Its message is surfaced to the user verbatim.
type ServiceError struct {
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
