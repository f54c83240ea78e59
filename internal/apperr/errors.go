package apperr

// ValidationError marks a malformed or missing request parameter.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// NotFoundError marks a lookup by an unknown id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NoCandidatesError means the sampler found no unconsumed article to seed from.
type NoCandidatesError struct {
	Message string
}

func (e *NoCandidatesError) Error() string {
	return e.Message
}

func NewNoCandidates(msg string) *NoCandidatesError {
	return &NoCandidatesError{Message: msg}
}

// InsufficientDiversityError means the neighbor pool does not span enough
// distinct sources to produce a diverse sample.
type InsufficientDiversityError struct {
	Message string
}

func (e *InsufficientDiversityError) Error() string {
	return e.Message
}

func NewInsufficientDiversity(msg string) *InsufficientDiversityError {
	return &InsufficientDiversityError{Message: msg}
}

// ExternalServiceError wraps a failed call to a collaborator outside the
// process (embedding encoder, generative model).
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return e.Service + " call failed: " + e.Err.Error()
	}
	return e.Service + " call failed"
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func NewExternalService(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// StorageError wraps a persistence layer failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return "storage " + e.Op + " failed: " + e.Err.Error()
	}
	return "storage " + e.Op + " failed"
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// SchemaViolationError means the generative model returned a response that
// does not conform to the declared JSON shape.
type SchemaViolationError struct {
	Message string
	Err     error
}

func (e *SchemaViolationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}

func NewSchemaViolation(msg string, err error) *SchemaViolationError {
	return &SchemaViolationError{Message: msg, Err: err}
}
