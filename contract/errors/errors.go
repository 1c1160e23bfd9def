package errors

// Error codes for the mediator and registry contracts. Keep stable; used across adapters, registry and mediator.
const (
	ErrCodeHandlerNotFound     = "mediator.handler_not_found"
	ErrCodeHandlerTypeMismatch = "mediator.handler_type_mismatch"
	ErrCodeNilMessage          = "mediator.nil_message"
	ErrCodeInvalidSelector     = "mediator.invalid_selector"
	ErrCodeForwardFailed       = "mediator.forward_failed"
	ErrCodeSerializationFailed = "mediator.serialization_failed"
	ErrCodeInvalidBinding      = "registry.invalid_binding"
	ErrCodeServiceNotBound     = "registry.service_not_bound"
	ErrCodeRegistrySealed      = "registry.sealed"
	ErrCodeScopeClosed         = "registry.scope_closed"
	ErrCodeCircularDependency  = "registry.circular_dependency"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrHandlerNotFound     = Code(ErrCodeHandlerNotFound)
	ErrHandlerTypeMismatch = Code(ErrCodeHandlerTypeMismatch)
	ErrNilMessage          = Code(ErrCodeNilMessage)
	ErrInvalidSelector     = Code(ErrCodeInvalidSelector)
	ErrForwardFailed       = Code(ErrCodeForwardFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrInvalidBinding      = Code(ErrCodeInvalidBinding)
	ErrServiceNotBound     = Code(ErrCodeServiceNotBound)
	ErrRegistrySealed      = Code(ErrCodeRegistrySealed)
	ErrScopeClosed         = Code(ErrCodeScopeClosed)
	ErrCircularDependency  = Code(ErrCodeCircularDependency)
)
