package errors

import (
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/grpc/codes"
)

// ============================================================================
// Service Registration for External Modules
// ============================================================================

// serviceRegistry tracks registered service codes to prevent conflicts.
var (
	serviceRegistry = make(map[int]string) // service code -> service name
	serviceMu       sync.RWMutex
)

// RegisterService registers a service code with a name.
// This should be called once during service initialization.
// Panics if the service code is already registered by another service.
//
// Example:
//
//	func init() {
//	    errors.RegisterService(21, "indexer-service")
//	}
func RegisterService(code int, name string) {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	if existing, ok := serviceRegistry[code]; ok {
		if existing != name {
			panic(fmt.Sprintf("service code %d already registered by '%s', cannot register for '%s'", code, existing, name))
		}
		return // Already registered with same name, ignore
	}
	serviceRegistry[code] = name
}

// GetServiceName returns the registered name for a service code.
func GetServiceName(code int) (string, bool) {
	serviceMu.RLock()
	defer serviceMu.RUnlock()
	name, ok := serviceRegistry[code]
	return name, ok
}

// GetAllServices returns all registered services.
func GetAllServices() map[int]string {
	serviceMu.RLock()
	defer serviceMu.RUnlock()

	result := make(map[int]string, len(serviceRegistry))
	for k, v := range serviceRegistry {
		result[k] = v
	}
	return result
}

// ============================================================================
// Core Error Creation Functions
// ============================================================================

// validateCodeParams validates service, category, and sequence parameters.
func validateCodeParams(service, category, sequence int) {
	if service < 0 || service > 99 {
		panic(fmt.Sprintf("errors: service code must be 0-99, got %d", service))
	}
	if category < 0 || category > 99 {
		panic(fmt.Sprintf("errors: category code must be 0-99, got %d", category))
	}
	if sequence < 0 || sequence > 999 {
		panic(fmt.Sprintf("errors: sequence must be 0-999, got %d", sequence))
	}
}

// registerErrno registers an Errno in the global registry.
// Returns error if code is already registered.
func registerErrno(e *Errno) (*Errno, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := errnoRegistry[e.Code]; ok {
		return nil, fmt.Errorf("errno code %d already registered: %s", e.Code, existing.MessageEN)
	}
	errnoRegistry[e.Code] = e
	return e, nil
}

// mustRegisterErrno registers an Errno and panics on failure.
func mustRegisterErrno(e *Errno) *Errno {
	registered, err := registerErrno(e)
	if err != nil {
		panic(err)
	}
	return registered
}

// NewError creates and registers a new Errno with the given parameters.
// This is the most flexible function for custom error definitions.
// Panics if registration fails or if messageEN is empty.
//
// Example:
//
//	var ErrCustom = errors.NewError(21, errors.CategoryRequest, 1,
//	    http.StatusBadRequest, codes.InvalidArgument,
//	    "Custom error", "שגיאה מותאמת")
func NewError(service, category, sequence int, httpStatus int, grpcCode codes.Code, messageEN, messageHE string) *Errno {
	validateCodeParams(service, category, sequence)
	if messageEN == "" {
		panic("errors: english message is required")
	}

	e := &Errno{
		Code:      MakeCode(service, category, sequence),
		HTTP:      httpStatus,
		GRPCCode:  grpcCode,
		MessageEN: messageEN,
		MessageHE: messageHE,
	}

	return mustRegisterErrno(e)
}

// ============================================================================
// Category-Specific Error Creation Functions (Recommended API)
// ============================================================================

// NewRequestErr creates and registers a request/validation error (HTTP 400).
// This is the recommended way to create request errors.
//
// Example:
//
//	var ErrInvalidInput = errors.NewRequestErr(ServiceQuery, 1,
//	    "Invalid input", "קלט לא תקין")
func NewRequestErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryRequest, sequence, http.StatusBadRequest, codes.InvalidArgument, en, he)
}

// NewAuthErr creates and registers an authentication error (HTTP 401).
//
// Example:
//
//	var ErrLoginFailed = errors.NewAuthErr(ServiceQuery, 1,
//	    "Login failed", "ההתחברות נכשלה")
func NewAuthErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryAuth, sequence, http.StatusUnauthorized, codes.Unauthenticated, en, he)
}

// NewPermissionErr creates and registers a permission/authorization error (HTTP 403).
//
// Example:
//
//	var ErrNoAccess = errors.NewPermissionErr(ServiceQuery, 1,
//	    "No permission", "אין הרשאה")
func NewPermissionErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryPermission, sequence, http.StatusForbidden, codes.PermissionDenied, en, he)
}

// NewNotFoundErr creates and registers a not found error (HTTP 404).
//
// Example:
//
//	var ErrOrderNotFound = errors.NewNotFoundErr(ServiceQuery, 1,
//	    "Record not found", "הרשומה לא נמצאה")
func NewNotFoundErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryResource, sequence, http.StatusNotFound, codes.NotFound, en, he)
}

// NewConflictErr creates and registers a conflict error (HTTP 409).
//
// Example:
//
//	var ErrAlreadyExists = errors.NewConflictErr(ServiceQuery, 1,
//	    "Record already exists", "הרשומה כבר קיימת")
func NewConflictErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryConflict, sequence, http.StatusConflict, codes.AlreadyExists, en, he)
}

// NewRateLimitErr creates and registers a rate limit error (HTTP 429).
//
// Example:
//
//	var ErrTooManyRequests = errors.NewRateLimitErr(ServiceQuery, 1,
//	    "Too many requests", "יותר מדי בקשות")
func NewRateLimitErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryRateLimit, sequence, http.StatusTooManyRequests, codes.ResourceExhausted, en, he)
}

// NewInternalErr creates and registers an internal error (HTTP 500).
//
// Example:
//
//	var ErrProcessFailed = errors.NewInternalErr(ServiceQuery, 1,
//	    "Process failed", "העיבוד נכשל")
func NewInternalErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryInternal, sequence, http.StatusInternalServerError, codes.Internal, en, he)
}

// NewDatabaseErr creates and registers a database error (HTTP 500).
//
// Example:
//
//	var ErrDBQuery = errors.NewDatabaseErr(ServiceQuery, 1,
//	    "Database query failed", "שאילתת מסד הנתונים נכשלה")
func NewDatabaseErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryDatabase, sequence, http.StatusInternalServerError, codes.Internal, en, he)
}

// NewCacheErr creates and registers a cache error (HTTP 500).
//
// Example:
//
//	var ErrCacheFailed = errors.NewCacheErr(ServiceQuery, 1,
//	    "Cache operation failed", "פעולת המטמון נכשלה")
func NewCacheErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryCache, sequence, http.StatusInternalServerError, codes.Internal, en, he)
}

// NewNetworkErr creates and registers a network error (HTTP 503).
//
// Example:
//
//	var ErrConnectionFailed = errors.NewNetworkErr(ServiceQuery, 1,
//	    "Connection failed", "החיבור נכשל")
func NewNetworkErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryNetwork, sequence, http.StatusServiceUnavailable, codes.Unavailable, en, he)
}

// NewTimeoutErr creates and registers a timeout error (HTTP 504).
//
// Example:
//
//	var ErrOperationTimeout = errors.NewTimeoutErr(ServiceQuery, 1,
//	    "Operation timeout", "תם הזמן הקצוב לפעולה")
func NewTimeoutErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryTimeout, sequence, http.StatusGatewayTimeout, codes.DeadlineExceeded, en, he)
}

// NewConfigErr creates and registers a configuration error (HTTP 500).
//
// Example:
//
//	var ErrInvalidConfig = errors.NewConfigErr(ServiceQuery, 1,
//	    "Invalid configuration", "תצורה לא תקינה")
func NewConfigErr(service, sequence int, en, he string) *Errno {
	return NewError(service, CategoryConfig, sequence, http.StatusInternalServerError, codes.Internal, en, he)
}
