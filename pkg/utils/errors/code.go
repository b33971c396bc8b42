// Error codes are seven decimal digits, AABBCCC: AA is the service,
// BB the category, CCC the sequence within the category. Service 00 is
// shared base errors; business services start at 20.
package errors

// Service codes (AA).
const (
	ServiceCommon = 0
)

// Category codes (BB). Each category implies a default HTTP status,
// applied by the New*Err constructors in builder.go.
const (
	CategorySuccess    = 0
	CategoryRequest    = 1  // 400
	CategoryAuth       = 2  // 401
	CategoryPermission = 3  // 403
	CategoryResource   = 4  // 404
	CategoryConflict   = 5  // 409
	CategoryRateLimit  = 6  // 429
	CategoryInternal   = 7  // 500
	CategoryDatabase   = 8  // 500
	CategoryCache      = 9  // 500
	CategoryNetwork    = 10 // 503
	CategoryTimeout    = 11 // 504
	CategoryConfig     = 12 // 500
)

// MakeCode assembles AABBCCC from its parts.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}
