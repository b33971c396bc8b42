package errors

import "google.golang.org/grpc/codes"

// Query service code: 20 (business service range 20-79).
const (
	// ServiceQuery is for the query understanding and retrieval service.
	ServiceQuery = 20
)

var (
	// Request errors (category 01).
	ErrQueryInvalidRequest = Register(New(MakeCode(ServiceQuery, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid query request", "בקשת שאילתה לא תקינה"))
	ErrQueryEmpty          = Register(New(MakeCode(ServiceQuery, CategoryRequest, 2), 400, codes.InvalidArgument, "Query text is empty", "טקסט השאילתה ריק"))
	ErrQueryTooLong        = Register(New(MakeCode(ServiceQuery, CategoryRequest, 3), 400, codes.InvalidArgument, "Query text is too long", "טקסט השאילתה ארוך מדי"))

	// Query execution errors.
	ErrQueryTimeout = Register(New(MakeCode(ServiceQuery, CategoryTimeout, 1), 408, codes.DeadlineExceeded, "Query timeout", "תם הזמן הקצוב לשאילתה"))
	ErrQueryFailed  = Register(New(MakeCode(ServiceQuery, CategoryInternal, 1), 500, codes.Internal, "Query failed", "השאילתה נכשלה"))
	ErrNoResults    = Register(New(MakeCode(ServiceQuery, CategoryResource, 1), 404, codes.NotFound, "No results found", "לא נמצאו תוצאות"))

	// Retrieval errors.
	ErrRetrievalUnavailable = Register(New(MakeCode(ServiceQuery, CategoryNetwork, 1), 503, codes.Unavailable, "Retrieval backend unavailable", "שירות האחזור אינו זמין"))
	ErrEmbeddingFailed      = Register(New(MakeCode(ServiceQuery, CategoryInternal, 2), 500, codes.Internal, "Query embedding failed", "יצירת הווקטור לשאילתה נכשלה"))

	// Answer synthesis errors.
	ErrSynthesisUnavailable = Register(New(MakeCode(ServiceQuery, CategoryNetwork, 2), 503, codes.Unavailable, "Answer synthesis unavailable", "יצירת התשובה אינה זמינה"))
	ErrSynthesisTimeout     = Register(New(MakeCode(ServiceQuery, CategoryTimeout, 2), 504, codes.DeadlineExceeded, "Answer synthesis timed out", "תם הזמן הקצוב ליצירת התשובה"))
	ErrSynthesisMalformed   = Register(New(MakeCode(ServiceQuery, CategoryInternal, 3), 500, codes.Internal, "Malformed synthesized answer", "התשובה שנוצרה אינה תקינה"))

	// Indexing errors.
	ErrIndexFailed = Register(New(MakeCode(ServiceQuery, CategoryInternal, 4), 500, codes.Internal, "Record indexing failed", "יצירת האינדקס נכשלה"))

	// Service errors.
	ErrQueryServiceUnavailable = Register(New(MakeCode(ServiceQuery, CategoryNetwork, 3), 503, codes.Unavailable, "Query service unavailable", "שירות השאילתות אינו זמין"))
	ErrStatsUnavailable        = Register(New(MakeCode(ServiceQuery, CategoryInternal, 5), 500, codes.Internal, "Statistics unavailable", "הנתונים הסטטיסטיים אינם זמינים"))
)
