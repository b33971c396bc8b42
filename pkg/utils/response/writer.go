package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/middleware"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/utils/errors"
)

// Writer renders unified responses on a gin context. It stamps the
// request ID and timestamp on every response.
type Writer struct {
	ctx *gin.Context
}

// NewWriter creates a Writer bound to ctx.
func NewWriter(ctx *gin.Context) *Writer {
	return &Writer{ctx: ctx}
}

// OK writes a success response with data.
func (w *Writer) OK(data interface{}) {
	w.write(Success(data))
}

// Fail writes an error response from an Errno.
func (w *Writer) Fail(e *errors.Errno) {
	w.write(Err(e))
}

// FailWithError converts any error to an Errno and writes it.
func (w *Writer) FailWithError(err error) {
	w.write(Err(errors.FromError(err)))
}

func (w *Writer) write(resp *Response) {
	resp.WithRequestID(middleware.GetRequestID(w.ctx))
	resp.WithTimestamp(time.Now().UnixMilli())
	w.ctx.JSON(resp.HTTPStatus(), resp)
}
