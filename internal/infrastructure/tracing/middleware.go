package tracing

import (
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/tabterm/internal/shared/id"
)

// maxInboundID bounds request ids accepted from clients.
const maxInboundID = 128

// HTTPMiddleware tags every request with a request id, echoes it in the
// response, and logs the request when it completes.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if inbound := c.GetHeader(RequestIDHeader); acceptable(inbound) {
			ctx = WithRequestID(ctx, id.RequestID(inbound))
		}

		span, ctx := tracer.StartSpan(ctx, c.FullPath())
		span.Method = c.Request.Method
		span.Path = c.Request.URL.Path
		span.ClientIP = c.ClientIP()

		c.Request = c.Request.WithContext(ctx)
		c.Set(RequestIDHeader, span.RequestID.String())
		c.Header(RequestIDHeader, span.RequestID.String())

		c.Next()

		span.Finish()
		span.StatusCode = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.Error = c.Errors.Last()
		}
		tracer.Submit(span)
	}
}

func acceptable(s string) bool {
	if s == "" || len(s) > maxInboundID {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
