package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/types"
)

// RequestIDMiddleware attaches a request id to the request context and
// echoes it in the response headers. Inbound ids from trusted proxies are
// reused so log lines correlate across hops.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateRequestID()
	}

	ctx := types.WithRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Writer.Header().Set(types.HeaderRequestID, requestID)
	c.Next()
}
