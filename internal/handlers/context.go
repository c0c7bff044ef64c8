package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/auditctx"
	"github.com/pawhaven/pawhaven/internal/middleware"
)

// requestContext returns the request context enriched with actor metadata for
// audit logging, with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}

	req := c.Request
	if req == nil {
		return context.Background()
	}

	actor := auditctx.Actor{
		UserID:    c.GetString(middleware.CtxUserIDKey),
		IPAddress: c.ClientIP(),
		UserAgent: req.UserAgent(),
	}

	return auditctx.WithActor(req.Context(), actor)
}
