package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/security"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// SecurityHandler exposes the deployment self-audit to administrators.
type SecurityHandler struct {
	audit *security.AuditService
}

func NewSecurityHandler(audit *security.AuditService) *SecurityHandler {
	return &SecurityHandler{audit: audit}
}

// GET /api/admin/security-audit
func (h *SecurityHandler) Run(c *gin.Context) {
	result := h.audit.Run(requestContext(c))
	response.Success(c, http.StatusOK, result)
}
