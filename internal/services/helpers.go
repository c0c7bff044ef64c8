package services

import (
	"context"
	"strings"

	"github.com/pawhaven/pawhaven/internal/models"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// clampPage normalises pagination input to sane bounds.
func clampPage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func containsRole(roles []models.ShelterRole, target models.ShelterRole) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
