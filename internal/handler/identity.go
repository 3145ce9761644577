package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/middleware"
)

// IdentityHandler handles HTTP requests for the authenticated identity.
type IdentityHandler struct{}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

// IdentityResponse is the HTTP response for identity data.
type IdentityResponse struct {
	ID        string   `json:"id"`
	SubjectID string   `json:"subject_id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}

// Me handles GET /v1/me
func (h *IdentityHandler) Me(c *gin.Context) {
	identity := middleware.Session(c).Identity

	respondJSON(c, http.StatusOK, IdentityResponse{
		ID:        identity.ID,
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		Roles:     identity.Roles,
		CreatedAt: identity.CreatedAt.Format(time.RFC3339),
	})
}
