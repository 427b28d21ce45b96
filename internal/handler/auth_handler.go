package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/middleware"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

type currentUserResolver interface {
	CurrentUser(claims *models.JWTClaims) (*models.CurrentUser, error)
}

// AuthHandler exposes the identity established by the external provider.
type AuthHandler struct {
	service currentUserResolver
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc currentUserResolver) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Me godoc
// @Summary Current user
// @Description Identity carried by the bearer token
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.CurrentUser(middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}
