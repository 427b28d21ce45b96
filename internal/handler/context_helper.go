package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/middleware"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

// requireUser returns the authenticated subject or writes a 401 and reports false.
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.Claims(c).UserID()
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}
