package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// BarberLookup resolves the barber profile of an authenticated user.
type BarberLookup interface {
	GetBarberByUser(ctx context.Context, userID uint) (*models.Barber, error)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return 0, false
	}
	return uint(id), true
}

// currentBarber writes the error response itself when it returns false.
func currentBarber(c *gin.Context, barbers BarberLookup) (*models.Barber, bool) {
	b, err := barbers.GetBarberByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			httperr.Forbidden(c, "barber_profile_missing", "No active barber profile for this user.")
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}
	return b, true
}
