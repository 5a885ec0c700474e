package booking

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// CheckBlacklist gates new bookings only.
func CheckBlacklist(customer *models.User) error {
	if customer.Blacklisted {
		return httperr.ErrForbidden(
			"customer_blacklisted",
			"Customer is blacklisted: "+customer.BlacklistReason,
		)
	}
	return nil
}
