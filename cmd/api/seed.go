package main

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/infra/repository/memrepo"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// seedDemo fills the in-memory store with one barber, a customer, an admin
// and two services so the API can be tried without a database.
func seedDemo(repo *memrepo.Repository) {
	repo.AddUser(models.User{Name: "Demo Customer", Email: "customer@example.com", Role: models.RoleCustomer})
	repo.AddUser(models.User{Name: "Demo Admin", Email: "admin@example.com", Role: models.RoleAdmin})

	barberUser := repo.AddUser(models.User{Name: "Demo Barber", Email: "barber@example.com", Role: models.RoleBarber})
	barber := repo.AddBarber(models.Barber{UserID: barberUser.ID, DisplayName: "Demo Barber", Active: true})

	repo.AddService(models.Service{
		Name:              "Haircut",
		Category:          "hair",
		DurationMinutes:   30,
		Price:             decimal.RequireFromString("25.00"),
		DepositPercentage: decimal.NewFromInt(20),
		Active:            true,
	})
	repo.AddService(models.Service{
		Name:            "Beard trim",
		Category:        "beard",
		DurationMinutes: 15,
		Price:           decimal.RequireFromString("10.00"),
		Active:          true,
	})

	for day := 1; day <= 6; day++ {
		repo.AddAvailability(models.BarberAvailability{
			BarberID:    barber.ID,
			DayOfWeek:   day,
			StartTime:   "09:00",
			EndTime:     "13:00",
			IsAvailable: true,
		})
		repo.AddAvailability(models.BarberAvailability{
			BarberID:    barber.ID,
			DayOfWeek:   day,
			StartTime:   "14:00",
			EndTime:     "19:00",
			IsAvailable: true,
		})
	}
}
