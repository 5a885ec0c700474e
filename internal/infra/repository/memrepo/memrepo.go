// Package memrepo is an in-memory booking repository. Transactions are
// serialised by one mutex and run against a copy of the state that is
// swapped in only when the callback succeeds.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type state struct {
	users        map[uint]models.User
	barbers      map[uint]models.Barber
	services     map[uint]models.Service
	bookings     map[uint]models.Booking
	payments     map[uint]models.Payment
	availability map[uint]models.BarberAvailability
	breaks       map[uint]models.BarberBreak

	nextID uint
}

func newState() *state {
	return &state{
		users:        map[uint]models.User{},
		barbers:      map[uint]models.Barber{},
		services:     map[uint]models.Service{},
		bookings:     map[uint]models.Booking{},
		payments:     map[uint]models.Payment{},
		availability: map[uint]models.BarberAvailability{},
		breaks:       map[uint]models.BarberBreak{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[uint]models.User, len(s.users)),
		barbers:      make(map[uint]models.Barber, len(s.barbers)),
		services:     make(map[uint]models.Service, len(s.services)),
		bookings:     make(map[uint]models.Booking, len(s.bookings)),
		payments:     make(map[uint]models.Payment, len(s.payments)),
		availability: make(map[uint]models.BarberAvailability, len(s.availability)),
		breaks:       make(map[uint]models.BarberBreak, len(s.breaks)),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.barbers {
		c.barbers[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.availability {
		c.availability[k] = v
	}
	for k, v := range s.breaks {
		c.breaks[k] = v
	}
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

type Repository struct {
	mu    *sync.Mutex
	state **state

	// tx is set on the repository handed to a Transaction callback.
	tx *state
}

func New() *Repository {
	st := newState()
	return &Repository{mu: &sync.Mutex{}, state: &st}
}

var (
	_ domain.Repository    = (*Repository)(nil)
	_ domain.CalendarStore = (*Repository)(nil)
)

// with runs fn under the store lock, or directly against the transaction
// state when called from inside Transaction.
func (r *Repository) with(fn func(s *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(*r.state)
}

func (r *Repository) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := (*r.state).clone()
	if err := fn(&Repository{mu: r.mu, state: r.state, tx: work}); err != nil {
		return err
	}
	*r.state = work
	return nil
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (r *Repository) AddUser(u models.User) models.User {
	_ = r.with(func(s *state) error {
		if u.ID == 0 {
			u.ID = s.id()
		} else if u.ID > s.nextID {
			s.nextID = u.ID
		}
		s.users[u.ID] = u
		return nil
	})
	return u
}

func (r *Repository) AddBarber(b models.Barber) models.Barber {
	_ = r.with(func(s *state) error {
		if b.ID == 0 {
			b.ID = s.id()
		} else if b.ID > s.nextID {
			s.nextID = b.ID
		}
		s.barbers[b.ID] = b
		return nil
	})
	return b
}

func (r *Repository) AddService(svc models.Service) models.Service {
	_ = r.with(func(s *state) error {
		if svc.ID == 0 {
			svc.ID = s.id()
		} else if svc.ID > s.nextID {
			s.nextID = svc.ID
		}
		s.services[svc.ID] = svc
		return nil
	})
	return svc
}

func (r *Repository) AddAvailability(a models.BarberAvailability) models.BarberAvailability {
	_ = r.with(func(s *state) error {
		a.ID = s.id()
		s.availability[a.ID] = a
		return nil
	})
	return a
}

// --------------------------------------------------
// Directories
// --------------------------------------------------

func (r *Repository) GetCustomer(_ context.Context, id uint) (*models.User, error) {
	var out models.User
	err := r.with(func(s *state) error {
		u, ok := s.users[id]
		if !ok || u.Role != models.RoleCustomer {
			return domain.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetBarber(_ context.Context, id uint) (*models.Barber, error) {
	var out models.Barber
	err := r.with(func(s *state) error {
		b, ok := s.barbers[id]
		if !ok || !b.Active {
			return domain.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetBarberByUser(_ context.Context, userID uint) (*models.Barber, error) {
	var out models.Barber
	err := r.with(func(s *state) error {
		for _, b := range s.barbers {
			if b.UserID == userID {
				out = b
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetService(_ context.Context, id uint) (*models.Service, error) {
	var out models.Service
	err := r.with(func(s *state) error {
		svc, ok := s.services[id]
		if !ok || !svc.Active {
			return domain.ErrNotFound
		}
		out = svc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --------------------------------------------------
// Conflict
// --------------------------------------------------

// LockBarberDay is a no-op: every transaction already holds the store lock.
func (r *Repository) LockBarberDay(context.Context, uint, time.Time) error {
	return nil
}

func (r *Repository) HasOverlap(
	_ context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	excludeBookingID uint,
) (bool, error) {
	var found bool
	err := r.with(func(s *state) error {
		others := make([]models.Booking, 0)
		for _, b := range s.bookings {
			if b.BarberID == barberID {
				others = append(others, b)
			}
		}
		_, found = domain.FindOverlap(others, start, end, excludeBookingID)
		return nil
	})
	return found, err
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *Repository) CreateBooking(_ context.Context, b *models.Booking) error {
	return r.with(func(s *state) error {
		others := make([]models.Booking, 0)
		for _, o := range s.bookings {
			if o.BarberID == b.BarberID {
				others = append(others, o)
			}
		}
		// mirrors the database exclusion constraint
		if domain.BlocksSlot(domain.Status(b.Status)) {
			if _, clash := domain.FindOverlap(others, b.StartTime, b.EndTime, 0); clash {
				return domain.ErrSlotTaken
			}
		}

		b.ID = s.id()
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now
		s.bookings[b.ID] = *b
		return nil
	})
}

func (r *Repository) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	var out models.Booking
	err := r.with(func(s *state) error {
		b, ok := s.bookings[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	return r.GetBooking(ctx, id)
}

func (r *Repository) UpdateBooking(_ context.Context, b *models.Booking) error {
	return r.with(func(s *state) error {
		if _, ok := s.bookings[b.ID]; !ok {
			return domain.ErrNotFound
		}
		if domain.BlocksSlot(domain.Status(b.Status)) {
			for _, o := range s.bookings {
				if o.ID == b.ID || o.BarberID != b.BarberID {
					continue
				}
				if domain.BlocksSlot(domain.Status(o.Status)) &&
					domain.Overlaps(b.StartTime, b.EndTime, o.StartTime, o.EndTime) {
					return domain.ErrSlotTaken
				}
			}
		}
		b.UpdatedAt = time.Now()
		s.bookings[b.ID] = *b
		return nil
	})
}

func (r *Repository) ListBookingsForPeriod(
	_ context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {
	out := make([]models.Booking, 0)
	err := r.with(func(s *state) error {
		for _, b := range s.bookings {
			if b.BarberID == barberID && b.StartTime.Before(end) && start.Before(b.EndTime) {
				out = append(out, r.withRelations(s, b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, err
}

func (r *Repository) withRelations(s *state, b models.Booking) models.Booking {
	b.Customer = s.users[b.CustomerID]
	b.Barber = s.barbers[b.BarberID]
	b.Service = s.services[b.ServiceID]
	return b
}

func (r *Repository) ListExpiredHolds(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	out := make([]models.Booking, 0)
	err := r.with(func(s *state) error {
		for _, b := range s.bookings {
			if b.Status == string(domain.StatusPending) && b.ExpiresAt != nil && b.ExpiresAt.Before(now) {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *Repository) CreatePayment(_ context.Context, p *models.Payment) error {
	return r.with(func(s *state) error {
		for _, existing := range s.payments {
			if existing.GatewayReference == p.GatewayReference {
				return domain.ErrConcurrentUpdate
			}
		}
		p.ID = s.id()
		now := time.Now()
		p.CreatedAt, p.UpdatedAt = now, now
		s.payments[p.ID] = *p
		return nil
	})
}

func (r *Repository) GetPaymentByReferenceForUpdate(_ context.Context, reference string) (*models.Payment, error) {
	var out models.Payment
	err := r.with(func(s *state) error {
		for _, p := range s.payments {
			if p.GatewayReference == reference {
				out = p
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) UpdatePayment(_ context.Context, p *models.Payment) error {
	return r.with(func(s *state) error {
		if _, ok := s.payments[p.ID]; !ok {
			return domain.ErrNotFound
		}
		p.UpdatedAt = time.Now()
		s.payments[p.ID] = *p
		return nil
	})
}

// PaymentsForBooking is used by tests and the demo driver.
func (r *Repository) PaymentsForBooking(bookingID uint) []models.Payment {
	out := make([]models.Payment, 0)
	_ = r.with(func(s *state) error {
		for _, p := range s.payments {
			if p.BookingID == bookingID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (r *Repository) ListAvailability(_ context.Context, barberID uint, weekday int) ([]models.BarberAvailability, error) {
	out := make([]models.BarberAvailability, 0)
	err := r.with(func(s *state) error {
		for _, a := range s.availability {
			if a.BarberID == barberID && a.DayOfWeek == weekday {
				out = append(out, a)
			}
		}
		return nil
	})
	sortAvailability(out)
	return out, err
}

func (r *Repository) ListAllAvailability(_ context.Context, barberID uint) ([]models.BarberAvailability, error) {
	out := make([]models.BarberAvailability, 0)
	err := r.with(func(s *state) error {
		for _, a := range s.availability {
			if a.BarberID == barberID {
				out = append(out, a)
			}
		}
		return nil
	})
	sortAvailability(out)
	return out, err
}

func sortAvailability(rows []models.BarberAvailability) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DayOfWeek != rows[j].DayOfWeek {
			return rows[i].DayOfWeek < rows[j].DayOfWeek
		}
		return rows[i].StartTime < rows[j].StartTime
	})
}

func (r *Repository) ReplaceAvailability(_ context.Context, barberID uint, rows []models.BarberAvailability) error {
	return r.with(func(s *state) error {
		for id, a := range s.availability {
			if a.BarberID == barberID {
				delete(s.availability, id)
			}
		}
		for i := range rows {
			rows[i].BarberID = barberID
			rows[i].ID = s.id()
			s.availability[rows[i].ID] = rows[i]
		}
		return nil
	})
}

func (r *Repository) ListBreaks(_ context.Context, barberID uint) ([]models.BarberBreak, error) {
	out := make([]models.BarberBreak, 0)
	err := r.with(func(s *state) error {
		for _, br := range s.breaks {
			if br.BarberID == barberID {
				out = append(out, br)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *Repository) CreateBreak(_ context.Context, br *models.BarberBreak) error {
	return r.with(func(s *state) error {
		br.ID = s.id()
		s.breaks[br.ID] = *br
		return nil
	})
}

func (r *Repository) DeleteBreak(_ context.Context, barberID uint, breakID uint) error {
	return r.with(func(s *state) error {
		br, ok := s.breaks[breakID]
		if !ok || br.BarberID != barberID {
			return domain.ErrNotFound
		}
		delete(s.breaks, breakID)
		return nil
	})
}
