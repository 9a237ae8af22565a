// Package store keeps one session's view of the floor plan: every table with
// the bookings of the selected date, and the mutations that change them.
//
// Reconciliation is the only way booking lists change. It is triggered by a
// date change, a change in the number of tables, a local mutation or an
// external change notification, and may run concurrently with itself:
// concurrent calls for the same date and generation share one backend fetch,
// and a result older than the last applied one is discarded.
package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/observability"
	"github.com/yeremiapane/venue-booking/utils"
	"golang.org/x/sync/singleflight"
)

var validate = validator.New()

// TableView is a read-only copy of a table, its bookings for the loaded date
// and the status derived from them.
type TableView struct {
	models.Table
	Bookings []models.Booking `json:"bookings"`
	Status   Status           `json:"status"`
}

// CanonicalBooking is the booking the floor plan displays for the table: the
// first one loaded for the date.
func (v TableView) CanonicalBooking() (models.Booking, bool) {
	if len(v.Bookings) == 0 {
		return models.Booking{}, false
	}
	return v.Bookings[0], true
}

type tableState struct {
	table    models.Table
	bookings []models.Booking
}

type Store struct {
	backend  Backend
	identity *Identity
	metrics  *observability.Metrics

	mu      sync.RWMutex
	tables  []tableState
	loaded  bool
	date    string
	applied uint64

	flight     singleflight.Group
	generation atomic.Uint64
}

type Option func(*Store)

// WithIdentity binds the store to a signed-in user.
func WithIdentity(id Identity) Option {
	return func(s *Store) {
		s.identity = &id
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithDate sets the initially selected calendar day (YYYY-MM-DD).
func WithDate(date string) Option {
	return func(s *Store) {
		s.date = date
	}
}

// New returns an empty store selecting today. Call LoadTables before reading.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		date:    models.Today(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the user the store acts for, or nil.
func (s *Store) Identity() *Identity {
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Store) SelectedDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

func (s *Store) logger() *logrus.Entry {
	entry := utils.ErrorLogger.WithField("component", "store")
	if s.identity != nil {
		entry = entry.WithField("user_id", s.identity.UserID)
	}
	return entry
}

// LoadTables fetches every table and resets their booking lists. On failure
// the previous snapshot is kept.
func (s *Store) LoadTables(ctx context.Context) error {
	tables, err := s.backend.ListTables(ctx)
	if err != nil {
		s.logger().WithError(err).Error("Error fetching tables")
		return fmt.Errorf("load tables: %w", err)
	}

	states := make([]tableState, len(tables))
	for i, t := range tables {
		states[i] = tableState{table: t}
	}

	s.mu.Lock()
	s.tables = states
	s.loaded = true
	s.mu.Unlock()

	// bookings must be fetched again against the new table list
	s.generation.Add(1)
	return nil
}

func (s *Store) ensureTables(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.LoadTables(ctx)
}

// LoadBookings selects date and reconciles every table's bookings for it.
func (s *Store) LoadBookings(ctx context.Context, date string) error {
	if _, err := models.ParseDate(date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}

	s.mu.Lock()
	s.date = date
	s.mu.Unlock()

	return s.Reconcile(ctx)
}

// Reconcile refreshes the booking lists for the selected date.
func (s *Store) Reconcile(ctx context.Context) error {
	if err := s.ensureTables(ctx); err != nil {
		return err
	}
	return s.reconcile(ctx, s.SelectedDate())
}

// Invalidate records that the backend changed outside this store and
// reconciles, so the refresh never joins a fetch that started before the change.
func (s *Store) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	return s.Reconcile(ctx)
}

// Refresh reloads the table list and then the selected date's bookings. Use it
// when tables were added, edited or removed outside this store.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.LoadTables(ctx); err != nil {
		return err
	}
	return s.Reconcile(ctx)
}

func (s *Store) reconcile(ctx context.Context, date string) error {
	start := time.Now()
	gen := s.generation.Load()
	key := fmt.Sprintf("%s#%d", date, gen)

	// the fetch is shared, so one caller giving up must not fail the rest
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.backend.ListBookings(fetchCtx, date)
	})
	if err != nil {
		s.metrics.ObserveReconcile(observability.ResultError, time.Since(start))
		s.logger().WithError(err).WithField("date", date).Error("Error fetching bookings")
		return fmt.Errorf("load bookings for %s: %w", date, err)
	}

	if !s.apply(date, gen, v.([]models.Booking)) {
		s.metrics.ObserveReconcile(observability.ResultStale, time.Since(start))
		return nil
	}
	s.metrics.ObserveReconcile(observability.ResultSuccess, time.Since(start))
	return nil
}

// apply replaces every table's booking list with the fetched bookings. It
// refuses results for a date that is no longer selected or from a generation
// older than the one already applied.
func (s *Store) apply(date string, gen uint64, bookings []models.Booking) bool {
	byTable := make(map[uint][]models.Booking)
	for _, b := range bookings {
		if b.BookingDate != date {
			continue
		}
		byTable[b.TableID] = append(byTable[b.TableID], b.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if date != s.date || gen < s.applied {
		return false
	}
	s.applied = gen
	for i := range s.tables {
		s.tables[i].bookings = byTable[s.tables[i].table.ID]
	}
	return true
}

// Tables returns a deep copy of the snapshot with derived statuses.
func (s *Store) Tables() []TableView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]TableView, len(s.tables))
	for i, st := range s.tables {
		views[i] = st.view()
	}
	return views
}

// Table returns one table of the snapshot.
func (s *Store) Table(id uint) (TableView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.tables {
		if st.table.ID == id {
			return st.view(), true
		}
	}
	return TableView{}, false
}

func (st tableState) view() TableView {
	bookings := make([]models.Booking, len(st.bookings))
	for i, b := range st.bookings {
		bookings[i] = b.Clone()
	}
	return TableView{
		Table:    st.table,
		Bookings: bookings,
		Status:   DeriveStatus(bookings),
	}
}

// CurrentUserBooking returns the table the signed-in user holds on the
// selected date.
func (s *Store) CurrentUserBooking() (uint, bool) {
	if s.identity == nil {
		return 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.tables {
		for _, b := range st.bookings {
			if b.UserID == s.identity.UserID && b.BookingDate == s.date {
				return st.table.ID, true
			}
		}
	}
	return 0, false
}

func (s *Store) requireIdentity() error {
	if s.identity == nil {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Store) requireAdmin() error {
	if s.identity == nil {
		return ErrNotAuthenticated
	}
	if !s.identity.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// afterMutation reconciles once a write succeeded. A failed refresh does not
// turn the mutation into a failure.
func (s *Store) afterMutation(ctx context.Context, operation string) {
	s.metrics.ObserveMutation(operation, nil)
	if err := s.Invalidate(ctx); err != nil {
		s.logger().WithError(err).WithField("operation", operation).Warn("Reconcile after mutation failed")
	}
}

// refetch discards local state by reloading tables and bookings from the backend.
func (s *Store) refetch(ctx context.Context) {
	if err := s.LoadTables(ctx); err != nil {
		return
	}
	_ = s.Reconcile(ctx)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
