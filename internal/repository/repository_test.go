package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// failingStore fails every call on the listed collections.
type failingStore struct {
	docstore.Store
	collections map[string]bool
	err         error
}

func (f *failingStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if f.collections[q.Collection] {
		return nil, f.err
	}
	return f.Store.Query(ctx, q)
}

func (f *failingStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if f.collections[collection] {
		return nil, f.err
	}
	return f.Store.Get(ctx, collection, id)
}

// countingStore records queries per collection.
type countingStore struct {
	docstore.Store
	mu      sync.Mutex
	queries map[string]int
}

func (c *countingStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	c.mu.Lock()
	c.queries[q.Collection]++
	c.mu.Unlock()
	return c.Store.Query(ctx, q)
}

func newTestRepo(t *testing.T, store docstore.Store, types TypeCache) *Repository {
	t.Helper()
	return New(store, types, Options{Clock: func() time.Time { return fixedNow }}, logger.NewTestLogger(t))
}

func seedProfessionals(s *docstore.MemoryStore) {
	s.Seed(docstore.CollectionProfessionals, "p1", map[string]interface{}{"name": "Dr. Asha", "professional_type_id": "3", "rating": 4.9})
	s.Seed(docstore.CollectionProfessionals, "p2", map[string]interface{}{"full_name": "Dr. Bala", "professional_type_id": int64(3), "rating": 4.2})
	s.Seed(docstore.CollectionProfessionals, "p3", map[string]interface{}{"name": "Chitra", "professional_type_id": "1", "rating": 4.7})
	s.Seed(docstore.CollectionProfessionals, "p4", map[string]interface{}{"name": "Dev", "professional_type_id": "2"})
	s.Seed(docstore.CollectionProfessionalTypes, "t3", map[string]interface{}{"id": "3", "name": "mbbs", "label": "Doctor"})
	s.Seed(docstore.CollectionProfessionalTypes, "t7", map[string]interface{}{"id": "7", "name": "nutrition", "label": "Nutritionist"})
}

func professionalIDs(pros []models.Professional) []string {
	out := make([]string, len(pros))
	for i, p := range pros {
		out[i] = p.ID
	}
	return out
}

func TestSearchJobs_OnlyActive(t *testing.T) {
	store := docstore.NewMemoryStore()
	for i := 1; i <= 5; i++ {
		store.Seed(docstore.CollectionPlacements, fmt.Sprintf("j%d", i), map[string]interface{}{
			"title":     fmt.Sprintf("Job %d", i),
			"isActive":  i != 2 && i != 4,
			"createdAt": fixedNow.Add(time.Duration(i) * time.Hour),
		})
	}
	repo := newTestRepo(t, store, nil)

	jobs, err := repo.SearchJobs(context.Background(), JobQuery{})
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "j5", jobs[0].ID, "newest first")
	for _, j := range jobs {
		assert.True(t, j.IsActive)
	}
}

func TestSearchJobs_Filters(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.CollectionPlacements, "a", map[string]interface{}{
		"isActive": true, "location": "Mumbai", "salaryMax": 40000, "salaryMin": 20000,
		"workArrangement": []interface{}{"remote", "hybrid"}, "createdAt": fixedNow,
	})
	store.Seed(docstore.CollectionPlacements, "b", map[string]interface{}{
		"isActive": true, "location": "Mumbai", "salaryMax": 90000, "createdAt": fixedNow,
	})
	store.Seed(docstore.CollectionPlacements, "c", map[string]interface{}{
		"isActive": true, "location": "Pune", "salaryMax": 30000, "createdAt": fixedNow,
	})
	repo := newTestRepo(t, store, nil)

	maxSalary := 50000
	jobs, err := repo.SearchJobs(context.Background(), JobQueryFromFilters(models.Filters{Location: "Mumbai", MaxSalary: &maxSalary}, 5))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].ID)

	jobs, err = repo.SearchJobs(context.Background(), JobQuery{WorkArrangement: "hybrid"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].ID)

	jobs, err = repo.SearchJobs(context.Background(), JobQuery{SortBy: SortSalaryHigh})
	require.NoError(t, err)
	assert.Equal(t, "b", jobs[0].ID)
}

func TestGetProfessionalsByCategory_MatchesStringAndNumericIDs(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedProfessionals(store)
	repo := newTestRepo(t, store, nil)

	pros, err := repo.GetProfessionalsByCategory(context.Background(), "mbbs", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, professionalIDs(pros))
	for _, p := range pros {
		assert.Equal(t, "Doctor", p.TypeLabel)
	}
}

func TestGetProfessionalsByCategory_UnknownFailsOpen(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedProfessionals(store)
	repo := newTestRepo(t, store, nil)

	pros, err := repo.GetProfessionalsByCategory(context.Background(), "astrology", 0)
	require.NoError(t, err)
	assert.Len(t, pros, 4)

	pros, err = repo.GetProfessionalsByCategory(context.Background(), "astrology", 2)
	require.NoError(t, err)
	assert.Len(t, pros, 2)
}

func TestResolveCategory(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedProfessionals(store)
	repo := newTestRepo(t, store, nil)

	tests := []struct {
		category string
		want     CategoryResolution
	}{
		{"mental", CategoryResolution{Kind: ResolutionResolved, TypeID: "1", Source: SourceTable}},
		{"Pharmacy", CategoryResolution{Kind: ResolutionResolved, TypeID: "6", Source: SourceTable}},
		{"Nutritionist", CategoryResolution{Kind: ResolutionResolved, TypeID: "7", Source: SourceLookup}},
		{"other", CategoryResolution{Kind: ResolutionUnknown}},
		{"", CategoryResolution{Kind: ResolutionUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, err := repo.ResolveCategory(context.Background(), tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFailureWrappedOnce(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	store := &failingStore{
		Store:       docstore.NewMemoryStore(),
		collections: map[string]bool{docstore.CollectionPlacements: true},
		err:         cause,
	}
	repo := newTestRepo(t, store, nil)

	_, err := repo.SearchJobs(context.Background(), JobQuery{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreReadFailed))
	assert.ErrorIs(t, err, cause)
}

func TestUnsupportedFilterMapsToInvalidOperator(t *testing.T) {
	store := &failingStore{
		Store:       docstore.NewMemoryStore(),
		collections: map[string]bool{docstore.CollectionPlacements: true},
		err:         fmt.Errorf("%w: order field %q", docstore.ErrUnsupportedFilter, "salary max"),
	}
	repo := newTestRepo(t, store, nil)

	_, err := repo.SearchJobs(context.Background(), JobQuery{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidQueryOperator))
	assert.ErrorIs(t, err, docstore.ErrUnsupportedFilter)
}

func TestDecorateFailureIsNonFatal(t *testing.T) {
	mem := docstore.NewMemoryStore()
	seedProfessionals(mem)
	store := &failingStore{
		Store:       mem,
		collections: map[string]bool{docstore.CollectionProfessionalTypes: true},
		err:         fmt.Errorf("unavailable"),
	}
	repo := newTestRepo(t, store, nil)

	pros, err := repo.SearchProfessionals(context.Background(), ProfessionalQuery{})
	require.NoError(t, err)
	assert.Len(t, pros, 3, "p4 has no rating and drops out of the rating order")
	assert.Empty(t, pros[0].TypeLabel)
}

func TestSearchProfessionals_Filters(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.CollectionProfessionals, "a", map[string]interface{}{"rating": 4.8, "price": 500, "verification_status": "verified"})
	store.Seed(docstore.CollectionProfessionals, "b", map[string]interface{}{"rating": 4.6, "price": 1500, "verification_status": "verified"})
	store.Seed(docstore.CollectionProfessionals, "c", map[string]interface{}{"rating": 4.9, "price": 400, "verification_status": "pending"})
	repo := newTestRepo(t, store, nil)

	verified := true
	maxPrice := 1000
	minRating := 4.5
	pros, err := repo.SearchProfessionals(context.Background(), ProfessionalQueryFromFilters(models.Filters{
		Verified: &verified, MaxPrice: &maxPrice, MinRating: &minRating,
	}, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, professionalIDs(pros))

	pros, err = repo.SearchProfessionals(context.Background(), ProfessionalQuery{SortBy: SortPriceLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, professionalIDs(pros))
}

func TestBookingLifecycle(t *testing.T) {
	store := docstore.NewMemoryStore().WithIDGenerator(func() string { return "bk1" })
	repo := newTestRepo(t, store, nil)
	ctx := context.Background()

	_, err := repo.CreateBooking(ctx, models.NewBooking{ProfessionalID: "p1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRequired))

	booking, err := repo.CreateBooking(ctx, models.NewBooking{
		ClientID:        "u1",
		ProfessionalID:  "p1",
		ServiceType:     "Checkup",
		AppointmentDate: fixedNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "bk1", booking.ID)
	assert.Equal(t, models.BookingPending, booking.Status)
	require.NotNil(t, booking.CreatedAt)
	assert.Equal(t, fixedNow, *booking.CreatedAt)

	updated, err := repo.UpdateBookingStatus(ctx, "bk1", "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, updated.Status)

	_, err = repo.UpdateBookingStatus(ctx, "bk1", "pending")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidStatusTransition))

	_, err = repo.UpdateBookingStatus(ctx, "bk1", "archived")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidBookingStatus))

	_, err = repo.UpdateBookingStatus(ctx, "missing", "confirmed")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentNotFound))

	bookings, err := repo.GetUserBookings(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.BookingConfirmed, bookings[0].Status)

	bookings, err = repo.GetUserBookings(ctx, "u1", models.BookingCancelled)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetActiveConsultations(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.CollectionConsultations, "c1", map[string]interface{}{"client_id": "u1", "status": "scheduled", "scheduled_time": fixedNow.Add(2 * time.Hour)})
	store.Seed(docstore.CollectionConsultations, "c2", map[string]interface{}{"client_id": "u1", "status": "ongoing", "scheduled_time": fixedNow})
	store.Seed(docstore.CollectionConsultations, "c3", map[string]interface{}{"client_id": "u1", "status": "completed", "scheduled_time": fixedNow})
	store.Seed(docstore.CollectionConsultations, "c4", map[string]interface{}{"client_id": "u2", "status": "scheduled", "scheduled_time": fixedNow})
	repo := newTestRepo(t, store, nil)

	cons, err := repo.GetActiveConsultations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, cons, 2)
	assert.Equal(t, "c2", cons[0].ID)
	assert.Equal(t, "c1", cons[1].ID)
}

func TestSearchAll(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedProfessionals(store)
	store.Seed(docstore.CollectionPlacements, "j1", map[string]interface{}{"title": "Nurse", "isActive": true, "createdAt": fixedNow})
	store.Seed(docstore.CollectionSpecializations, "s1", map[string]interface{}{"name": "Cardiology", "isActive": true})
	store.Seed(docstore.CollectionSpecializations, "s2", map[string]interface{}{"name": "Dermatology", "isActive": true})
	store.Seed(docstore.CollectionSpecializations, "s3", map[string]interface{}{"name": "Cardiac Surgery", "isActive": false})
	repo := newTestRepo(t, store, nil)

	res, err := repo.SearchAll(context.Background(), "CARDI", 2)
	require.NoError(t, err)
	assert.Len(t, res.Professionals, 2)
	assert.Len(t, res.Jobs, 1)
	require.Len(t, res.Specializations, 1)
	assert.Equal(t, "Cardiology", res.Specializations[0].Name)
}

func TestNotifications(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := newTestRepo(t, store, nil)
	ctx := context.Background()

	n, err := repo.CreateNotification(ctx, "u1", NotificationInput{Type: "booking", Title: "Booked", Message: "See you soon"})
	require.NoError(t, err)
	assert.False(t, n.Read)

	list, err := repo.GetUserNotifications(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Booked", list[0].Title)
}

func TestUserProfile(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.CollectionUsers, "u1", map[string]interface{}{"name": "Asha", "email": "asha@example.com"})
	repo := newTestRepo(t, store, nil)
	ctx := context.Background()

	require.NoError(t, repo.UpdateUserProfile(ctx, "u1", map[string]interface{}{"phone": "+911234567890"}))
	u, err := repo.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "+911234567890", u.Phone)
	require.NotNil(t, u.UpdatedAt)
	assert.Equal(t, fixedNow, *u.UpdatedAt)

	missing, err := repo.GetUserProfile(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.UpdateUserProfile(ctx, "nobody", map[string]interface{}{"name": "x"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentNotFound))
}

func TestGetProfessionalAvailability(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.CollectionAvailabilitySlots, "s1", map[string]interface{}{"professional_id": "p1", "start_date": fixedNow.Add(time.Hour)})
	store.Seed(docstore.CollectionAvailabilitySlots, "s2", map[string]interface{}{"professional_id": "p1", "start_date": fixedNow.Add(72 * time.Hour)})
	store.Seed(docstore.CollectionAvailabilitySlots, "s3", map[string]interface{}{"professional_id": "p2", "start_date": fixedNow.Add(time.Hour)})
	repo := newTestRepo(t, store, nil)

	slots, err := repo.GetProfessionalAvailability(context.Background(), "p1", fixedNow, fixedNow.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s1", slots[0].ID)
}

func TestTypeCache_AvoidsRepeatedReads(t *testing.T) {
	mem := docstore.NewMemoryStore()
	seedProfessionals(mem)
	store := &countingStore{Store: mem, queries: map[string]int{}}
	repo := newTestRepo(t, store, NewMemoryTypeCache(time.Minute))

	for i := 0; i < 3; i++ {
		_, err := repo.GetProfessionalsByCategory(context.Background(), "mbbs", 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.queries[docstore.CollectionProfessionalTypes])
	assert.Equal(t, 3, store.queries[docstore.CollectionProfessionals])
}

func TestRedisTypeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisTypeCache(client, time.Minute)
	ctx := context.Background()

	_, ok := cache.Load(ctx)
	assert.False(t, ok)

	cache.Store(ctx, []models.ProfessionalType{{ID: "3", Name: "mbbs", Label: "Doctor"}})
	types, ok := cache.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "Doctor", types[0].Label)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Load(ctx)
	assert.False(t, ok)
}
