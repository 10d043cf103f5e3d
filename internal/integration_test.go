package internal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/jobs"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

var integrationDBSeq atomic.Int64

func setupIntegrationDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:integration%d?mode=memory&cache=shared", integrationDBSeq.Add(1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(
		&model.User{},
		&model.ParkingLot{},
		&model.ParkingSpot{},
		&model.Reservation{},
		&model.PushSubscription{},
	))
	return testDB
}

func createIntegrationUser(t *testing.T, db *gorm.DB, username string) *model.User {
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Integration User",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// TestReservationLifecycle walks a lot through booking, occupancy and billing,
// verifying the database state at each step.
func TestReservationLifecycle(t *testing.T) {
	testDB := setupIntegrationDB(t)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	s := store.NewGormStore(testDB)
	ctx := context.Background()

	lot, err := s.CreateLot(ctx, "Harbor Garage", "5 Dock Rd", "98765", 12.5, 2, billing.PolicyMinutePrecise)
	require.NoError(t, err)

	alice := createIntegrationUser(t, testDB, "alice")
	bob := createIntegrationUser(t, testDB, "bob")

	// Both spots get taken, lowest spot ID first.
	resA, err := s.Reserve(ctx, alice.ID, lot.ID)
	require.NoError(t, err)
	resB, err := s.Reserve(ctx, bob.ID, lot.ID)
	require.NoError(t, err)
	assert.Less(t, resA.Reservation.SpotID, resB.Reservation.SpotID)

	// The lot is full now.
	carol := createIntegrationUser(t, testDB, "carol")
	_, err = s.Reserve(ctx, carol.ID, lot.ID)
	assert.ErrorIs(t, err, store.ErrNoAvailableSpot)

	// A full lot no longer appears in the availability listing.
	listings, err := s.ListAvailableLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings)

	startAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	_, err = s.Start(ctx, resA.Reservation.ID, alice.ID, startAt)
	require.NoError(t, err)

	// 100 minutes under minute_precise at 12.5/h.
	ended, err := s.End(ctx, resA.Reservation.ID, alice.ID, startAt.Add(100*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 100.0/60.0, ended.Quote.BillableHours, 1e-9)
	assert.InDelta(t, 20.83, ended.Quote.DisplayCost(), 1e-9)
	assert.Equal(t, lot.ID, ended.LotID)

	// Alice's spot is back in the pool, so Carol can book.
	resC, err := s.Reserve(ctx, carol.ID, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, resA.Reservation.SpotID, resC.Reservation.SpotID)
}

// TestSweeperReleasesStaleReservations verifies that reservations abandoned in
// the reserved state are cancelled by a sweep and their lots dispatched to the
// notification pool.
func TestSweeperReleasesStaleReservations(t *testing.T) {
	testDB := setupIntegrationDB(t)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	s := store.NewGormStore(testDB)
	ctx := context.Background()

	lot, err := s.CreateLot(ctx, "Station Lot", "9 Rail Ave", "11111", 8, 1, billing.DefaultPolicy)
	require.NoError(t, err)

	dave := createIntegrationUser(t, testDB, "dave")
	reserved, err := s.Reserve(ctx, dave.ID, lot.ID)
	require.NoError(t, err)

	// Age the reservation past the TTL.
	staleCreatedAt := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, testDB.Model(&model.Reservation{}).
		Where("id = ?", reserved.Reservation.ID).
		Update("created_at", staleCreatedAt).Error)

	pool := notification.NewWorkerPool(4, testDB, nil)
	sweeper := jobs.NewSweeper(s, 30*time.Minute, pool)

	var wg sync.WaitGroup
	wg.Add(1)
	dispatched := make([]int64, 0, 1)
	go func() {
		defer wg.Done()
		dispatched = append(dispatched, <-pool.Jobs())
	}()

	sweeper.Sweep(ctx)
	wg.Wait()

	require.Len(t, dispatched, 1)
	assert.Equal(t, lot.ID, dispatched[0])

	var swept model.Reservation
	require.NoError(t, testDB.First(&swept, reserved.Reservation.ID).Error)
	assert.Equal(t, model.ReservationCancelled, swept.Status)

	var spot model.ParkingSpot
	require.NoError(t, testDB.First(&spot, reserved.Reservation.SpotID).Error)
	assert.Equal(t, model.SpotAvailable, spot.Status)

	// An occupied session is never swept, no matter its age.
	erin := createIntegrationUser(t, testDB, "erin")
	active, err := s.Reserve(ctx, erin.ID, lot.ID)
	require.NoError(t, err)
	_, err = s.Start(ctx, active.Reservation.ID, erin.ID, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&model.Reservation{}).
		Where("id = ?", active.Reservation.ID).
		Update("created_at", staleCreatedAt).Error)

	sweeper.Sweep(ctx)

	var stillActive model.Reservation
	require.NoError(t, testDB.First(&stillActive, active.Reservation.ID).Error)
	assert.Equal(t, model.ReservationOccupied, stillActive.Status)
}
