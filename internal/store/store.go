package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
)

// Store defines the database operations for lots, spots and reservations.
type Store interface {
	DB() *gorm.DB

	// Lot capacity management.
	CreateLot(ctx context.Context, name, address, pinCode string, rate float64, capacity int, policy billing.Policy) (*model.ParkingLot, error)
	UpdateLot(ctx context.Context, lotID int64, upd LotUpdate) (*model.ParkingLot, error)
	DeactivateLot(ctx context.Context, lotID int64) error
	LotByID(ctx context.Context, lotID int64) (*model.ParkingLot, error)
	ListAvailableLots(ctx context.Context) ([]LotAvailability, error)

	// Reservation lifecycle.
	Reserve(ctx context.Context, userID, lotID int64) (*TransitionResult, error)
	Start(ctx context.Context, reservationID, userID int64, now time.Time) (*TransitionResult, error)
	End(ctx context.Context, reservationID, userID int64, now time.Time) (*TransitionResult, error)
	Cancel(ctx context.Context, reservationID, userID int64) (*TransitionResult, error)
	ExpireStaleReservations(ctx context.Context, before time.Time) ([]int64, error)

	// Read paths.
	CurrentCost(ctx context.Context, reservationID, userID int64, now time.Time) (*LiveCost, error)
	UserReservations(ctx context.Context, userID int64) ([]ReservationDetail, error)
	AdminSummary(ctx context.Context) (*Summary, error)
	UserSummary(ctx context.Context, userID int64) (*UserSummary, error)
}

// LotUpdate carries the mutable lot fields for UpdateLot. Zero values leave
// the corresponding field unchanged.
type LotUpdate struct {
	Name     string
	Address  string
	PinCode  string
	Rate     float64
	Capacity int
	Policy   billing.Policy
}

// gormStore implements the Store interface using GORM. A store-level mutex
// serializes the multi-step write transitions so two logically concurrent
// requests cannot race on the same spot or on a user's single-active limit.
type gormStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for read-only collaborators.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateLot creates the lot row and exactly capacity Available spots in one
// transaction; a failure during spot creation leaves no partial lot behind.
func (s *gormStore) CreateLot(ctx context.Context, name, address, pinCode string, rate float64, capacity int, policy billing.Policy) (*model.ParkingLot, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("hourly rate must be positive, got %v", rate)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	if policy == "" {
		policy = billing.DefaultPolicy
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lot := model.ParkingLot{
		Name:          name,
		Address:       address,
		PinCode:       pinCode,
		PricePerHour:  rate,
		BillingPolicy: string(policy),
		Active:        true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lot).Error; err != nil {
			return fmt.Errorf("failed to create lot: %w", err)
		}
		return appendSpots(tx, lot.ID, capacity)
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// UpdateLot resizes and/or reprices a lot. Capacity can never drop below the
// number of spots under active reservations, and shrinking removes only
// Available spots, most recently created first.
func (s *gormStore) UpdateLot(ctx context.Context, lotID int64, upd LotUpdate) (*model.ParkingLot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lot model.ParkingLot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}

		if upd.Capacity > 0 {
			var occupied int64
			if err := tx.Model(&model.ParkingSpot{}).
				Where("lot_id = ? AND status = ?", lotID, model.SpotOccupied).
				Count(&occupied).Error; err != nil {
				return fmt.Errorf("failed to count occupied spots: %w", err)
			}
			if int64(upd.Capacity) < occupied {
				return ErrCapacityViolation
			}

			var current int64
			if err := tx.Model(&model.ParkingSpot{}).
				Where("lot_id = ?", lotID).
				Count(&current).Error; err != nil {
				return fmt.Errorf("failed to count spots: %w", err)
			}

			switch {
			case int64(upd.Capacity) > current:
				if err := appendSpots(tx, lotID, upd.Capacity-int(current)); err != nil {
					return err
				}
			case int64(upd.Capacity) < current:
				if err := removeFreeSpots(tx, lotID, int(current)-upd.Capacity); err != nil {
					return err
				}
			}
		}

		updates := map[string]any{}
		if upd.Name != "" {
			updates["name"] = upd.Name
		}
		if upd.Address != "" {
			updates["address"] = upd.Address
		}
		if upd.PinCode != "" {
			updates["pin_code"] = upd.PinCode
		}
		if upd.Rate > 0 {
			updates["price_per_hour"] = upd.Rate
		}
		if upd.Policy != "" {
			updates["billing_policy"] = string(upd.Policy)
		}
		if len(updates) > 0 {
			if err := tx.Model(&lot).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update lot %d: %w", lotID, err)
			}
		}
		return tx.First(&lot, lotID).Error
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// DeactivateLot soft-deletes a lot. It fails while any spot is occupied;
// historical reservations remain queryable afterwards.
func (s *gormStore) DeactivateLot(ctx context.Context, lotID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot model.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}

		var occupied int64
		if err := tx.Model(&model.ParkingSpot{}).
			Where("lot_id = ? AND status = ?", lotID, model.SpotOccupied).
			Count(&occupied).Error; err != nil {
			return fmt.Errorf("failed to count occupied spots: %w", err)
		}
		if occupied > 0 {
			return ErrLotOccupied
		}

		return tx.Model(&lot).Update("active", false).Error
	})
}

// LotByID returns a single lot.
func (s *gormStore) LotByID(ctx context.Context, lotID int64) (*model.ParkingLot, error) {
	var lot model.ParkingLot
	if err := s.db.WithContext(ctx).First(&lot, lotID).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// ListAvailableLots returns active lots that currently have at least one
// Available spot, with their spot counts.
func (s *gormStore) ListAvailableLots(ctx context.Context) ([]LotAvailability, error) {
	var lots []model.ParkingLot
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve lots: %w", err)
	}

	type aggRow struct {
		LotID     int64
		Total     int64
		Available int64
	}
	var aggs []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.ParkingSpot{}).
		Select("lot_id as lot_id, COUNT(*) as total, SUM(CASE WHEN status = 'A' THEN 1 ELSE 0 END) as available").
		Group("lot_id").
		Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate spots: %w", err)
	}

	aggMap := make(map[int64]aggRow, len(aggs))
	for _, a := range aggs {
		aggMap[a.LotID] = a
	}

	results := make([]LotAvailability, 0, len(lots))
	for _, lot := range lots {
		a := aggMap[lot.ID]
		if a.Available == 0 {
			continue
		}
		results = append(results, LotAvailability{
			Lot:            lot,
			TotalSpots:     a.Total,
			AvailableSpots: a.Available,
		})
	}
	return results, nil
}

// Reserve books the lowest-numbered Available spot in the lot for the user.
// Spot allocation, reservation creation and the spot status flip happen in a
// single transaction so a partial failure never strands a spot.
func (s *gormStore) Reserve(ctx context.Context, userID, lotID int64) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot model.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}
		if !lot.Active {
			return ErrLotInactive
		}

		var active int64
		if err := tx.Model(&model.Reservation{}).
			Where("user_id = ? AND status IN ?", userID, model.ActiveReservationStatuses).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count active reservations: %w", err)
		}
		if active > 0 {
			return ErrDuplicateActiveReservation
		}

		spot, err := allocateSpot(tx, lotID)
		if err != nil {
			return err
		}

		reservation := model.Reservation{
			Code:          uuid.NewString(),
			SpotID:        spot.ID,
			UserID:        userID,
			Status:        model.ReservationReserved,
			RateAtBooking: lot.PricePerHour,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		if err := occupySpot(tx, spot.ID); err != nil {
			return err
		}

		result = &TransitionResult{Reservation: reservation, LotID: lot.ID, LotName: lot.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Start moves a Reserved reservation to Occupied and records the parking
// start timestamp.
func (s *gormStore) Start(ctx context.Context, reservationID, userID int64, now time.Time) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, lot, err := loadOwnedReservation(tx, reservationID, userID, model.ReservationReserved)
		if err != nil {
			return err
		}

		if err := tx.Model(reservation).Updates(map[string]any{
			"status":     model.ReservationOccupied,
			"parking_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to start reservation %d: %w", reservationID, err)
		}
		reservation.Status = model.ReservationOccupied
		reservation.ParkingAt = &now

		result = &TransitionResult{Reservation: *reservation, LotID: lot.ID, LotName: lot.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// End completes an Occupied reservation: it prices the session with the rate
// snapshotted at booking, stores the full-precision cost, and frees the spot,
// all in one transaction.
func (s *gormStore) End(ctx context.Context, reservationID, userID int64, now time.Time) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, lot, err := loadOwnedReservation(tx, reservationID, userID, model.ReservationOccupied)
		if err != nil {
			return err
		}

		policy, err := billing.ParsePolicy(lot.BillingPolicy)
		if err != nil {
			return err
		}
		quote, err := billing.Compute(*reservation.ParkingAt, now, reservation.RateAtBooking, policy)
		if err != nil {
			return err
		}

		if err := tx.Model(reservation).Updates(map[string]any{
			"status":     model.ReservationCompleted,
			"leaving_at": now,
			"cost":       quote.Cost,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete reservation %d: %w", reservationID, err)
		}
		reservation.Status = model.ReservationCompleted
		reservation.LeavingAt = &now
		reservation.Cost = quote.Cost

		if err := freeSpot(tx, reservation.SpotID); err != nil {
			return err
		}

		result = &TransitionResult{Reservation: *reservation, LotID: lot.ID, LotName: lot.Name, Quote: &quote}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel marks a Reserved reservation Cancelled and frees its spot. The row
// is retained as history rather than deleted.
func (s *gormStore) Cancel(ctx context.Context, reservationID, userID int64) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, lot, err := loadOwnedReservation(tx, reservationID, userID, model.ReservationReserved)
		if err != nil {
			return err
		}

		if err := tx.Model(reservation).Update("status", model.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %d: %w", reservationID, err)
		}
		reservation.Status = model.ReservationCancelled

		if err := freeSpot(tx, reservation.SpotID); err != nil {
			return err
		}

		result = &TransitionResult{Reservation: *reservation, LotID: lot.ID, LotName: lot.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireStaleReservations cancels Reserved reservations created before the
// cutoff and frees their spots. It returns the IDs of lots that gained a free
// spot, one entry per freed spot.
func (s *gormStore) ExpireStaleReservations(ctx context.Context, before time.Time) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var freedLots []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []model.Reservation
		if err := tx.
			Where("status = ? AND created_at < ?", model.ReservationReserved, before).
			Find(&stale).Error; err != nil {
			return fmt.Errorf("failed to fetch stale reservations: %w", err)
		}

		for _, reservation := range stale {
			var spot model.ParkingSpot
			if err := tx.First(&spot, reservation.SpotID).Error; err != nil {
				return fmt.Errorf("failed to load spot %d: %w", reservation.SpotID, err)
			}

			if err := tx.Model(&reservation).Update("status", model.ReservationCancelled).Error; err != nil {
				return fmt.Errorf("failed to expire reservation %d: %w", reservation.ID, err)
			}
			if err := freeSpot(tx, spot.ID); err != nil {
				return err
			}
			freedLots = append(freedLots, spot.LotID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freedLots, nil
}

// CurrentCost prices an Occupied reservation against now with the identical
// policy and rate-at-booking that End will use, so the live estimate and the
// final bill never diverge in method.
func (s *gormStore) CurrentCost(ctx context.Context, reservationID, userID int64, now time.Time) (*LiveCost, error) {
	reservation, lot, err := loadOwnedReservation(s.db.WithContext(ctx), reservationID, userID, model.ReservationOccupied)
	if err != nil {
		return nil, err
	}

	policy, err := billing.ParsePolicy(lot.BillingPolicy)
	if err != nil {
		return nil, err
	}
	quote, err := billing.Compute(*reservation.ParkingAt, now, reservation.RateAtBooking, policy)
	if err != nil {
		return nil, err
	}

	return &LiveCost{
		ReservationID: reservation.ID,
		Code:          reservation.Code,
		LotName:       lot.Name,
		CostSoFar:     quote.DisplayCost(),
		Duration:      billing.FormatDuration(now.Sub(*reservation.ParkingAt)),
		Explanation:   quote.Explanation,
	}, nil
}

// UserReservations returns the user's reservations, newest first, joined with
// spot and lot context.
func (s *gormStore) UserReservations(ctx context.Context, userID int64) ([]ReservationDetail, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reservations: %w", err)
	}
	if len(reservations) == 0 {
		return []ReservationDetail{}, nil
	}

	spotIDs := make([]int64, len(reservations))
	for i, r := range reservations {
		spotIDs[i] = r.SpotID
	}

	var spots []model.ParkingSpot
	if err := s.db.WithContext(ctx).Find(&spots, spotIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve spots: %w", err)
	}
	spotMap := make(map[int64]model.ParkingSpot, len(spots))
	lotIDs := make([]int64, 0, len(spots))
	for _, sp := range spots {
		spotMap[sp.ID] = sp
		lotIDs = append(lotIDs, sp.LotID)
	}

	var lots []model.ParkingLot
	if err := s.db.WithContext(ctx).Find(&lots, lotIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve lots: %w", err)
	}
	lotMap := make(map[int64]model.ParkingLot, len(lots))
	for _, l := range lots {
		lotMap[l.ID] = l
	}

	details := make([]ReservationDetail, 0, len(reservations))
	for _, r := range reservations {
		spot := spotMap[r.SpotID]
		lot := lotMap[spot.LotID]
		details = append(details, ReservationDetail{
			Reservation: r,
			SpotID:      r.SpotID,
			LotID:       spot.LotID,
			LotName:     lot.Name,
		})
	}
	return details, nil
}

// AdminSummary aggregates system-wide counts. Read-only; may run concurrently
// with lifecycle transitions.
func (s *gormStore) AdminSummary(ctx context.Context) (*Summary, error) {
	db := s.db.WithContext(ctx)
	summary := &Summary{}

	if err := db.Model(&model.User{}).Count(&summary.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&model.ParkingLot{}).Count(&summary.TotalLots).Error; err != nil {
		return nil, fmt.Errorf("failed to count lots: %w", err)
	}
	if err := db.Model(&model.ParkingSpot{}).Count(&summary.TotalSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to count spots: %w", err)
	}
	if err := db.Model(&model.ParkingSpot{}).
		Where("status = ?", model.SpotOccupied).
		Count(&summary.OccupiedSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to count occupied spots: %w", err)
	}
	summary.AvailableSpots = summary.TotalSpots - summary.OccupiedSpots

	var lots []model.ParkingLot
	if err := db.Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve lots: %w", err)
	}

	type aggRow struct {
		LotID    int64
		Total    int64
		Occupied int64
	}
	var aggs []aggRow
	if err := db.Model(&model.ParkingSpot{}).
		Select("lot_id as lot_id, COUNT(*) as total, SUM(CASE WHEN status = 'O' THEN 1 ELSE 0 END) as occupied").
		Group("lot_id").
		Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate spots: %w", err)
	}
	aggMap := make(map[int64]aggRow, len(aggs))
	for _, a := range aggs {
		aggMap[a.LotID] = a
	}

	summary.Lots = make([]LotOccupancyRow, 0, len(lots))
	for _, lot := range lots {
		a := aggMap[lot.ID]
		summary.Lots = append(summary.Lots, LotOccupancyRow{
			LotID:         lot.ID,
			Name:          lot.Name,
			Active:        lot.Active,
			TotalSpots:    a.Total,
			OccupiedSpots: a.Occupied,
		})
	}
	return summary, nil
}

// UserSummary aggregates a user's session history. Cancelled reservations are
// counted but excluded from the spend figures.
func (s *gormStore) UserSummary(ctx context.Context, userID int64) (*UserSummary, error) {
	db := s.db.WithContext(ctx)
	summary := &UserSummary{}

	if err := db.Model(&model.Reservation{}).
		Where("user_id = ? AND status = ?", userID, model.ReservationCompleted).
		Count(&summary.CompletedSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	if err := db.Model(&model.Reservation{}).
		Where("user_id = ? AND status = ?", userID, model.ReservationCancelled).
		Count(&summary.CancelledSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count cancelled sessions: %w", err)
	}

	if summary.CompletedSessions == 0 {
		return summary, nil
	}

	if err := db.Model(&model.Reservation{}).
		Where("user_id = ? AND status = ?", userID, model.ReservationCompleted).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&summary.TotalSpent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum session costs: %w", err)
	}
	summary.AverageCost = summary.TotalSpent / float64(summary.CompletedSessions)

	var last model.Reservation
	err := db.Where("user_id = ? AND status = ?", userID, model.ReservationCompleted).
		Order("leaving_at DESC").
		First(&last).Error
	if err == nil {
		summary.LastSessionAt = last.LeavingAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load last session: %w", err)
	}
	return summary, nil
}

// --- Transition helpers ---

// allocateSpot picks the Available spot with the smallest ID in the lot. The
// status flip is left to the caller's transaction.
func allocateSpot(tx *gorm.DB, lotID int64) (*model.ParkingSpot, error) {
	var spot model.ParkingSpot
	err := tx.Where("lot_id = ? AND status = ?", lotID, model.SpotAvailable).
		Order("id ASC").
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoAvailableSpot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate spot in lot %d: %w", lotID, err)
	}
	return &spot, nil
}

// loadOwnedReservation fetches a reservation and checks ownership and state.
// Not-found, wrong owner and wrong state all collapse into ErrInvalidTransition
// since the caller's remedy is the same. The owning lot is returned for
// pricing and notification context.
func loadOwnedReservation(tx *gorm.DB, reservationID, userID int64, wantStatus string) (*model.Reservation, *model.ParkingLot, error) {
	var reservation model.Reservation
	if err := tx.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidTransition
		}
		return nil, nil, fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
	}
	if reservation.UserID != userID || reservation.Status != wantStatus {
		return nil, nil, ErrInvalidTransition
	}

	var spot model.ParkingSpot
	if err := tx.First(&spot, reservation.SpotID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load spot %d: %w", reservation.SpotID, err)
	}
	var lot model.ParkingLot
	if err := tx.First(&lot, spot.LotID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load lot %d: %w", spot.LotID, err)
	}
	return &reservation, &lot, nil
}

func occupySpot(tx *gorm.DB, spotID int64) error {
	if err := tx.Model(&model.ParkingSpot{}).
		Where("id = ?", spotID).
		Update("status", model.SpotOccupied).Error; err != nil {
		return fmt.Errorf("failed to occupy spot %d: %w", spotID, err)
	}
	return nil
}

func freeSpot(tx *gorm.DB, spotID int64) error {
	if err := tx.Model(&model.ParkingSpot{}).
		Where("id = ?", spotID).
		Update("status", model.SpotAvailable).Error; err != nil {
		return fmt.Errorf("failed to free spot %d: %w", spotID, err)
	}
	return nil
}

func appendSpots(tx *gorm.DB, lotID int64, n int) error {
	spots := make([]model.ParkingSpot, n)
	for i := range spots {
		spots[i] = model.ParkingSpot{LotID: lotID, Status: model.SpotAvailable}
	}
	if err := tx.Create(&spots).Error; err != nil {
		return fmt.Errorf("failed to create %d spots for lot %d: %w", n, lotID, err)
	}
	return nil
}

// removeFreeSpots deletes n Available spots from the lot, most recently
// created first so shrinking peels off the newest additions.
func removeFreeSpots(tx *gorm.DB, lotID int64, n int) error {
	var ids []int64
	if err := tx.Model(&model.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, model.SpotAvailable).
		Order("id DESC").
		Limit(n).
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to select removable spots: %w", err)
	}
	if len(ids) < n {
		return ErrInsufficientFreeSpots
	}
	if err := tx.Delete(&model.ParkingSpot{}, ids).Error; err != nil {
		return fmt.Errorf("failed to remove spots: %w", err)
	}
	return nil
}
