package store

import (
	"time"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
)

// TransitionResult carries the reservation after a lifecycle transition plus
// the lot context callers need for display and notification dispatch.
type TransitionResult struct {
	Reservation model.Reservation
	LotID       int64
	LotName     string
	// Quote is set by End; nil for the other transitions.
	Quote *billing.Quote
}

// LiveCost is the JSON-able "cost so far" structure for an occupied
// reservation. It is produced by the same policy and rate-at-booking as the
// eventual final bill.
type LiveCost struct {
	ReservationID int64   `json:"reservation_id"`
	Code          string  `json:"code"`
	LotName       string  `json:"location_name"`
	CostSoFar     float64 `json:"cost_so_far"`
	Duration      string  `json:"duration"`
	Explanation   string  `json:"explanation"`
}

// LotAvailability is one row of the public lot listing.
type LotAvailability struct {
	Lot            model.ParkingLot `json:"lot"`
	TotalSpots     int64            `json:"total_spots"`
	AvailableSpots int64            `json:"available_spots"`
}

// ReservationDetail joins a reservation with its spot and lot for history views.
type ReservationDetail struct {
	Reservation model.Reservation `json:"reservation"`
	SpotID      int64             `json:"spot_id"`
	LotID       int64             `json:"lot_id"`
	LotName     string            `json:"lot_name"`
}

// Summary aggregates system-wide counts for the admin dashboard. The numbers
// are read without locking and may trail in-flight transitions slightly.
type Summary struct {
	TotalUsers     int64             `json:"total_users"`
	TotalLots      int64             `json:"total_lots"`
	TotalSpots     int64             `json:"total_spots"`
	OccupiedSpots  int64             `json:"occupied_spots"`
	AvailableSpots int64             `json:"available_spots"`
	Lots           []LotOccupancyRow `json:"lots"`
}

// LotOccupancyRow is the per-lot slice of the admin summary.
type LotOccupancyRow struct {
	LotID         int64  `json:"lot_id"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	TotalSpots    int64  `json:"total_spots"`
	OccupiedSpots int64  `json:"occupied_spots"`
}

// UserSummary aggregates a user's completed sessions. Cancelled reservations
// are excluded from the average.
type UserSummary struct {
	CompletedSessions int64      `json:"completed_sessions"`
	CancelledSessions int64      `json:"cancelled_sessions"`
	TotalSpent        float64    `json:"total_spent"`
	AverageCost       float64    `json:"average_cost"`
	LastSessionAt     *time.Time `json:"last_session_at"`
}
