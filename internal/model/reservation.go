package model

import "time"

// Reservation statuses. Cancelled is a retained terminal state so history and
// reporting survive cancellation.
const (
	ReservationReserved  = "reserved"
	ReservationOccupied  = "occupied"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// ActiveReservationStatuses are the states that count against a user's
// single-active-reservation limit and a lot's capacity.
var ActiveReservationStatuses = []string{ReservationReserved, ReservationOccupied}

// Reservation is a user's claim on a spot from booking through completion or
// cancellation. RateAtBooking is snapshotted at creation so later lot price
// changes never affect an in-progress session.
type Reservation struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Code          string     `gorm:"uniqueIndex;size:36;not null" json:"code"`
	SpotID        int64      `gorm:"index;not null" json:"spot_id"`
	UserID        int64      `gorm:"index;not null" json:"user_id"`
	Status        string     `gorm:"size:16;not null;default:reserved" json:"status"`
	RateAtBooking float64    `gorm:"not null" json:"rate_at_booking"`
	ParkingAt     *time.Time `json:"parking_at"`
	LeavingAt     *time.Time `json:"leaving_at"`
	Cost          float64    `json:"cost"`
	CreatedAt     time.Time  `json:"created_at"`

	// Associations
	Spot ParkingSpot `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the reservation still holds its spot.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationReserved || r.Status == ReservationOccupied
}
