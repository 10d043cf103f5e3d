package model

import "time"

// Spot status codes. A spot is Occupied from the moment a reservation claims
// it (including the Reserved phase) until the reservation ends or is cancelled.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

// ParkingSpot is a single parking space within a lot. Its status is derived
// from reservation transitions and never edited independently.
type ParkingSpot struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	LotID     int64     `gorm:"index;not null" json:"lot_id"`
	Status    string    `gorm:"size:1;not null;default:A" json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Associations
	Lot ParkingLot `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
