package model

import "time"

// ParkingLot represents a parking facility with a single hourly rate.
// Capacity is derived from the number of spots owned by the lot.
type ParkingLot struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:256;not null" json:"name"`
	Address       string    `gorm:"size:512;not null" json:"address"`
	PinCode       string    `gorm:"size:32;not null" json:"pin_code"`
	PricePerHour  float64   `gorm:"not null" json:"price_per_hour"`
	BillingPolicy string    `gorm:"size:32;not null;default:hourly_rounded" json:"billing_policy"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Spots []ParkingSpot `gorm:"foreignKey:LotID" json:"-"`
}
