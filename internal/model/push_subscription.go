package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscriber is notified when a spot frees up in one of its lots.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Lots []*ParkingLot `gorm:"many2many:subscription_lot_mapping;"`
}
