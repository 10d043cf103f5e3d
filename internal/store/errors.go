package store

import "errors"

// Domain errors. All are expected, recoverable conditions whose message is
// suitable for direct display to the caller.
var (
	// ErrNoAvailableSpot means the lot has no Available spot left to allocate.
	ErrNoAvailableSpot = errors.New("no available spot in this lot")

	// ErrLotInactive means the lot has been deactivated and accepts no new reservations.
	ErrLotInactive = errors.New("parking lot is not active")

	// ErrDuplicateActiveReservation means the user already holds a reserved or
	// occupied reservation somewhere in the system.
	ErrDuplicateActiveReservation = errors.New("user already has an active reservation")

	// ErrInvalidTransition covers a reservation that is missing, owned by
	// another user, or not in the state the transition requires.
	ErrInvalidTransition = errors.New("reservation not found or not in a valid state for this action")

	// ErrCapacityViolation means a resize would drop capacity below the number
	// of spots under active reservations.
	ErrCapacityViolation = errors.New("new capacity is below the number of spots in use")

	// ErrInsufficientFreeSpots means a shrink could not find enough Available
	// spots to remove. Defensive; the capacity guard should prevent it.
	ErrInsufficientFreeSpots = errors.New("not enough free spots to remove")

	// ErrLotOccupied means the lot cannot be deactivated while spots are occupied.
	ErrLotOccupied = errors.New("parking lot still has occupied spots")
)
