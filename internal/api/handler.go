package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	tokens        *auth.TokenIssuer
	webpush       *webpush.Options
	pool          *notification.WorkerPool
	defaultPolicy billing.Policy
}

// NewHandler creates a new API handler. pool may be nil when push
// notifications are disabled.
func NewHandler(s store.Store, tokens *auth.TokenIssuer, webpushOptions *webpush.Options, pool *notification.WorkerPool, defaultPolicy billing.Policy) *Handler {
	return &Handler{
		store:         s,
		tokens:        tokens,
		webpush:       webpushOptions,
		pool:          pool,
		defaultPolicy: defaultPolicy,
	}
}

// spotFreed dispatches a push notification job for a lot that gained a free spot.
func (h *Handler) spotFreed(lotID int64) {
	if h.pool != nil {
		h.pool.Dispatch(lotID)
	}
}

// abortWithError maps domain errors to HTTP statuses. Domain messages are
// surfaced verbatim; unexpected failures collapse to a generic 500.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNoAvailableSpot),
		errors.Is(err, store.ErrLotInactive),
		errors.Is(err, store.ErrDuplicateActiveReservation),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrCapacityViolation),
		errors.Is(err, store.ErrInsufficientFreeSpots),
		errors.Is(err, store.ErrLotOccupied):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrInvalidInterval):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
