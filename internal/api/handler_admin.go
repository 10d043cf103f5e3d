package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/store"
)

type createLotRequest struct {
	Name         string  `json:"name" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	PinCode      string  `json:"pin_code" binding:"required"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gt=0"`
	Capacity     int     `json:"capacity" binding:"required,gt=0"`
	Policy       string  `json:"billing_policy"`
}

// CreateLot registers a new lot with its initial set of spots.
func (h *Handler) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy := h.defaultPolicy
	if req.Policy != "" {
		parsed, err := billing.ParsePolicy(req.Policy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		policy = parsed
	}

	lot, err := h.store.CreateLot(c.Request.Context(), req.Name, req.Address, req.PinCode, req.PricePerHour, req.Capacity, policy)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

type updateLotRequest struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	PinCode      string  `json:"pin_code"`
	PricePerHour float64 `json:"price_per_hour" binding:"omitempty,gt=0"`
	Capacity     int     `json:"capacity" binding:"omitempty,gt=0"`
	Policy       string  `json:"billing_policy"`
}

// UpdateLot applies a partial update. Shrinking capacity only removes free
// spots, so it fails while too many spots are occupied or reserved.
func (h *Handler) UpdateLot(c *gin.Context) {
	lotID, ok := lotParam(c)
	if !ok {
		return
	}

	var req updateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var policy billing.Policy
	if req.Policy != "" {
		parsed, err := billing.ParsePolicy(req.Policy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		policy = parsed
	}

	var spotsBefore int64
	if req.Capacity > 0 {
		h.store.DB().Model(&model.ParkingSpot{}).Where("lot_id = ?", lotID).Count(&spotsBefore)
	}

	lot, err := h.store.UpdateLot(c.Request.Context(), lotID, store.LotUpdate{
		Name:     req.Name,
		Address:  req.Address,
		PinCode:  req.PinCode,
		Rate:     req.PricePerHour,
		Capacity: req.Capacity,
		Policy:   policy,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Raising capacity adds free spots, so waiting subscribers get a push.
	if req.Capacity > 0 && int64(req.Capacity) > spotsBefore {
		h.spotFreed(lot.ID)
	}
	c.JSON(http.StatusOK, lot)
}

// DeactivateLot retires an empty lot. Historical reservations keep the lot
// row, so deactivation never deletes it.
func (h *Handler) DeactivateLot(c *gin.Context) {
	lotID, ok := lotParam(c)
	if !ok {
		return
	}

	if err := h.store.DeactivateLot(c.Request.Context(), lotID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lot deactivated"})
}

// GetAdminSummary reports system-wide occupancy and revenue figures.
func (h *Handler) GetAdminSummary(c *gin.Context) {
	summary, err := h.store.AdminSummary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func lotParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return 0, false
	}
	return id, true
}
