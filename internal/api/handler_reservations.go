package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/auth"
)

type createReservationRequest struct {
	LotID int64 `json:"lot_id" binding:"required"`
}

// CreateReservation books a spot in the requested lot for the caller.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.Reserve(c.Request.Context(), auth.CallerID(c), req.LotID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation": result.Reservation,
		"lot_name":    result.LotName,
	})
}

// StartReservation begins the parking session for a reserved spot.
func (h *Handler) StartReservation(c *gin.Context) {
	reservationID, ok := reservationParam(c)
	if !ok {
		return
	}

	result, err := h.store.Start(c.Request.Context(), reservationID, auth.CallerID(c), time.Now().UTC())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": result.Reservation})
}

// EndReservation completes the parking session and returns the bill.
func (h *Handler) EndReservation(c *gin.Context) {
	reservationID, ok := reservationParam(c)
	if !ok {
		return
	}

	result, err := h.store.End(c.Request.Context(), reservationID, auth.CallerID(c), time.Now().UTC())
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.spotFreed(result.LotID)

	c.JSON(http.StatusOK, gin.H{
		"reservation":    result.Reservation,
		"cost":           result.Quote.DisplayCost(),
		"billable_hours": result.Quote.BillableHours,
		"explanation":    result.Quote.Explanation,
	})
}

// CancelReservation cancels a reservation that has not started yet.
func (h *Handler) CancelReservation(c *gin.Context) {
	reservationID, ok := reservationParam(c)
	if !ok {
		return
	}

	result, err := h.store.Cancel(c.Request.Context(), reservationID, auth.CallerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.spotFreed(result.LotID)

	c.JSON(http.StatusOK, gin.H{"reservation": result.Reservation})
}

// GetReservations returns the caller's reservation history, newest first.
func (h *Handler) GetReservations(c *gin.Context) {
	details, err := h.store.UserReservations(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetLiveCost returns the running cost of an occupied reservation. The same
// policy and rate as the final bill apply, so polling clients never see a
// different method than the eventual charge.
func (h *Handler) GetLiveCost(c *gin.Context) {
	reservationID, ok := reservationParam(c)
	if !ok {
		return
	}

	live, err := h.store.CurrentCost(c.Request.Context(), reservationID, auth.CallerID(c), time.Now().UTC())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, live)
}

// GetUserSummary returns the caller's aggregate session figures.
func (h *Handler) GetUserSummary(c *gin.Context) {
	summary, err := h.store.UserSummary(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func reservationParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return 0, false
	}
	return id, true
}
