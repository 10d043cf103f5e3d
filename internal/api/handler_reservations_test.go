package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/store"
)

var apiTestDBSeq atomic.Int64

type apiTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenIssuer
}

func setupAPITest(t *testing.T) *apiTestEnv {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", apiTestDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.ParkingLot{},
		&model.ParkingSpot{},
		&model.Reservation{},
		&model.PushSubscription{},
	))

	s := store.NewGormStore(db)
	tokens := auth.NewTokenIssuer("api-test-secret", time.Hour)
	handler := NewHandler(s, tokens, nil, nil, billing.DefaultPolicy)
	router := NewRouter(handler, rate.Limit(1000), 1000, time.Minute)

	return &apiTestEnv{router: router, db: db, tokens: tokens}
}

func (env *apiTestEnv) tokenFor(t *testing.T, username, role string) string {
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test User",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := env.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (env *apiTestEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupAPITest(t)

	w := env.do("POST", "/api/auth/register", "", gin.H{
		"username":  "alice",
		"email":     "alice@example.com",
		"full_name": "Alice Doe",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, model.RoleUser, created.Role)
	assert.NotContains(t, w.Body.String(), "password", "hash must never be serialized")

	// Duplicate usernames are rejected.
	w = env.do("POST", "/api/auth/register", "", gin.H{
		"username":  "alice",
		"email":     "alice2@example.com",
		"full_name": "Alice Doe",
		"password":  "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do("POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.NotEmpty(t, loginResp.Token)

	w = env.do("POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	env := setupAPITest(t)
	adminToken := env.tokenFor(t, "admin", model.RoleAdmin)
	userToken := env.tokenFor(t, "bob", model.RoleUser)

	w := env.do("POST", "/api/admin/lots", adminToken, gin.H{
		"name":           "Central Garage",
		"address":        "1 Main St",
		"pin_code":       "12345",
		"price_per_hour": 20.0,
		"capacity":       2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var lot model.ParkingLot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lot))

	// Regular users cannot touch admin routes.
	w = env.do("POST", "/api/admin/lots", userToken, gin.H{
		"name": "x", "address": "x", "pin_code": "1", "price_per_hour": 1.0, "capacity": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("POST", "/api/reservations", userToken, gin.H{"lot_id": lot.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reserveResp struct {
		Reservation model.Reservation `json:"reservation"`
		LotName     string            `json:"lot_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reserveResp))
	assert.Equal(t, model.ReservationReserved, reserveResp.Reservation.Status)
	assert.Equal(t, "Central Garage", reserveResp.LotName)

	// One active reservation per user.
	w = env.do("POST", "/api/reservations", userToken, gin.H{"lot_id": lot.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	resPath := fmt.Sprintf("/api/reservations/%d", reserveResp.Reservation.ID)

	w = env.do("POST", resPath+"/start", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do("GET", resPath+"/cost", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var live store.LiveCost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &live))
	assert.Equal(t, "Central Garage", live.LotName)

	w = env.do("POST", resPath+"/end", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var endResp struct {
		Reservation   model.Reservation `json:"reservation"`
		Cost          float64           `json:"cost"`
		BillableHours float64           `json:"billable_hours"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &endResp))
	assert.Equal(t, model.ReservationCompleted, endResp.Reservation.Status)
	assert.InDelta(t, 1.0, endResp.BillableHours, 1e-9, "sub-hour session rounds up to one hour")
	assert.InDelta(t, 20.0, endResp.Cost, 1e-9)

	// Ending twice is an invalid transition.
	w = env.do("POST", resPath+"/end", userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do("GET", "/api/reservations", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []store.ReservationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	w = env.do("GET", "/api/summary", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary store.UserSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(1), summary.CompletedSessions)
}

func TestCancelReservationOverHTTP(t *testing.T) {
	env := setupAPITest(t)
	adminToken := env.tokenFor(t, "admin", model.RoleAdmin)
	userToken := env.tokenFor(t, "carol", model.RoleUser)

	w := env.do("POST", "/api/admin/lots", adminToken, gin.H{
		"name":           "East Lot",
		"address":        "2 Main St",
		"pin_code":       "54321",
		"price_per_hour": 10.0,
		"capacity":       1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lot model.ParkingLot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lot))

	w = env.do("POST", "/api/reservations", userToken, gin.H{"lot_id": lot.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var reserveResp struct {
		Reservation model.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reserveResp))

	w = env.do("POST", fmt.Sprintf("/api/reservations/%d/cancel", reserveResp.Reservation.ID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The cancelled row is retained for history.
	var cancelled model.Reservation
	require.NoError(t, env.db.First(&cancelled, reserveResp.Reservation.ID).Error)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)

	// The spot is free again.
	w = env.do("POST", "/api/reservations", userToken, gin.H{"lot_id": lot.ID})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthRequiredOnReservationRoutes(t *testing.T) {
	env := setupAPITest(t)

	w := env.do("GET", "/api/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/reservations", "not-a-token", gin.H{"lot_id": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
