package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-order-backend/config"
	"hostel-order-backend/internal/auth"
	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/store"
)

// captureSender records the last OTP code handed to it.
type captureSender struct {
	mu   sync.Mutex
	code string
}

func (s *captureSender) Send(ctx context.Context, mobile, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	return nil
}

func (s *captureSender) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

type testEnv struct {
	router *gin.Engine
	store  store.Store
	hub    *live.Hub
	sms    *captureSender
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&model.User{},
		&model.RollNumber{},
		&model.Order{},
		&model.Participant{},
		&model.Item{},
		&model.Message{},
		&model.PushSubscription{},
	))
	appStore := store.NewGormStore(gdb)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	sms := &captureSender{}
	hub := live.NewHub()

	handler := NewHandler(Deps{
		Store:     appStore,
		Hub:       hub,
		Tokens:    auth.NewJWTManager("test-secret", time.Hour),
		Passwords: auth.NewPasswordAuthenticator(appStore, "@dummy.com"),
		OTP: auth.NewOTPStore(redisClient, config.OTPConfig{
			CodeTTL:           5 * time.Minute,
			ResendAfter:       time.Minute,
			MaxVerifyAttempts: 5,
		}, sms),
		Revoker:     auth.NewRevoker(redisClient),
		CountryCode: "+91",
	})

	router := NewRouter(handler, RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})

	return &testEnv{router: router, store: appStore, hub: hub, sms: sms}
}

// do performs a JSON request against the test router.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// signup registers an account and returns its session token.
func (e *testEnv) signup(t *testing.T, name, rollNumber, hostel, mobile string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name":       name,
		"rollNumber": rollNumber,
		"hostel":     hostel,
		"roomNumber": "214",
		"mobile":     mobile,
		"password":   "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
