package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-order-backend/internal/auth"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/mw"
	"hostel-order-backend/internal/store"
)

type signupRequest struct {
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Hostel     string `json:"hostel"`
	RoomNumber string `json:"roomNumber"`
	Mobile     string `json:"mobile"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token,omitempty"`
	User  *model.User `json:"user"`
}

// Signup creates an account. The roll number reservation is checked in the
// same transaction as the account creation, so a taken roll number is
// rejected before anything is written.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, field := range []string{req.Name, req.RollNumber, req.Hostel, req.RoomNumber, req.Mobile, req.Password} {
		if strings.TrimSpace(field) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
			return
		}
	}

	user, err := h.passwords.Register(c.Request.Context(), auth.Signup{
		Name:       strings.TrimSpace(req.Name),
		RollNumber: strings.TrimSpace(req.RollNumber),
		Hostel:     strings.TrimSpace(req.Hostel),
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		Mobile:     auth.NormalizeMobile(req.Mobile, h.countryCode),
		Password:   req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRollNumberTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "roll number already registered"})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("signup failed", "roll_number", req.RollNumber, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		}
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: user})
}

type loginRequest struct {
	RollNumber string `json:"rollNumber"`
	Password   string `json:"password"`
}

// Login authenticates a roll number and password.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.passwords.Authenticate(c.Request.Context(), strings.TrimSpace(req.RollNumber), req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user})
}

type sendOTPRequest struct {
	Mobile string `json:"mobile"`
}

// SendOTP issues a phone verification challenge.
func (h *Handler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mobile := auth.NormalizeMobile(req.Mobile, h.countryCode)
	challengeID, err := h.otp.Send(c.Request.Context(), mobile)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPSendRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrOTPMobileRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("failed to send otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"challengeId": challengeID})
}

type verifyOTPRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

// VerifyOTP confirms a phone verification code. When the verified mobile
// belongs to a registered user a session is returned; otherwise the client
// is told to sign up first.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mobile, err := h.otp.Verify(c.Request.Context(), req.ChallengeID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPCodeInvalid),
			errors.Is(err, auth.ErrOTPCodeExpired),
			errors.Is(err, auth.ErrOTPChallengeInvalid),
			errors.Is(err, auth.ErrOTPTooManyAttempts):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrOTPCodeRequired), errors.Is(err, auth.ErrOTPChallengeRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("failed to verify otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify OTP"})
		}
		return
	}

	user, err := h.store.GetUserByMobile(c.Request.Context(), mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Verified but unregistered: the client should route to signup.
			c.JSON(http.StatusNotFound, gin.H{"error": "no account for this mobile; please sign up", "mobile": mobile})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up account"})
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user})
}

// Logout revokes the current session token for the remainder of its
// lifetime.
func (h *Handler) Logout(c *gin.Context) {
	claims := mw.SessionClaims(c)
	if h.revoker != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
			slog.Error("failed to revoke token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// Session returns the current identity, enriched with the profile
// document when it resolves. A failed enrichment falls back to the bare
// session claims rather than erroring.
func (h *Handler) Session(c *gin.Context) {
	claims := mw.SessionClaims(c)

	user, err := h.store.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("session enrichment failed, serving bare claims", "user_id", claims.UserID, "error", err)
		}
		user = &model.User{
			ID:         claims.UserID,
			Name:       claims.Name,
			RollNumber: claims.RollNumber,
			Mobile:     claims.Mobile,
		}
	}

	c.JSON(http.StatusOK, sessionResponse{User: user})
}
