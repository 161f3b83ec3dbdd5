package api

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hostel-order-backend/internal/countdown"
	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/mw"
	"hostel-order-backend/internal/store"
)

// orderResponse is an order flattened with its display countdown.
type orderResponse struct {
	model.Order
	RemainingSeconds float64 `json:"remainingSeconds"`
	Urgent           bool    `json:"urgent"`
}

func boardEntry(order model.Order, now time.Time) orderResponse {
	remaining := countdown.Remaining(order.CreatedAt, order.TimeLimitMinutes, now)
	return orderResponse{
		Order:            order,
		RemainingSeconds: remaining,
		Urgent:           countdown.Urgent(remaining),
	}
}

// pendingBoard builds the board snapshot for a hostel: pending orders
// only, in whatever order the store delivers them.
func (h *Handler) pendingBoard(c *gin.Context, hostelID string) ([]orderResponse, error) {
	orders, err := h.store.ListOrdersByHostel(c.Request.Context(), hostelID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	board := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		if order.Status != model.OrderStatusPending {
			continue
		}
		board = append(board, boardEntry(order, now))
	}
	return board, nil
}

// ListOrders handles GET /api/hostels/:hostel_id/orders.
func (h *Handler) ListOrders(c *gin.Context) {
	board, err := h.pendingBoard(c, c.Param("hostel_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve orders"})
		return
	}
	c.JSON(http.StatusOK, board)
}

type createOrderRequest struct {
	Name      string `json:"name"`
	TimeLimit int    `json:"timeLimit"`
}

// CreateOrder handles POST /api/hostels/:hostel_id/orders.
func (h *Handler) CreateOrder(c *gin.Context) {
	hostelID := c.Param("hostel_id")

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || req.TimeLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid order name and time limit (minutes) are required"})
		return
	}

	claims := mw.SessionClaims(c)
	creatorName := claims.Name
	if creatorName == "" {
		creatorName = "Anonymous"
	}

	order := &model.Order{
		ID:   uuid.NewString(),
		Name: name,
		// Placeholder estimate shown on the board until items exist.
		ItemCount:        rand.IntN(10) + 1,
		Status:           model.OrderStatusPending,
		TimeLimitMinutes: req.TimeLimit,
		HostelID:         hostelID,
		CreatedByID:      claims.UserID,
		CreatedByName:    creatorName,
	}

	if err := h.store.CreateOrder(c.Request.Context(), order); err != nil {
		slog.Error("failed to create order", "hostel_id", hostelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	h.hub.Publish(live.OrdersTopic(hostelID), live.KindOrderCreated, order.ID)
	if h.notifier != nil {
		h.notifier.Dispatch(order.ID)
	}

	c.JSON(http.StatusCreated, boardEntry(*order, time.Now()))
}

// orderDetailResponse is the full derived view of one order.
type orderDetailResponse struct {
	orderResponse
	Summary live.Summary `json:"summary"`
}

// GetOrder handles GET /api/orders/:order_id.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	order, err := h.store.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve order"})
		}
		return
	}

	summary, err := live.BuildSummary(c.Request.Context(), h.store, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build order summary"})
		return
	}

	c.JSON(http.StatusOK, orderDetailResponse{
		orderResponse: boardEntry(*order, time.Now()),
		Summary:       *summary,
	})
}
