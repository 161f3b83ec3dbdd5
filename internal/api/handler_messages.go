package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/mw"
	"hostel-order-backend/internal/store"
)

// messageResponse is a chat message with its resolved display name.
type messageResponse struct {
	model.Message
	DisplayName string `json:"displayName"`
}

// resolveMessages attaches display names to a batch of messages. Profile
// lookups are de-duplicated per sender, issued concurrently and cached;
// a sender whose profile cannot be fetched keeps the name embedded in the
// message, and a message with neither shows "Anonymous". Lookup failures
// are never surfaced to the caller.
func (h *Handler) resolveMessages(ctx context.Context, messages []model.Message) []messageResponse {
	toFetch := make(map[string]struct{})
	for _, m := range messages {
		if m.SenderID == "" {
			continue
		}
		if _, found := h.senderNames.Get(m.SenderID); !found {
			toFetch[m.SenderID] = struct{}{}
		}
	}

	if len(toFetch) > 0 {
		var mu sync.Mutex
		resolved := make(map[string]string, len(toFetch))

		g, gctx := errgroup.WithContext(ctx)
		for senderID := range toFetch {
			g.Go(func() error {
				user, err := h.store.GetUser(gctx, senderID)
				if err != nil {
					// Fall back silently to the stored sender name.
					return nil
				}
				mu.Lock()
				resolved[senderID] = user.Name
				mu.Unlock()
				return nil
			})
		}
		// Merge only once the whole batch settled.
		_ = g.Wait()
		for id, name := range resolved {
			h.senderNames.Set(id, name, cache.DefaultExpiration)
		}
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		displayName := m.SenderName
		if name, found := h.senderNames.Get(m.SenderID); found {
			if s, ok := name.(string); ok && s != "" {
				displayName = s
			}
		}
		if displayName == "" {
			displayName = "Anonymous"
		}
		out = append(out, messageResponse{Message: m, DisplayName: displayName})
	}
	return out
}

// ListMessages handles GET /api/orders/:order_id/messages. Messages come
// back in ascending creation order; the sort belongs to the query.
func (h *Handler) ListMessages(c *gin.Context) {
	orderID := c.Param("order_id")

	messages, err := h.store.ListMessages(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve messages"})
		return
	}

	c.JSON(http.StatusOK, h.resolveMessages(c.Request.Context(), messages))
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage handles POST /api/orders/:order_id/messages.
func (h *Handler) SendMessage(c *gin.Context) {
	orderID := c.Param("order_id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is required"})
		return
	}

	if _, err := h.store.GetOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve order"})
		}
		return
	}

	claims := mw.SessionClaims(c)
	senderName := claims.Name
	if senderName == "" {
		senderName = claims.Mobile
	}
	if senderName == "" {
		senderName = "Anonymous"
	}

	message := &model.Message{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Text:       text,
		SenderID:   claims.UserID,
		SenderName: senderName,
		CreatedAt:  time.Now(),
	}

	if err := h.store.CreateMessage(c.Request.Context(), message); err != nil {
		slog.Error("failed to send message", "order_id", orderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.hub.Publish(live.MessagesTopic(orderID), live.KindMessageSent, message.ID)

	c.JSON(http.StatusCreated, message)
}
