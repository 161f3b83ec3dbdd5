package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-order-backend/internal/model"
)

// testDSN gives each test its own in-memory database shared across every
// pooled connection; without cache=shared a second connection sees an
// empty schema.
func testDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

func newTestStore(t *testing.T) Store {
	db, err := gorm.Open(sqlite.Open(testDSN()), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.RollNumber{},
		&model.Order{},
		&model.Participant{},
		&model.Item{},
		&model.Message{},
		&model.PushSubscription{},
	)
	require.NoError(t, err)

	return NewGormStore(db)
}

// A reader on a fresh pooled connection must see the migrated schema, the
// way the aggregator's goroutine does while the writer still holds the
// first connection.
func TestStore_SchemaVisibleOnSecondConnection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sqlDB, err := s.DB().DB()
	require.NoError(t, err)

	first, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()

	// With the first connection pinned, this one is freshly opened.
	second, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRowContext(ctx, "SELECT count(*) FROM participants").Scan(&n))
	assert.Zero(t, n)
}

func TestCreateUser_ReservesRollNumber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         "Asha",
		RollNumber:   "21CS1042",
		Hostel:       "godavari",
		RoomNumber:   "214",
		Mobile:       "9876543210",
		PasswordHash: "x",
	}
	require.NoError(t, s.CreateUser(ctx, user))

	exists, err := s.RollNumberExists(ctx, "21CS1042")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same roll number again must fail and must not create a second account.
	dup := &model.User{
		ID:           uuid.NewString(),
		Name:         "Impostor",
		RollNumber:   "21CS1042",
		PasswordHash: "y",
	}
	err = s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrRollNumberTaken)

	_, err = s.GetUser(ctx, dup.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The original account is still resolvable by roll number and mobile.
	byRoll, err := s.GetUserByRollNumber(ctx, "21CS1042")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byRoll.ID)

	byMobile, err := s.GetUserByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byMobile.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := &model.Order{
		ID:               uuid.NewString(),
		Name:             "Lunch",
		ItemCount:        4,
		Status:           model.OrderStatusPending,
		TimeLimitMinutes: 30,
		HostelID:         "godavari",
		CreatedByID:      "u1",
	}
	require.NoError(t, s.CreateOrder(ctx, order))

	other := &model.Order{
		ID:               uuid.NewString(),
		Name:             "Dinner",
		Status:           model.OrderStatusPending,
		TimeLimitMinutes: 20,
		HostelID:         "kaveri",
	}
	require.NoError(t, s.CreateOrder(ctx, other))

	orders, err := s.ListOrdersByHostel(ctx, "godavari")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Lunch", orders[0].Name)

	participant := &model.Participant{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Name:      "Ravi",
		Room:      "112",
		CreatorID: "u1",
	}
	require.NoError(t, s.CreateParticipant(ctx, participant))

	item := &model.Item{
		ID:            uuid.NewString(),
		ParticipantID: participant.ID,
		Name:          "Dosa",
		Quantity:      2,
		Price:         40,
	}
	require.NoError(t, s.CreateItem(ctx, item))

	participants, err := s.ListParticipants(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)

	items, err := s.ListItems(ctx, participant.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, float64(40), items[0].Price)

	_, err = s.GetParticipant(ctx, order.ID, participant.ID)
	require.NoError(t, err)
	_, err = s.GetParticipant(ctx, other.ID, participant.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMessages_AscendingByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	base := time.Now().Add(-time.Hour)
	texts := []string{"first", "second", "third"}
	// Insert out of order; the query sorts.
	for _, i := range []int{2, 0, 1} {
		msg := &model.Message{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Text:      texts[i],
			SenderID:  "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateMessage(ctx, msg))
	}

	messages, err := s.ListMessages(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, m := range messages {
		assert.Equal(t, texts[i], m.Text)
	}
}

func TestPushSubscriptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &model.PushSubscription{
		Endpoint: "https://push.example/abc",
		P256DH:   "key",
		Auth:     "auth",
		HostelID: "godavari",
	}
	require.NoError(t, s.UpsertPushSubscription(ctx, sub))

	// Re-subscribing the same endpoint moves it to the new hostel.
	sub.HostelID = "kaveri"
	require.NoError(t, s.UpsertPushSubscription(ctx, sub))

	subs, err := s.ListPushSubscriptionsByHostel(ctx, "kaveri")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	subs, err = s.ListPushSubscriptionsByHostel(ctx, "godavari")
	require.NoError(t, err)
	assert.Empty(t, subs)

	require.NoError(t, s.DeletePushSubscription(ctx, sub.Endpoint))
	_, err = s.GetPushSubscription(ctx, sub.Endpoint)
	assert.ErrorIs(t, err, ErrNotFound)
}
