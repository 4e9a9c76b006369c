package status

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusWrite struct {
	kind      string
	id        int64
	newStatus string
}

type fakeStore struct {
	writes []statusWrite
	err    error
}

func (s *fakeStore) UpdateStatus(kind string, id int64, newStatus string, _ time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, statusWrite{kind: kind, id: id, newStatus: newStatus})
	return nil
}

type notification struct {
	userID  int64
	message string
	link    string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(userID int64, _, _, message, link string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{userID: userID, message: message, link: link})
	return nil
}

func newTestEngine(store *fakeStore, notifier *fakeNotifier) *Engine {
	return NewEngine(store, notifier, log.New(io.Discard, "", 0), "60")
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func orderEntity() Entity {
	return Entity{
		Kind:          KindOrder,
		ID:            42,
		UserID:        int64Ptr(7),
		ReferenceCode: "BK-7F3A2C",
		CustomerName:  "Aisyah",
		CustomerPhone: "0123456789",
		CurrentStatus: "pending",
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeNotifier{})

	_, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "teleported"})

	assert.Error(t, err)
	assert.Empty(t, store.writes)
}

func TestSameStatusWritesWithoutNotification(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	res, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "pending"})

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Empty(t, res.Draft)
	assert.Empty(t, notifier.sent, "equal old/new status must not create a notification")
	require.Len(t, store.writes, 1)
	assert.Equal(t, "pending", store.writes[0].newStatus)
}

func TestCommitGatedOnConfirmation(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeNotifier{})

	res, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "confirmed"})

	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Empty(t, store.writes, "persist must wait for operator confirmation")
	assert.Contains(t, res.Draft, "BK-7F3A2C")
	assert.Contains(t, res.Draft, "Aisyah")
}

func TestConfirmedTransitionCommitsAndNotifies(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	res, err := engine.Apply(Request{
		Entity:    orderEntity(),
		NewStatus: "confirmed",
		Message:   "Hi Aisyah! Your order BK-7F3A2C is confirmed.",
		Confirmed: true,
	})

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.True(t, res.NotificationSent)
	require.Len(t, store.writes, 1)
	assert.Equal(t, statusWrite{kind: KindOrder, id: 42, newStatus: "confirmed"}, store.writes[0])
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(7), notifier.sent[0].userID)
	assert.Contains(t, notifier.sent[0].message, "confirmed")
	assert.Contains(t, res.WhatsAppLink, "https://wa.me/60123456789")
}

func TestSkipMessageCommitsWithoutDraft(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	res, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "preparing", SkipMessage: true})

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Empty(t, res.Draft)
	assert.Empty(t, res.WhatsAppLink)
	assert.Len(t, notifier.sent, 1)
}

func TestNoPhoneSkipsTheMessageStep(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeNotifier{})

	ent := orderEntity()
	ent.CustomerPhone = ""

	res, err := engine.Apply(Request{Entity: ent, NewStatus: "confirmed"})

	require.NoError(t, err)
	assert.True(t, res.Committed, "no contact channel means no modal gate")
	assert.Empty(t, res.Draft)
}

func TestStoreFailureLeavesNoSideEffects(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	res, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "confirmed", SkipMessage: true})

	assert.Error(t, err)
	assert.False(t, res.Committed)
	assert.Empty(t, notifier.sent)
}

func TestNotifierFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("notifications table locked")}
	engine := newTestEngine(store, notifier)

	res, err := engine.Apply(Request{Entity: orderEntity(), NewStatus: "confirmed", SkipMessage: true})

	require.NoError(t, err, "a notification failure must never block the status commit")
	assert.True(t, res.Committed)
	assert.False(t, res.NotificationSent)
}

func TestGuestEntityGetsNoNotification(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	ent := orderEntity()
	ent.UserID = nil

	res, err := engine.Apply(Request{Entity: ent, NewStatus: "confirmed", SkipMessage: true})

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Empty(t, notifier.sent)
}

func TestApprovedRequestNotificationContainsQuotedPrice(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier)

	ent := Entity{
		Kind:          KindCustomRequest,
		ID:            9,
		UserID:        int64Ptr(3),
		ReferenceCode: "BK-C4K3D0",
		CustomerName:  "Mei Ling",
		CustomerPhone: "0198765432",
		CurrentStatus: "pending",
		QuotedPrice:   float64Ptr(1500),
	}

	res, err := engine.Apply(Request{Entity: ent, NewStatus: "approved", Confirmed: true, Message: "quote attached"})

	require.NoError(t, err)
	assert.True(t, res.Committed)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].message, "1500")
	assert.Contains(t, notifier.sent[0].link, "BK-C4K3D0")
}

func TestDraftForApprovedRequestIncludesQuote(t *testing.T) {
	ent := Entity{
		Kind:          KindCustomRequest,
		ReferenceCode: "BK-C4K3D0",
		CustomerName:  "Mei Ling",
		QuotedPrice:   float64Ptr(1500),
	}

	draft := DraftMessage(ent, "approved")
	assert.Contains(t, draft, "Mei Ling")
	assert.Contains(t, draft, "1500")
}
