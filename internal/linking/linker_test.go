package linking

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with per-path error injection.
type fakeStore struct {
	records map[string][]*Ownership // collection -> records
	contact map[string]map[int64][2]string // collection -> id -> {email, phone}

	matchErr  map[string]error // collection -> error for GuestMatches
	assignErr map[string]error // collection -> error for AssignOwner

	assignCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   map[string][]*Ownership{},
		contact:   map[string]map[int64][2]string{},
		matchErr:  map[string]error{},
		assignErr: map[string]error{},
	}
}

func (s *fakeStore) add(collection string, rec *Ownership, email, phone string) {
	rec.Collection = collection
	s.records[collection] = append(s.records[collection], rec)
	if s.contact[collection] == nil {
		s.contact[collection] = map[int64][2]string{}
	}
	s.contact[collection][rec.ID] = [2]string{email, phone}
}

func (s *fakeStore) GuestMatches(collection, field, value string) ([]int64, error) {
	if err := s.matchErr[collection]; err != nil {
		return nil, err
	}
	var ids []int64
	for _, rec := range s.records[collection] {
		if !rec.IsGuest {
			continue
		}
		contact := s.contact[collection][rec.ID]
		if (field == "customer_email" && contact[0] == value) ||
			(field == "customer_phone" && contact[1] == value) {
			ids = append(ids, rec.ID)
		}
	}
	return ids, nil
}

func (s *fakeStore) AssignOwner(collection string, ids []int64, userID int64) error {
	s.assignCalls = append(s.assignCalls, collection)
	if err := s.assignErr[collection]; err != nil {
		return err
	}
	for _, id := range ids {
		for _, rec := range s.records[collection] {
			if rec.ID == id {
				uid := userID
				rec.UserID = &uid
				rec.IsGuest = false
			}
		}
	}
	return nil
}

func (s *fakeStore) FindClaimable(collection, ref string) (*Ownership, error) {
	for _, rec := range s.records[collection] {
		if rec.ReferenceCode == ref {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func newTestLinker(store Store) *Linker {
	return NewLinker(store, log.New(io.Discard, "", 0))
}

func int64Ptr(v int64) *int64 { return &v }

func TestLinkAccountReassignsGuestMatches(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", IsGuest: true}, "a@x.com", "")
	store.add(CollectionOrders, &Ownership{ID: 2, ReferenceCode: "BK-BBB222", IsGuest: true}, "other@x.com", "0123456789")
	store.add(CollectionRequests, &Ownership{ID: 5, ReferenceCode: "BK-CCC333", IsGuest: true}, "a@x.com", "")

	res := newTestLinker(store).LinkAccount(7, "a@x.com", "0123456789")

	assert.Equal(t, Result{OrdersLinked: 2, RequestsLinked: 1}, res)
	for _, rec := range store.records[CollectionOrders] {
		assert.False(t, rec.IsGuest)
		require.NotNil(t, rec.UserID)
		assert.Equal(t, int64(7), *rec.UserID)
	}
}

func TestLinkAccountIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", IsGuest: true}, "a@x.com", "")

	linker := newTestLinker(store)

	first := linker.LinkAccount(7, "a@x.com", "")
	assert.Equal(t, 1, first.OrdersLinked)

	// The guest flag is cleared, so the second run finds nothing.
	second := linker.LinkAccount(7, "a@x.com", "")
	assert.Equal(t, Result{}, second)
}

func TestLinkAccountMatchesEmailAndPhoneWithoutDoubleCounting(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", IsGuest: true}, "a@x.com", "0123456789")

	res := newTestLinker(store).LinkAccount(7, "a@x.com", "0123456789")
	assert.Equal(t, 1, res.OrdersLinked)
}

func TestQueryFailureDegradesToZeroMatches(t *testing.T) {
	store := newFakeStore()
	store.matchErr[CollectionOrders] = errors.New("missing composite index")
	store.add(CollectionRequests, &Ownership{ID: 5, ReferenceCode: "BK-CCC333", IsGuest: true}, "a@x.com", "")

	res := newTestLinker(store).LinkAccount(7, "a@x.com", "")

	// Orders degrade to zero matches; the request path still links.
	assert.Equal(t, Result{OrdersLinked: 0, RequestsLinked: 1}, res)
}

func TestBatchesAreIndependent(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", IsGuest: true}, "a@x.com", "")
	store.add(CollectionRequests, &Ownership{ID: 5, ReferenceCode: "BK-CCC333", IsGuest: true}, "a@x.com", "")
	store.assignErr[CollectionOrders] = errors.New("deadlock")

	res := newTestLinker(store).LinkAccount(7, "a@x.com", "")

	assert.Equal(t, Result{OrdersLinked: 0, RequestsLinked: 1}, res)
	assert.Equal(t, []string{CollectionOrders, CollectionRequests}, store.assignCalls)
}

func TestClaimUnownedRecord(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", IsGuest: true}, "", "")

	rec, err := newTestLinker(store).Claim(7, "BK-AAA111")

	require.NoError(t, err)
	require.NotNil(t, rec.UserID)
	assert.Equal(t, int64(7), *rec.UserID)
	assert.False(t, rec.IsGuest)
}

func TestClaimOwnRecordIsNoOpSuccess(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", UserID: int64Ptr(7)}, "", "")

	rec, err := newTestLinker(store).Claim(7, "BK-AAA111")

	require.NoError(t, err)
	assert.Equal(t, int64(7), *rec.UserID)
	assert.Empty(t, store.assignCalls, "re-claiming an already-linked record must not write")
}

func TestClaimForeignRecordFailsWithoutMutation(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionOrders, &Ownership{ID: 1, ReferenceCode: "BK-AAA111", UserID: int64Ptr(99)}, "", "")

	_, err := newTestLinker(store).Claim(7, "BK-AAA111")

	assert.ErrorIs(t, err, ErrOwnedByOther)
	assert.Empty(t, store.assignCalls)
	assert.Equal(t, int64(99), *store.records[CollectionOrders][0].UserID)
}

func TestClaimFallsThroughToRequests(t *testing.T) {
	store := newFakeStore()
	store.add(CollectionRequests, &Ownership{ID: 5, ReferenceCode: "BK-CCC333", IsGuest: true}, "", "")

	rec, err := newTestLinker(store).Claim(7, "BK-CCC333")

	require.NoError(t, err)
	assert.Equal(t, CollectionRequests, rec.Collection)
}

func TestClaimUnknownReference(t *testing.T) {
	_, err := newTestLinker(newFakeStore()).Claim(7, "BK-ZZZ999")
	assert.ErrorIs(t, err, ErrNotFound)
}
