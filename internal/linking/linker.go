// Package linking reassigns guest-owned orders and custom requests to an
// authenticated account, either in bulk on sign-in (matched by contact
// info) or one at a time by reference code.
package linking

import (
	"errors"
	"log"
)

// Collections the linker operates over.
const (
	CollectionOrders   = "orders"
	CollectionRequests = "custom_requests"
)

var (
	// ErrNotFound means no record matched the reference.
	ErrNotFound = errors.New("no matching record")
	// ErrOwnedByOther means the record is already linked to a different account.
	ErrOwnedByOther = errors.New("record already linked to another account")
)

// Ownership describes who currently holds a record.
type Ownership struct {
	Collection    string
	ID            int64
	ReferenceCode string
	UserID        *int64
	IsGuest       bool
}

// Store is the persistence surface the linker needs. AssignOwner must apply
// the whole batch atomically (all-or-nothing within one collection).
type Store interface {
	GuestMatches(collection, field, value string) ([]int64, error)
	AssignOwner(collection string, ids []int64, userID int64) error
	FindClaimable(collection, ref string) (*Ownership, error)
}

// Result counts what a bulk link reassigned.
type Result struct {
	OrdersLinked   int `json:"ordersLinked"`
	RequestsLinked int `json:"requestsLinked"`
}

// Linker owns the reassignment rules. Collaborators are injected.
type Linker struct {
	store  Store
	logger *log.Logger
}

func NewLinker(store Store, logger *log.Logger) *Linker {
	return &Linker{store: store, logger: logger}
}

// LinkAccount finds guest records whose contact fields match the signed-in
// account and reassigns them. The two collections are independent batches:
// a failure in one does not stop the other, and partial overall linking is
// an accepted outcome. Re-running is a no-op because reassigned records no
// longer carry the guest flag.
func (l *Linker) LinkAccount(userID int64, email, phone string) Result {
	return Result{
		OrdersLinked:   l.linkCollection(CollectionOrders, userID, email, phone),
		RequestsLinked: l.linkCollection(CollectionRequests, userID, email, phone),
	}
}

func (l *Linker) linkCollection(collection string, userID int64, email, phone string) int {
	fields := []struct{ name, value string }{
		{"customer_email", email},
		{"customer_phone", phone},
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		matches, err := l.store.GuestMatches(collection, f.name, f.value)
		if err != nil {
			// Degrade to zero matches for this query path; the other
			// path still contributes whatever it finds.
			l.logger.Printf("guest match query failed on %s.%s: %v", collection, f.name, err)
			continue
		}
		for _, id := range matches {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return 0
	}
	if err := l.store.AssignOwner(collection, ids, userID); err != nil {
		l.logger.Printf("guest reassignment failed on %s: %v", collection, err)
		return 0
	}
	return len(ids)
}

// Claim links a single record, found by reference code or raw id, to the
// account. Claiming a record the account already owns is a no-op success;
// a record owned by a different account is rejected untouched.
func (l *Linker) Claim(userID int64, ref string) (*Ownership, error) {
	for _, collection := range []string{CollectionOrders, CollectionRequests} {
		rec, err := l.store.FindClaimable(collection, ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}

		if rec.UserID != nil && *rec.UserID != userID {
			return nil, ErrOwnedByOther
		}
		if rec.UserID != nil && !rec.IsGuest {
			// Already linked to this account.
			return rec, nil
		}

		if err := l.store.AssignOwner(collection, []int64{rec.ID}, userID); err != nil {
			return nil, err
		}
		rec.UserID = &userID
		rec.IsGuest = false
		return rec, nil
	}
	return nil, ErrNotFound
}
