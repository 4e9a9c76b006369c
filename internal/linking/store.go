package linking

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// allowed collection/field identifiers. These are interpolated into SQL, so
// they must come from this fixed set, never from request input.
var allowedCollections = map[string]bool{
	CollectionOrders:   true,
	CollectionRequests: true,
}

var allowedFields = map[string]bool{
	"customer_email": true,
	"customer_phone": true,
}

// SQLStore implements Store against the bakery MySQL schema.
type SQLStore struct {
	DB *sql.DB
}

func (s *SQLStore) GuestMatches(collection, field, value string) ([]int64, error) {
	if !allowedCollections[collection] || !allowedFields[field] {
		return nil, fmt.Errorf("invalid guest match target %s.%s", collection, field)
	}

	query := fmt.Sprintf("SELECT id FROM %s WHERE is_guest = 1 AND %s = ?", collection, field)
	rows, err := s.DB.Query(query, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignOwner reassigns the batch inside a single transaction so the
// collection's reassignment is all-or-nothing.
func (s *SQLStore) AssignOwner(collection string, ids []int64, userID int64) error {
	if !allowedCollections[collection] {
		return fmt.Errorf("invalid collection %q", collection)
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf("UPDATE %s SET user_id = ?, is_guest = 0, updated_at = ? WHERE id = ?", collection)
	now := time.Now()
	for _, id := range ids {
		if _, err := tx.Exec(query, userID, now, id); err != nil {
			return fmt.Errorf("failed to reassign %s %d: %w", collection, id, err)
		}
	}

	return tx.Commit()
}

// FindClaimable looks a record up by reference code first, then by raw
// numeric id.
func (s *SQLStore) FindClaimable(collection, ref string) (*Ownership, error) {
	if !allowedCollections[collection] {
		return nil, fmt.Errorf("invalid collection %q", collection)
	}

	rec, err := s.lookup(collection, "reference_code", ref)
	if err == nil {
		return rec, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	if _, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		return s.lookup(collection, "id", ref)
	}
	return nil, ErrNotFound
}

func (s *SQLStore) lookup(collection, column, value string) (*Ownership, error) {
	query := fmt.Sprintf("SELECT id, reference_code, user_id, is_guest FROM %s WHERE %s = ?", collection, column)

	var rec Ownership
	var userID sql.NullInt64
	err := s.DB.QueryRow(query, value).Scan(&rec.ID, &rec.ReferenceCode, &userID, &rec.IsGuest)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec.Collection = collection
	if userID.Valid {
		rec.UserID = &userID.Int64
	}
	return &rec, nil
}
