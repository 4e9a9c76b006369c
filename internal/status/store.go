package status

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ovenlight/bakery-api/internal/models"
)

// SQLStore persists status changes against the bakery MySQL schema.
// Each commit is a single-row UPDATE, so there are no partial writes.
type SQLStore struct {
	DB *sql.DB
}

func (s *SQLStore) UpdateStatus(kind string, id int64, newStatus string, now time.Time) error {
	switch kind {
	case KindOrder:
		steps := models.StepsForStatus(newStatus)
		query := `
			UPDATE orders
			SET status = ?, tracking_confirmed = ?, tracking_preparing = ?,
			    tracking_out_for_delivery = ?, tracking_delivered = ?, updated_at = ?
			WHERE id = ?`
		result, err := s.DB.Exec(query, newStatus,
			steps.Confirmed, steps.Preparing, steps.OutForDelivery, steps.Delivered,
			now, id)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return checkAffected(result, kind, id)

	case KindCustomRequest:
		query := "UPDATE custom_requests SET status = ?, updated_at = ? WHERE id = ?"
		result, err := s.DB.Exec(query, newStatus, now, id)
		if err != nil {
			return fmt.Errorf("failed to update custom request status: %w", err)
		}
		return checkAffected(result, kind, id)

	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
}

func checkAffected(result sql.Result, kind string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %d not found", kind, id)
	}
	return nil
}
