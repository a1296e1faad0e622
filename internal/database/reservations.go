package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pethotel/internal/models"
)

const reservationColumns = `id, status, payload, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// reservationSpan is the half-open date range a reservation blocks. A grooming
// appointment blocks its own date.
func reservationSpan(r *models.Reservation) (start, end string, err error) {
	switch {
	case r.IsHotel():
		return r.CheckInDate, r.CheckOutDate, nil
	case r.IsGrooming():
		d, err := models.ParseDate(r.GroomingAppointment.Date)
		if err != nil {
			return "", "", err
		}
		return models.DateKey(d), models.DateKey(d.AddDate(0, 0, 1)), nil
	}
	return "", "", fmt.Errorf("%w: no variant set", models.ErrInvalidReservation)
}

func reservationColumnsOf(r *models.Reservation) (start, end string, room, slot sql.NullString, payload []byte, err error) {
	start, end, err = reservationSpan(r)
	if err != nil {
		return
	}
	if r.IsHotel() {
		room = sql.NullString{String: r.RoomNumber, Valid: true}
	}
	if r.IsGrooming() {
		slot = sql.NullString{String: r.GroomingAppointment.Time, Valid: true}
	}
	payload, err = json.Marshal(r)
	return
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		id, status string
		payload    []byte
		version    int64
		created    time.Time
		updated    time.Time
	)
	if err := row.Scan(&id, &status, &payload, &version, &created, &updated); err != nil {
		return nil, err
	}

	var r models.Reservation
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode reservation %s: %w", id, err)
	}
	r.ID = id
	r.Status = models.Status(status)
	r.Version = version
	r.CreatedAt = created
	r.UpdatedAt = updated
	return &r, nil
}

func insertReservation(ctx context.Context, exec interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, r *models.Reservation) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1

	start, end, room, slot, payload, err := reservationColumnsOf(r)
	if err != nil {
		return err
	}

	query := `INSERT INTO reservations (
				id, type, status, start_date, end_date, room_number, slot,
				client_name, payload, version, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = exec.ExecContext(ctx, query,
		r.ID,
		r.Type,
		r.Status,
		start,
		end,
		room,
		slot,
		r.Client.Name,
		payload,
		r.Version,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return insertReservation(ctx, db, r)
}

// CreateReservationWithLock loads the reservations overlapping r inside a
// transaction, lets check veto the insert and then stores r.
func (db *DB) CreateReservationWithLock(ctx context.Context, r *models.Reservation, check func(models.Reservations) error) error {
	start, end, err := reservationSpan(r)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE start_date < ? AND end_date > ? ORDER BY start_date, created_at`
	rows, err := tx.QueryContext(ctx, query, end, start)
	if err != nil {
		return fmt.Errorf("failed to load overlapping reservations in tx: %w", err)
	}
	overlapping, err := collectReservations(rows)
	if err != nil {
		return err
	}

	if check != nil {
		if err := check(overlapping); err != nil {
			return err
		}
	}

	if err := insertReservation(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ListReservations returns every reservation in insertion order.
func (db *DB) ListReservations(ctx context.Context) (models.Reservations, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at, rowid`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return collectReservations(rows)
}

// ListReservationsInRange returns reservations blocking any day in [from, to].
func (db *DB) ListReservationsInRange(ctx context.Context, from, to string) (models.Reservations, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE start_date <= ? AND end_date > ? ORDER BY created_at, rowid`
	rows, err := db.QueryContext(ctx, query, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations by date range: %w", err)
	}
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) (models.Reservations, error) {
	defer rows.Close()

	out := models.Reservations{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id string, fromVersion int64, status models.Status) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	return db.checkVersionedUpdate(ctx, result, id)
}

// UpdateReservationWithVersion rewrites r if its stored version still equals
// r.Version. On success r carries the new version.
func (db *DB) UpdateReservationWithVersion(ctx context.Context, r *models.Reservation) error {
	start, end, room, slot, payload, err := reservationColumnsOf(r)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	query := `UPDATE reservations
              SET status = ?, start_date = ?, end_date = ?, room_number = ?, slot = ?,
                  client_name = ?, payload = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query,
		r.Status, start, end, room, slot, r.Client.Name, payload, now, r.ID, r.Version)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if err := db.checkVersionedUpdate(ctx, result, r.ID); err != nil {
		return err
	}
	r.Version++
	r.UpdatedAt = now
	return nil
}

// checkVersionedUpdate tells a missing row apart from a stale version.
func (db *DB) checkVersionedUpdate(ctx context.Context, result sql.Result, id string) error {
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check reservation: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return ErrConcurrentModification
}
