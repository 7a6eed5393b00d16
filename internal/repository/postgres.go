package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
)

const slotColumns = "id, owner_id, owner_name, slot_date, start_min, end_min, timezone, origin, series_id, created_at"

// PostgresStore implements SlotStore over a pgx connection pool. Transient
// connection failures are retried with fibonacci backoff before the error
// is surfaced as ErrStoreUnavailable.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// withRetry runs fn, retrying calls pgx reports as safe to repeat.
func (s *PostgresStore) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && pgconn.SafeToRetry(err) {
			s.logger.Warn("Retrying slot store operation",
				zap.String("op", op),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot     model.Slot
		date     time.Time
		start    int
		end      int
		seriesID *uuid.UUID
	)
	err := row.Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.OwnerName,
		&date,
		&start,
		&end,
		&slot.Timezone,
		&slot.Origin,
		&seriesID,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.Date = model.DateOf(date)
	slot.StartTime = model.TimeOfDay(start)
	slot.EndTime = model.TimeOfDay(end)
	slot.SeriesID = seriesID
	return &slot, nil
}

func (s *PostgresStore) querySlots(ctx context.Context, op, query string, args ...any) ([]model.Slot, error) {
	var slots []model.Slot
	err := s.withRetry(ctx, op, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		slots = slots[:0]
		for rows.Next() {
			slot, err := scanSlot(rows)
			if err != nil {
				return fmt.Errorf("scan slot: %w", err)
			}
			slots = append(slots, *slot)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	return slots, nil
}

// GetAll returns every stored slot ordered by date and start time.
func (s *PostgresStore) GetAll(ctx context.Context) ([]model.Slot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM slots
		ORDER BY slot_date, start_min, id
	`, slotColumns)
	return s.querySlots(ctx, "get all slots", query)
}

// GetByOwner returns one owner's slots ordered by date and start time.
func (s *PostgresStore) GetByOwner(ctx context.Context, ownerID string) ([]model.Slot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM slots
		WHERE owner_id = $1
		ORDER BY slot_date, start_min, id
	`, slotColumns)
	return s.querySlots(ctx, "get slots by owner", query, ownerID)
}

// GetByID returns a slot by ID, or (nil, nil) when it does not exist.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE id = $1`, slotColumns)

	var slot *model.Slot
	err := s.withRetry(ctx, "get slot by id", func(ctx context.Context) error {
		var err error
		slot, err = scanSlot(s.pool.QueryRow(ctx, query, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get slot by id", Err: err}
	}
	return slot, nil
}

const insertSlotQuery = `
	INSERT INTO slots (owner_id, owner_name, slot_date, start_min, end_min, timezone, origin, series_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + slotColumns

func insertSlotArgs(d model.SlotDraft) []any {
	return []any{
		d.OwnerID,
		d.OwnerName,
		d.Date.Midnight(time.UTC),
		int(d.StartTime),
		int(d.EndTime),
		d.Timezone,
		d.Origin,
		d.SeriesID,
	}
}

// Insert persists a single draft and returns the stored slot.
func (s *PostgresStore) Insert(ctx context.Context, draft model.SlotDraft) (*model.Slot, error) {
	var slot *model.Slot
	err := s.withRetry(ctx, "insert slot", func(ctx context.Context) error {
		var err error
		slot, err = scanSlot(s.pool.QueryRow(ctx, insertSlotQuery, insertSlotArgs(draft)...))
		return err
	})
	if err != nil {
		return nil, &StoreError{Op: "insert slot", Err: err}
	}
	return slot, nil
}

// BulkInsert persists all drafts inside one transaction; a failure on any
// draft rolls the whole batch back.
func (s *PostgresStore) BulkInsert(ctx context.Context, drafts []model.SlotDraft) ([]model.Slot, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	var slots []model.Slot
	err := s.withRetry(ctx, "bulk insert slots", func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		slots = slots[:0]
		for _, draft := range drafts {
			slot, err := scanSlot(tx.QueryRow(ctx, insertSlotQuery, insertSlotArgs(draft)...))
			if err != nil {
				return fmt.Errorf("insert slot in batch: %w", err)
			}
			slots = append(slots, *slot)
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, &StoreError{Op: "bulk insert slots", Err: err}
	}
	return slots, nil
}

// Update applies a patch to a stored slot in place.
func (s *PostgresStore) Update(ctx context.Context, id int64, patch model.SlotPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	query := `
		UPDATE slots
		SET slot_date = COALESCE($1, slot_date),
		    start_min = COALESCE($2, start_min),
		    end_min   = COALESCE($3, end_min),
		    timezone  = COALESCE($4, timezone)
		WHERE id = $5
	`

	var date *time.Time
	if patch.Date != nil {
		midnight := patch.Date.Midnight(time.UTC)
		date = &midnight
	}
	var start, end *int
	if patch.StartTime != nil {
		v := int(*patch.StartTime)
		start = &v
	}
	if patch.EndTime != nil {
		v := int(*patch.EndTime)
		end = &v
	}

	var affected int64
	err := s.withRetry(ctx, "update slot", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, query, date, start, end, patch.Timezone, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return &StoreError{Op: "update slot", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a slot by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := s.withRetry(ctx, "delete slot", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return &StoreError{Op: "delete slot", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes one owner's slots of the given origin.
func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID string, origin model.SlotOrigin) (int64, error) {
	var affected int64
	err := s.withRetry(ctx, "delete slots by owner", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`DELETE FROM slots WHERE owner_id = $1 AND origin = $2`, ownerID, origin)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, &StoreError{Op: "delete slots by owner", Err: err}
	}
	return affected, nil
}

// DeleteByOrigin removes every slot of an origin class.
func (s *PostgresStore) DeleteByOrigin(ctx context.Context, origin model.SlotOrigin) (int64, error) {
	var affected int64
	err := s.withRetry(ctx, "delete slots by origin", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM slots WHERE origin = $1`, origin)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, &StoreError{Op: "delete slots by origin", Err: err}
	}
	return affected, nil
}
