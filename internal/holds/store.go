package holds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// Store is the bun-backed DBLayer.
type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) InsertHold(ctx context.Context, hold models.SeatHold) error {
	if _, err := s.Bun.NewInsert().Model(&hold).Exec(ctx); err != nil {
		return fmt.Errorf("insert hold: %w", err)
	}
	return nil
}

func (s *Store) GetHold(ctx context.Context, id string) (*models.SeatHold, error) {
	hold := new(models.SeatHold)
	err := s.Bun.NewSelect().Model(hold).Where("hold.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("hold %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select hold: %w", err)
	}
	return hold, nil
}

// UpdateHoldStatus moves an active hold to a terminal status. The
// guard makes a release racing the expiry sweep (or a conversion)
// lose cleanly instead of reverting the flip.
func (s *Store) UpdateHoldStatus(ctx context.Context, id string, status models.HoldStatus) error {
	res, err := s.Bun.NewUpdate().
		Model((*models.SeatHold)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Where("status = ?", models.HoldActive).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update hold status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return utils.Conflictf("hold %s is missing or no longer active", id)
	}
	return nil
}

// ConvertToTicket re-checks the hold and inserts the ticket in one
// transaction. Marking the hold CONVERTED first takes its segment out
// of the active universe before the ticket row claims it, so the two
// never overlap-conflict with each other.
func (s *Store) ConvertToTicket(ctx context.Context, holdID string, ticket models.Ticket) error {
	return s.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		hold := new(models.SeatHold)
		err := tx.NewSelect().Model(hold).Where("hold.id = ?", holdID).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFoundf("hold %s not found", holdID)
		}
		if err != nil {
			return fmt.Errorf("reselect hold: %w", err)
		}
		if hold.Status != models.HoldActive {
			return utils.Conflictf("hold %s is %s, conversion lost the race", holdID, hold.Status)
		}
		if !time.Now().Before(hold.ExpiresAt) {
			return utils.Conflictf("hold %s expired at %s", holdID, hold.ExpiresAt.Format(time.RFC3339))
		}

		res, err := tx.NewUpdate().
			Model((*models.SeatHold)(nil)).
			Set("status = ?", models.HoldConverted).
			Where("id = ?", holdID).
			Where("status = ?", models.HoldActive).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("mark hold converted: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return utils.Conflictf("hold %s is no longer active", holdID)
		}

		if _, err := tx.NewInsert().Model(&ticket).Exec(ctx); err != nil {
			return fmt.Errorf("insert converted ticket: %w", err)
		}
		return nil
	})
}

// ExpireOldHolds flips every overdue active hold to EXPIRED in a
// single bulk update and returns the count.
func (s *Store) ExpireOldHolds(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Bun.NewUpdate().
		Model((*models.SeatHold)(nil)).
		Set("status = ?", models.HoldExpired).
		Where("status = ?", models.HoldActive).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("expire holds: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// PurgeExpiredBefore hard-deletes EXPIRED holds whose expiry is older
// than the cutoff.
func (s *Store) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.Bun.NewDelete().
		Model((*models.SeatHold)(nil)).
		Where("status = ?", models.HoldExpired).
		Where("expires_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge holds: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
