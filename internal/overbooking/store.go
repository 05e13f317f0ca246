package overbooking

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

type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) InsertRequest(ctx context.Context, req models.OverbookingRequest) error {
	if _, err := s.Bun.NewInsert().Model(&req).Exec(ctx); err != nil {
		return fmt.Errorf("insert overbooking request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*models.OverbookingRequest, error) {
	req := new(models.OverbookingRequest)
	err := s.Bun.NewSelect().Model(req).Where("obr.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("overbooking request %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select overbooking request: %w", err)
	}
	return req, nil
}

func (s *Store) UpdateRequest(ctx context.Context, req models.OverbookingRequest) error {
	res, err := s.Bun.NewUpdate().
		Model(&req).
		Column("status", "approved_by", "approved_at", "ticket_id", "reason").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update overbooking request: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return utils.NotFoundf("overbooking request %s not found", req.ID)
	}
	return nil
}

// ExpirePendingBefore flips overdue PENDING requests to EXPIRED in one
// bulk update.
func (s *Store) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Bun.NewUpdate().
		Model((*models.OverbookingRequest)(nil)).
		Set("status = ?", models.OverbookingExpired).
		Where("status = ?", models.OverbookingPending).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("expire overbooking requests: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
