package trips

import (
	"context"
	"database/sql"
	"errors"

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

func (s *Store) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := s.Bun.NewSelect().
		Model(&trip).
		Relation("Bus").
		Relation("Route").
		Where("trip.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("trip %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *Store) TripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	var list []models.Trip
	err := s.Bun.NewSelect().
		Model(&list).
		Where("status = ?", status).
		Order("departure_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdateTripStatus(ctx context.Context, id string, status models.TripStatus) error {
	res, err := s.Bun.NewUpdate().
		Model((*models.Trip)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.NotFoundf("trip %s", id)
	}
	return nil
}
