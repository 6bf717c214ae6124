package mongo

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

const CollTeams = "photoshoot_teams"

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var t domain.Team
	if err := r.store.GetByID(ctx, CollTeams, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) Insert(ctx context.Context, t *domain.Team) error {
	return r.store.Insert(ctx, CollTeams, t)
}
