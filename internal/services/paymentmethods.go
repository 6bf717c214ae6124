package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
)

// PaymentMethodService keeps the at-most-one-default invariant per user:
// the first stored method becomes the default, and promoting another one
// demotes whatever held the flag before.
type PaymentMethodService struct {
	methods PaymentMethodStore
	clock   clock.Clock
}

func NewPaymentMethodService(methods PaymentMethodStore, clk clock.Clock) *PaymentMethodService {
	return &PaymentMethodService{methods: methods, clock: clk}
}

func (s *PaymentMethodService) Add(ctx context.Context, userID uuid.UUID, pm domain.PaymentMethod) (*domain.PaymentMethod, error) {
	pm.ID = uuid.New()
	pm.UserID = userID
	pm.CreatedAt = s.clock.Now()
	if errs := pm.Validate(); errs != nil {
		return nil, errs
	}

	existing, err := s.methods.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pm.IsDefault = len(existing) == 0

	if err := s.methods.Insert(ctx, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (s *PaymentMethodService) List(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	return s.methods.ListByUser(ctx, userID)
}

// SetDefault clears the flag across the user's methods before setting it,
// so a crash between the two steps leaves zero defaults rather than two.
func (s *PaymentMethodService) SetDefault(ctx context.Context, userID, methodID uuid.UUID) error {
	pm, err := s.methods.GetByID(ctx, methodID)
	if err != nil {
		return err
	}
	if pm.UserID != userID {
		return domain.ErrUnauthorized
	}
	if err := s.methods.ClearDefaults(ctx, userID); err != nil {
		return err
	}
	return s.methods.SetDefaultFlag(ctx, methodID, userID)
}
