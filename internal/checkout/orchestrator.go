package checkout

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/payments"
)

// orderLockTTL bounds how long a confirm holds the per-order lock; a crash
// mid-confirm frees the order after this.
const orderLockTTL = 5 * time.Minute

type DraftStore interface {
	Save(ctx context.Context, d *domain.Draft) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SavePendingReservation(ctx context.Context, draftID uuid.UUID, res *domain.Reservation) error
	GetPendingReservation(ctx context.Context, draftID uuid.UUID) (*domain.Reservation, error)
	SetLastReservationID(ctx context.Context, tenantID, reservationID uuid.UUID) error
	GetLastReservationID(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error)
}

type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type ReservationCreator interface {
	Create(ctx context.Context, r *domain.Reservation) error
}

type DiscountFinder interface {
	GetUnattachedByTenant(ctx context.Context, tenantID uuid.UUID) (*domain.Discount, error)
	AttachToReservation(ctx context.Context, id, reservationID uuid.UUID) error
}

type PaymentInitiator interface {
	Initiate(ctx context.Context, req payments.InitiateRequest) (*payments.InitiateResult, error)
}

type OrderLocker interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID string) error
}

// Orchestrator drives the four-step checkout wizard. The draft is the only
// state between steps; nothing durable exists until Confirm creates the
// reservation.
type Orchestrator struct {
	drafts       DraftStore
	listings     ListingStore
	reservations ReservationCreator
	discounts    DiscountFinder
	payments     PaymentInitiator
	locks        OrderLocker
	clock        clock.Clock
	logger       observability.Logger

	returnURL   string
	callbackURL string
}

func NewOrchestrator(drafts DraftStore, listings ListingStore, reservations ReservationCreator, discounts DiscountFinder, pay PaymentInitiator, locks OrderLocker, clk clock.Clock, logger observability.Logger, returnURL, callbackURL string) *Orchestrator {
	return &Orchestrator{
		drafts:       drafts,
		listings:     listings,
		reservations: reservations,
		discounts:    discounts,
		payments:     pay,
		locks:        locks,
		clock:        clk,
		logger:       logger,
		returnURL:    returnURL,
		callbackURL:  callbackURL,
	}
}

// Start opens a draft at the rental application step. The listing is
// resolved up front so a dead listing id fails here, not three steps in.
func (o *Orchestrator) Start(ctx context.Context, tenantID, listingID uuid.UUID) (*domain.Draft, error) {
	if _, err := o.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	d := domain.NewDraft(tenantID, listingID, o.clock.Now())
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	observability.CheckoutsStarted.Inc()
	return d, nil
}

// Get resumes a draft, refusing drafts owned by someone else.
func (o *Orchestrator) Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	d, err := o.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.TenantID != tenantID {
		return nil, domain.ErrUnauthorized
	}
	return d, nil
}

// SubmitApplication validates step one and advances to plan selection.
func (o *Orchestrator) SubmitApplication(ctx context.Context, tenantID, draftID uuid.UUID, app domain.RentalApplication) (*domain.Draft, error) {
	d, err := o.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != domain.StepRentalApplication {
		return nil, domain.ErrInvalidTransition
	}
	if errs := app.Validate(); errs != nil {
		return nil, errs
	}

	now := o.clock.Now()
	d.Application = app
	if err := d.Advance(now); err != nil {
		return nil, err
	}
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SelectPlan records the protection plan choice, prices the draft, and
// advances to confirmation. The price is recomputed from the listing on
// every pass through this step, so going back and forward never shows a
// stale total.
func (o *Orchestrator) SelectPlan(ctx context.Context, tenantID, draftID uuid.UUID, planID string) (*domain.Draft, error) {
	d, err := o.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != domain.StepProtectionPlan {
		return nil, domain.ErrInvalidTransition
	}
	plan, ok := domain.ProtectionPlanByID(planID)
	if !ok {
		return nil, domain.ValidationErrors{"planId": "unknown protection plan"}
	}

	listing, err := o.listings.GetByID(ctx, d.ListingID)
	if err != nil {
		return nil, err
	}
	var discountCents int64
	if disc, err := o.discounts.GetUnattachedByTenant(ctx, tenantID); err == nil {
		discountCents = disc.AmountCents
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	price := domain.ComputePrice(listing.RentCents, listing.BrokerPct, discountCents, plan.FeeCents)

	now := o.clock.Now()
	d.PlanID = plan.ID
	d.Price = &price
	if err := d.Advance(now); err != nil {
		return nil, err
	}
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetPaymentDetails records the terms checkbox and chosen payment method
// on the confirmation step without moving the wizard.
func (o *Orchestrator) SetPaymentDetails(ctx context.Context, tenantID, draftID uuid.UUID, termsAccepted bool, paymentMethodID *uuid.UUID) (*domain.Draft, error) {
	d, err := o.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != domain.StepConfirmation {
		return nil, domain.ErrInvalidTransition
	}
	d.TermsAccepted = termsAccepted
	d.PaymentMethodID = paymentMethodID
	d.UpdatedAt = o.clock.Now()
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Back steps the wizard backward by one.
func (o *Orchestrator) Back(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	d, err := o.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if err := d.Back(o.clock.Now()); err != nil {
		return nil, err
	}
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ConfirmResult carries what the client needs to hand off to the gateway.
type ConfirmResult struct {
	Draft       *domain.Draft       `json:"draft"`
	Reservation *domain.Reservation `json:"reservation"`
	HTMLForm    string              `json:"htmlForm,omitempty"`
	Declined    string              `json:"declined,omitempty"`
}

// Confirm is the only step with side effects beyond the draft: it creates
// the pending reservation, spends the referral credit, and initiates the
// gateway payment. The order lock makes a double-submitted confirm a
// conflict instead of two reservations. A gateway decline leaves the draft
// on the confirmation step so the tenant can retry.
func (o *Orchestrator) Confirm(ctx context.Context, tenantID, draftID uuid.UUID) (*ConfirmResult, error) {
	d, err := o.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != domain.StepConfirmation {
		return nil, domain.ErrInvalidTransition
	}
	if !d.TermsAccepted {
		return nil, domain.ValidationErrors{"termsAccepted": "terms must be accepted"}
	}
	if d.PaymentMethodID == nil {
		return nil, domain.ValidationErrors{"paymentMethodId": "a payment method is required"}
	}
	if d.Price == nil {
		return nil, domain.ErrInvalidTransition
	}

	if d.OrderID == "" {
		d.OrderID = uuid.New().String()
		d.UpdatedAt = o.clock.Now()
		if err := o.drafts.Save(ctx, d); err != nil {
			return nil, err
		}
	}
	locked, err := o.locks.AcquireOrderLock(ctx, d.OrderID, orderLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, domain.ErrConflict
	}

	listing, err := o.listings.GetByID(ctx, d.ListingID)
	if err != nil {
		o.unlock(ctx, d.OrderID)
		return nil, err
	}

	// A retry after a declined payment reuses the reservation created on
	// the first pass instead of minting a second one.
	res, err := o.drafts.GetPendingReservation(ctx, draftID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		o.unlock(ctx, d.OrderID)
		return nil, err
	}
	now := o.clock.Now()
	if res == nil || res.OrderID != d.OrderID {
		res = domain.NewReservation(listing, tenantID, d.Application, d.PlanID, *d.Price, d.OrderID, now)
		res.PaymentMethodID = d.PaymentMethodID
		if err := o.reservations.Create(ctx, res); err != nil {
			o.unlock(ctx, d.OrderID)
			return nil, err
		}

		if d.Price.DiscountCents > 0 {
			if disc, derr := o.discounts.GetUnattachedByTenant(ctx, tenantID); derr == nil {
				if aerr := o.discounts.AttachToReservation(ctx, disc.ID, res.ID); aerr != nil {
					o.logger.WithField("discount_id", disc.ID.String()).WithError(aerr).Warn("attach discount")
				}
			}
		}

		// Snapshot before the gateway round trip: if the redirect never
		// comes back, the callback page can still recover the reservation.
		if err := o.drafts.SavePendingReservation(ctx, draftID, res); err != nil {
			o.logger.WithField("draft_id", draftID.String()).WithError(err).Warn("save pending reservation")
		}
		if err := o.drafts.SetLastReservationID(ctx, tenantID, res.ID); err != nil {
			o.logger.WithField("tenant_id", tenantID.String()).WithError(err).Warn("save last reservation")
		}
	}

	result, err := o.payments.Initiate(ctx, payments.InitiateRequest{
		AmountCents:   d.Price.TotalCents,
		Currency:      listing.Currency,
		OrderID:       d.OrderID,
		CustomerEmail: d.Application.Email,
		CustomerName:  d.Application.FullName,
		ReturnURL:     o.returnURL,
		CallbackURL:   o.callbackURL,
		Metadata:      map[string]string{"reservationId": res.ID.String()},
	})
	if err != nil {
		o.unlock(ctx, d.OrderID)
		return nil, err
	}
	if !result.Success {
		o.unlock(ctx, d.OrderID)
		return &ConfirmResult{Draft: d, Reservation: res, Declined: result.Error}, nil
	}

	if err := d.Advance(now); err != nil {
		return nil, err
	}
	if err := o.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	observability.CheckoutsConfirmed.Inc()

	return &ConfirmResult{Draft: d, Reservation: res, HTMLForm: result.HTMLForm}, nil
}

// PendingReservation exposes the pre-redirect snapshot for the gateway
// return page.
func (o *Orchestrator) PendingReservation(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Reservation, error) {
	res, err := o.drafts.GetPendingReservation(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if res.TenantID != tenantID {
		return nil, domain.ErrUnauthorized
	}
	return res, nil
}

// LastReservationID resolves the tenant's most recent confirmed
// reservation. The gateway return page lands without any draft context,
// so this is its way back to the reservation it just paid for.
func (o *Orchestrator) LastReservationID(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	return o.drafts.GetLastReservationID(ctx, tenantID)
}

// Abandon discards a draft and its snapshot. A reservation already created
// by a confirm attempt is untouched; left unanswered it expires on its own.
func (o *Orchestrator) Abandon(ctx context.Context, tenantID, draftID uuid.UUID) error {
	d, err := o.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if d.TenantID != tenantID {
		return domain.ErrUnauthorized
	}
	return o.drafts.Delete(ctx, draftID)
}

func (o *Orchestrator) unlock(ctx context.Context, orderID string) {
	if err := o.locks.ReleaseOrderLock(ctx, orderID); err != nil {
		o.logger.WithField("order_id", orderID).WithError(err).Warn("release order lock")
	}
}
