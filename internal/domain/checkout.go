package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DraftSchemaVersion is bumped whenever the persisted draft layout changes;
// the draft store refuses to resume drafts written by an older schema.
const DraftSchemaVersion = 1

type CheckoutStep int

const (
	StepRentalApplication CheckoutStep = 1
	StepProtectionPlan    CheckoutStep = 2
	StepConfirmation      CheckoutStep = 3
	StepSuccess           CheckoutStep = 4
)

func (s CheckoutStep) IsValid() bool {
	return s >= StepRentalApplication && s <= StepSuccess
}

type RentalApplication struct {
	FullName       string `bson:"full_name" json:"fullName"`
	Email          string `bson:"email" json:"email"`
	Phone          string `bson:"phone" json:"phone"`
	Gender         string `bson:"gender" json:"gender"`
	DateOfBirth    string `bson:"date_of_birth" json:"dateOfBirth"`
	IdentityDocURL string `bson:"identity_doc_url" json:"identityDocUrl"`
}

func (a RentalApplication) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(a.FullName) == "" {
		errs["fullName"] = "name is required"
	}
	if strings.TrimSpace(a.Email) == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(a.Email); err != nil {
		errs["email"] = "email is malformed"
	}
	if strings.TrimSpace(a.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if strings.TrimSpace(a.Gender) == "" {
		errs["gender"] = "gender is required"
	}
	if strings.TrimSpace(a.DateOfBirth) == "" {
		errs["dateOfBirth"] = "date of birth is required"
	} else if _, err := time.Parse("2006-01-02", a.DateOfBirth); err != nil {
		errs["dateOfBirth"] = "date of birth must be YYYY-MM-DD"
	}
	if strings.TrimSpace(a.IdentityDocURL) == "" {
		errs["identityDoc"] = "identification document is required"
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// ProtectionPlan is a selectable cancellation/refund policy add-on.
type ProtectionPlan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FeeCents int64  `json:"feeCents"`
}

// ActiveProtectionPlans returns the plans offered at checkout. A single
// plan is live today; the premium tier was retired.
func ActiveProtectionPlans() []ProtectionPlan {
	return []ProtectionPlan{
		{ID: "standard", Name: "Standard Protection", FeeCents: 2500},
	}
}

func ProtectionPlanByID(id string) (ProtectionPlan, bool) {
	for _, p := range ActiveProtectionPlans() {
		if p.ID == id {
			return p, true
		}
	}
	return ProtectionPlan{}, false
}

// Draft is the single-writer checkpoint of an in-progress checkout. It is
// persisted after every step so a resumed session picks up where it left
// off.
type Draft struct {
	SchemaVersion   int               `json:"schemaVersion"`
	ID              uuid.UUID         `json:"id"`
	TenantID        uuid.UUID         `json:"tenantId"`
	ListingID       uuid.UUID         `json:"listingId"`
	Step            CheckoutStep      `json:"step"`
	Application     RentalApplication `json:"application"`
	PlanID          string            `json:"planId"`
	TermsAccepted   bool              `json:"termsAccepted"`
	PaymentMethodID *uuid.UUID        `json:"paymentMethodId,omitempty"`
	Price           *PriceBreakdown   `json:"price,omitempty"`
	OrderID         string            `json:"orderId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func NewDraft(tenantID, listingID uuid.UUID, now time.Time) *Draft {
	return &Draft{
		SchemaVersion: DraftSchemaVersion,
		ID:            uuid.New(),
		TenantID:      tenantID,
		ListingID:     listingID,
		Step:          StepRentalApplication,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Advance moves exactly one step forward. Step-specific preconditions are
// enforced by the orchestrator before calling this.
func (d *Draft) Advance(now time.Time) error {
	if d.Step >= StepSuccess {
		return ErrInvalidTransition
	}
	d.Step++
	d.UpdatedAt = now
	return nil
}

// Back moves exactly one step backward. The terminal step and the first
// step do not regress.
func (d *Draft) Back(now time.Time) error {
	if d.Step <= StepRentalApplication || d.Step == StepSuccess {
		return ErrInvalidTransition
	}
	d.Step--
	d.UpdatedAt = now
	return nil
}
