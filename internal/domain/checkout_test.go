package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApplication() RentalApplication {
	return RentalApplication{
		FullName:       "Nadia Karim",
		Email:          "nadia@example.com",
		Phone:          "+33612345678",
		Gender:         "female",
		DateOfBirth:    "1994-07-12",
		IdentityDocURL: "https://cdn.example.com/docs/passport.pdf",
	}
}

func TestRentalApplication_Validate(t *testing.T) {
	assert.Nil(t, validApplication().Validate())

	app := validApplication()
	app.Email = ""
	errs := app.Validate()
	require.NotNil(t, errs)
	assert.NotEmpty(t, errs["email"])
	assert.Len(t, errs, 1)

	app = validApplication()
	app.Email = "not-an-email"
	errs = app.Validate()
	require.NotNil(t, errs)
	assert.NotEmpty(t, errs["email"])

	app = validApplication()
	app.DateOfBirth = "12/07/1994"
	errs = app.Validate()
	require.NotNil(t, errs)
	assert.NotEmpty(t, errs["dateOfBirth"])

	errs = RentalApplication{}.Validate()
	require.NotNil(t, errs)
	for _, field := range []string{"fullName", "email", "phone", "gender", "dateOfBirth", "identityDoc"} {
		assert.NotEmpty(t, errs[field], field)
	}
}

func TestDraft_Navigation(t *testing.T) {
	now := time.Now()
	d := NewDraft(uuid.New(), uuid.New(), now)
	require.Equal(t, StepRentalApplication, d.Step)
	require.Equal(t, DraftSchemaVersion, d.SchemaVersion)

	// cannot regress past step 1
	assert.ErrorIs(t, d.Back(now), ErrInvalidTransition)

	require.NoError(t, d.Advance(now))
	assert.Equal(t, StepProtectionPlan, d.Step)

	require.NoError(t, d.Back(now))
	assert.Equal(t, StepRentalApplication, d.Step)

	require.NoError(t, d.Advance(now))
	require.NoError(t, d.Advance(now))
	require.NoError(t, d.Advance(now))
	assert.Equal(t, StepSuccess, d.Step)

	// terminal: neither direction
	assert.ErrorIs(t, d.Advance(now), ErrInvalidTransition)
	assert.ErrorIs(t, d.Back(now), ErrInvalidTransition)
}

func TestProtectionPlans(t *testing.T) {
	plans := ActiveProtectionPlans()
	require.Len(t, plans, 1)
	assert.Equal(t, "standard", plans[0].ID)

	_, ok := ProtectionPlanByID("standard")
	assert.True(t, ok)
	_, ok = ProtectionPlanByID("premium")
	assert.False(t, ok)
}

func TestNotificationTypeRoleEnum(t *testing.T) {
	assert.True(t, NotifTeamAssigned.ValidFor(RoleAdvertiser))
	assert.False(t, NotifTeamAssigned.ValidFor(RoleUser))
	assert.True(t, NotifReservationRejected.ValidFor(RoleUser))
	assert.False(t, NotifReservationRejected.ValidFor(RoleAdmin))

	_, err := NewNotification(uuid.New(), RoleUser, NotifTeamAssigned, "t", "m", "", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
