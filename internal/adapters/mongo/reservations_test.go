package mongo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	mongoadapter "github.com/stayloop/stayloop-server/internal/adapters/mongo"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// capturedSet runs the update against a mocked connection and returns the
// $set document that went over the wire.
func capturedSet(mt *mtest.T, res *domain.Reservation) bson.Raw {
	mt.Helper()
	mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

	store := mongoadapter.NewStore(mt.DB, observability.NewLogger())
	repo := mongoadapter.NewReservationRepository(store)
	require.NoError(mt, repo.Update(context.Background(), res))

	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)
	return evt.Command.Lookup("updates").Array().Index(0).Value().Document().Lookup("u").Document().Lookup("$set").Document()
}

func paidReservation(transactionID string) *domain.Reservation {
	listing := &domain.Listing{ID: uuid.New(), AdvertiserID: uuid.New(), RentCents: 100000}
	res := domain.NewReservation(listing, uuid.New(), domain.RentalApplication{}, "standard", domain.PriceBreakdown{TotalCents: 125000}, "ord-1", time.Now().UTC())
	res.Status = domain.ReservationPaid
	res.TransactionID = transactionID
	return res
}

func TestReservationRepository_UpdatePersistsTransactionID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("transaction id rides the update", func(mt *mtest.T) {
		set := capturedSet(mt, paidReservation("tx-100"))

		val, err := set.LookupErr("transaction_id")
		require.NoError(mt, err)
		assert.Equal(mt, "tx-100", val.StringValue())

		status, err := set.LookupErr("status")
		require.NoError(mt, err)
		assert.Equal(mt, string(domain.ReservationPaid), status.StringValue())
	})

	mt.Run("absent transaction id is not cleared", func(mt *mtest.T) {
		set := capturedSet(mt, paidReservation(""))

		_, err := set.LookupErr("transaction_id")
		assert.Error(mt, err)
	})
}
