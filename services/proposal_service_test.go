package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hardik18-hk19/urbifix_backend/models"
)

func pendingProposalDoc(proposalID, bookingID, proposerID, responderID primitive.ObjectID, expiresAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: proposalID},
		{Key: "bookingId", Value: bookingID},
		{Key: "proposedBy", Value: proposerID},
		{Key: "proposedTo", Value: responderID},
		{Key: "proposalType", Value: models.ProposalTypePrice},
		{Key: "status", Value: models.ProposalStatusPending},
		{Key: "expiresAt", Value: expiresAt},
		{Key: "proposedChanges", Value: bson.D{{Key: "price", Value: 100.0}}},
	}
}

func TestRespondToExpiredProposalPersistsExpiry(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("overdue proposal is closed in the store, not just refused", func(mt *mtest.T) {
		proposalID := primitive.NewObjectID()
		bookingID := primitive.NewObjectID()
		proposerID := primitive.NewObjectID()
		responderID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "urbifix.proposals", mtest.FirstBatch,
				pendingProposalDoc(proposalID, bookingID, proposerID, responderID, time.Now().Add(-time.Hour))),
			// Expiry transition write.
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		svc := NewProposalService(mt.Client, newTestHub(), &brokenNotifier{})
		_, _, err := svc.Respond(context.Background(), proposalID, responderID, models.ProposalResponseRequest{
			Action: "accept",
		})

		appErr, ok := models.AsAppError(err)
		if !ok || appErr.Code != models.ErrCodeExpired {
			mt.Fatalf("Respond error = %v, want expired", err)
		}

		// The refusal alone is not enough; the store must now say expired
		// so later readers and the sweep agree.
		var persisted bool
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "update" && strings.Contains(evt.Command.String(), models.ProposalStatusExpired) {
				persisted = true
			}
		}
		if !persisted {
			mt.Error("no update marking the proposal expired was issued")
		}
	})
}

func TestRespondCounterReturnsClosedOriginal(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counter hands back the successor and the superseded original", func(mt *mtest.T) {
		proposalID := primitive.NewObjectID()
		bookingID := primitive.NewObjectID()
		proposerID := primitive.NewObjectID()
		responderID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "urbifix.proposals", mtest.FirstBatch,
				pendingProposalDoc(proposalID, bookingID, proposerID, responderID, time.Now().Add(time.Hour))),
			// Successor insert.
			mtest.CreateSuccessResponse(),
			// Original closed as countered.
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		svc := NewProposalService(mt.Client, newTestHub(), &brokenNotifier{})
		successor, original, err := svc.Respond(context.Background(), proposalID, responderID, models.ProposalResponseRequest{
			Action:          "counter",
			ResponseMessage: "Meet me halfway",
			CounterProposal: &models.ProposalData{Price: 90},
		})
		if err != nil {
			mt.Fatalf("Respond returned error: %v", err)
		}
		if successor == nil || original == nil {
			mt.Fatalf("Respond returned successor=%v original=%v, want both", successor, original)
		}

		if successor.ProposedBy != responderID || successor.ProposedTo != proposerID {
			mt.Error("successor parties were not swapped")
		}
		if successor.Supersedes == nil || *successor.Supersedes != proposalID {
			mt.Error("successor is not linked back to the original")
		}

		if original.ID != proposalID {
			mt.Errorf("original id = %s, want %s", original.ID.Hex(), proposalID.Hex())
		}
		if original.Status != models.ProposalStatusCountered {
			mt.Errorf("original status = %q, want %q", original.Status, models.ProposalStatusCountered)
		}
		if original.SupersededBy == nil || *original.SupersededBy != successor.ID {
			mt.Error("original is not linked forward to the successor")
		}
	})
}
