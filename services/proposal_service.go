package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hardik18-hk19/urbifix_backend/config"
	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// ProposalService runs the structured negotiation flow: bundled change
// proposals against a booking with a bounded lifetime, an append-only
// history, and counter chains that supersede rather than reopen.
type ProposalService struct {
	db            *mongo.Client
	hub           *websocket.Hub
	notifications Notifier
}

func NewProposalService(db *mongo.Client, hub *websocket.Hub, notifications Notifier) *ProposalService {
	return &ProposalService{db: db, hub: hub, notifications: notifications}
}

func (s *ProposalService) proposals() *mongo.Collection {
	return config.GetCollection(s.db, "proposals")
}

func (s *ProposalService) bookings() *mongo.Collection {
	return config.GetCollection(s.db, "bookings")
}

// Create opens a new proposal against a booking. Only a booking party can
// propose, the recipient is always the other party, and proposals are
// only valid while the booking is still being negotiated.
func (s *ProposalService) Create(ctx context.Context, proposerID primitive.ObjectID, req models.CreateProposalRequest) (*models.Proposal, error) {
	bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
	if err != nil {
		return nil, models.NewValidation("invalid booking id")
	}

	if !models.ValidProposalType(req.ProposalType) {
		return nil, models.NewValidation("invalid proposal type: " + req.ProposalType)
	}
	if req.ProposedChanges.IsEmpty() {
		return nil, models.NewValidation("proposed changes cannot be empty")
	}

	var booking models.Booking
	err = s.bookings().FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("booking", req.BookingID)
	}
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(proposerID) {
		return nil, models.NewForbidden("booking", req.BookingID, "create proposal")
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusNegotiating {
		return nil, models.NewInvalidState("booking", req.BookingID, "create proposal", booking.Status)
	}

	expirationHours := req.ExpirationHours
	if expirationHours == 0 {
		expirationHours = 24
	}
	if expirationHours < models.MinProposalExpirationHours {
		expirationHours = models.MinProposalExpirationHours
	}
	if expirationHours > models.MaxProposalExpirationHours {
		expirationHours = models.MaxProposalExpirationHours
	}

	now := time.Now()
	proposal := &models.Proposal{
		ID:           primitive.NewObjectID(),
		BookingID:    bookingID,
		ProposedBy:   proposerID,
		ProposedTo:   booking.OtherParty(proposerID),
		ProposalType: req.ProposalType,
		OriginalData: models.ProposalData{
			Price:         booking.TotalAmount,
			ScheduledDate: &booking.ScheduledDate,
			TotalAmount:   booking.TotalAmount,
		},
		ProposedChanges: req.ProposedChanges,
		Justification:   req.Justification,
		Status:          models.ProposalStatusPending,
		ExpiresAt:       now.Add(time.Duration(expirationHours) * time.Hour),
		NegotiationHistory: []models.ProposalHistoryEntry{{
			Action:      "created",
			PerformedBy: proposerID,
			Message:     req.Justification,
			Timestamp:   now,
			Snapshot:    &req.ProposedChanges,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.proposals().InsertOne(ctx, proposal); err != nil {
		return nil, err
	}

	// First proposal moves the booking out of pending.
	if booking.Status == models.BookingStatusPending {
		_, err = s.bookings().UpdateOne(ctx,
			bson.M{"_id": bookingID, "status": models.BookingStatusPending},
			bson.M{"$set": bson.M{"status": models.BookingStatusNegotiating, "updatedAt": now}},
		)
		if err != nil {
			return nil, err
		}
	}

	s.notifications.NotifyProposalReceived(ctx, proposal)
	return proposal, nil
}

// GetByID returns a proposal visible to the requester. Reading an expired
// pending proposal lazily marks it expired first.
func (s *ProposalService) GetByID(ctx context.Context, proposalID, requesterID primitive.ObjectID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.proposals().FindOne(ctx, bson.M{"_id": proposalID}).Decode(&proposal)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("proposal", proposalID.Hex())
	}
	if err != nil {
		return nil, err
	}
	if proposal.ProposedBy != requesterID && proposal.ProposedTo != requesterID {
		return nil, models.NewForbidden("proposal", proposalID.Hex(), "view")
	}

	if proposal.Status == models.ProposalStatusPending && proposal.IsExpired(time.Now()) {
		if err := s.markExpired(ctx, &proposal); err != nil {
			return nil, err
		}
	}
	return &proposal, nil
}

// Respond handles accept, reject and counter from the proposal recipient.
// The first return value is the proposal the responder now holds: the
// resolved original for accept and reject, the fresh successor for
// counter. For counter the closed original comes back as the second
// value so callers can hand both to the client.
func (s *ProposalService) Respond(ctx context.Context, proposalID, responderID primitive.ObjectID, req models.ProposalResponseRequest) (*models.Proposal, *models.Proposal, error) {
	var proposal models.Proposal
	err := s.proposals().FindOne(ctx, bson.M{"_id": proposalID}).Decode(&proposal)
	if err == mongo.ErrNoDocuments {
		return nil, nil, models.NewNotFound("proposal", proposalID.Hex())
	}
	if err != nil {
		return nil, nil, err
	}

	if proposal.ProposedTo != responderID {
		return nil, nil, models.NewForbidden("proposal", proposalID.Hex(), "respond")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, nil, models.NewInvalidState("proposal", proposalID.Hex(), req.Action, proposal.Status)
	}

	now := time.Now()
	if proposal.IsExpired(now) {
		if err := s.markExpired(ctx, &proposal); err != nil {
			return nil, nil, err
		}
		return nil, nil, models.NewExpired("proposal", proposalID.Hex(), req.Action)
	}

	switch req.Action {
	case "accept":
		accepted, err := s.accept(ctx, &proposal, responderID, req.ResponseMessage, now)
		return accepted, nil, err
	case "reject":
		rejected, err := s.resolve(ctx, &proposal, responderID, models.ProposalStatusRejected, "rejected", req.ResponseMessage, now, nil)
		return rejected, nil, err
	case "counter":
		return s.counter(ctx, &proposal, req, now)
	default:
		return nil, nil, models.NewValidation("action must be 'accept', 'reject' or 'counter'")
	}
}

// accept resolves the proposal and applies its changes to the booking in
// one transaction. The status filter on the proposal update makes the
// whole operation first-responder-wins.
func (s *ProposalService) accept(ctx context.Context, proposal *models.Proposal, responderID primitive.ObjectID, responseMessage string, now time.Time) (*models.Proposal, error) {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"_id": proposal.BookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("booking", proposal.BookingID.Hex())
	}
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusConfirmed &&
		!models.CanTransitionBooking(booking.Status, models.BookingStatusConfirmed) {
		return nil, models.NewInvalidTransition("booking", booking.ID.Hex(), booking.Status, models.BookingStatusConfirmed)
	}

	bookingUpdate := bson.M{
		"status":                       models.BookingStatusConfirmed,
		"negotiationData.isNegotiated": true,
		"updatedAt":                    now,
	}
	bookingPush := bson.M{}
	changes := proposal.ProposedChanges
	price := changes.Price
	if changes.TotalAmount > 0 {
		price = changes.TotalAmount
	}
	if price > 0 {
		bookingUpdate["negotiatedAmount"] = price
		bookingUpdate["totalAmount"] = price
		bookingPush["negotiationData.priceHistory"] = models.PriceHistoryEntry{
			Amount:     price,
			ProposedBy: proposal.ProposedBy,
			ProposedAt: now,
			Message:    proposal.Justification,
		}
	}
	if changes.ScheduledDate != nil {
		bookingUpdate["scheduledDate"] = *changes.ScheduledDate
		bookingPush["negotiationData.scheduleHistory"] = models.ScheduleHistoryEntry{
			ScheduledDate: *changes.ScheduledDate,
			ProposedBy:    proposal.ProposedBy,
			ProposedAt:    now,
			Reason:        proposal.Justification,
		}
	}
	if changes.Requirements != "" {
		bookingUpdate["notes"] = changes.Requirements
		bookingPush["negotiationData.requirementHistory"] = models.RequirementHistoryEntry{
			Requirements: changes.Requirements,
			ProposedBy:   proposal.ProposedBy,
			ProposedAt:   now,
		}
	}
	bookingWrite := bson.M{"$set": bookingUpdate}
	if len(bookingPush) > 0 {
		bookingWrite["$push"] = bookingPush
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	historyEntry := models.ProposalHistoryEntry{
		Action:      "accepted",
		PerformedBy: responderID,
		Message:     responseMessage,
		Timestamp:   now,
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := s.proposals().UpdateOne(sc,
			bson.M{"_id": proposal.ID, "status": models.ProposalStatusPending},
			bson.M{
				"$set": bson.M{
					"status":          models.ProposalStatusAccepted,
					"responseMessage": responseMessage,
					"updatedAt":       now,
				},
				"$push": bson.M{"negotiationHistory": historyEntry},
			},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, models.NewInvalidState("proposal", proposal.ID.Hex(), "accept", "resolved")
		}

		_, err = s.bookings().UpdateOne(sc, bson.M{"_id": proposal.BookingID}, bookingWrite)
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	proposal.Status = models.ProposalStatusAccepted
	proposal.ResponseMessage = responseMessage
	proposal.NegotiationHistory = append(proposal.NegotiationHistory, historyEntry)
	proposal.UpdatedAt = now

	s.notifications.NotifyProposalResponse(ctx, proposal, "accepted")
	s.notifications.NotifyBookingStatusChange(ctx, booking.ID, proposal.ProposedBy, models.BookingStatusConfirmed)
	return proposal, nil
}

// resolve applies a terminal status that touches only the proposal itself.
func (s *ProposalService) resolve(ctx context.Context, proposal *models.Proposal, actorID primitive.ObjectID, status, action, message string, now time.Time, supersededBy *primitive.ObjectID) (*models.Proposal, error) {
	historyEntry := models.ProposalHistoryEntry{
		Action:      action,
		PerformedBy: actorID,
		Message:     message,
		Timestamp:   now,
	}

	set := bson.M{
		"status":          status,
		"responseMessage": message,
		"updatedAt":       now,
	}
	if supersededBy != nil {
		set["supersededBy"] = *supersededBy
	}

	result, err := s.proposals().UpdateOne(ctx,
		bson.M{"_id": proposal.ID, "status": models.ProposalStatusPending},
		bson.M{"$set": set, "$push": bson.M{"negotiationHistory": historyEntry}},
	)
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 0 {
		return nil, models.NewInvalidState("proposal", proposal.ID.Hex(), action, "resolved")
	}

	proposal.Status = status
	proposal.ResponseMessage = message
	proposal.SupersededBy = supersededBy
	proposal.NegotiationHistory = append(proposal.NegotiationHistory, historyEntry)
	proposal.UpdatedAt = now

	if action == "rejected" {
		s.notifications.NotifyProposalResponse(ctx, proposal, "rejected")
	}
	return proposal, nil
}

// counter closes the original as countered and opens a successor with the
// parties swapped and a fresh window. Returns the successor together with
// the closed original.
func (s *ProposalService) counter(ctx context.Context, proposal *models.Proposal, req models.ProposalResponseRequest, now time.Time) (*models.Proposal, *models.Proposal, error) {
	if req.CounterProposal == nil || req.CounterProposal.IsEmpty() {
		return nil, nil, models.NewValidation("counter proposal data is required")
	}

	successor := models.NewCounterProposal(proposal, *req.CounterProposal, req.ResponseMessage, now)

	if _, err := s.proposals().InsertOne(ctx, successor); err != nil {
		return nil, nil, err
	}

	if _, err := s.resolve(ctx, proposal, successor.ProposedBy, models.ProposalStatusCountered, "countered", req.ResponseMessage, now, &successor.ID); err != nil {
		// The successor exists but the original could not be closed,
		// most likely a concurrent responder. Withdraw the successor.
		if _, derr := s.proposals().DeleteOne(ctx, bson.M{"_id": successor.ID}); derr != nil {
			log.Printf("proposal: failed to withdraw orphaned counter %s: %v", successor.ID.Hex(), derr)
		}
		return nil, nil, err
	}

	s.notifications.NotifyProposalResponse(ctx, proposal, "countered")
	s.notifications.NotifyProposalReceived(ctx, successor)
	return successor, proposal, nil
}

// Cancel withdraws a pending proposal. Only its creator may cancel.
func (s *ProposalService) Cancel(ctx context.Context, proposalID, requesterID primitive.ObjectID, reason string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.proposals().FindOne(ctx, bson.M{"_id": proposalID}).Decode(&proposal)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("proposal", proposalID.Hex())
	}
	if err != nil {
		return nil, err
	}

	if proposal.ProposedBy != requesterID {
		return nil, models.NewForbidden("proposal", proposalID.Hex(), "cancel")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, models.NewInvalidState("proposal", proposalID.Hex(), "cancel", proposal.Status)
	}

	return s.resolve(ctx, &proposal, requesterID, models.ProposalStatusCancelled, "cancelled", reason, time.Now(), nil)
}

// ListForBooking returns a booking's proposals, newest first.
func (s *ProposalService) ListForBooking(ctx context.Context, bookingID, requesterID primitive.ObjectID, status string) ([]models.Proposal, error) {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("booking", bookingID.Hex())
	}
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(requesterID) {
		return nil, models.NewForbidden("booking", bookingID.Hex(), "list proposals")
	}

	filter := bson.M{"bookingId": bookingID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.proposals().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var proposals []models.Proposal
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// ListForUser returns the user's proposals by direction: "sent",
// "received" or "all".
func (s *ProposalService) ListForUser(ctx context.Context, userID primitive.ObjectID, direction, status string, page, limit int) ([]models.Proposal, *models.Pagination, error) {
	var filter bson.M
	switch direction {
	case "sent":
		filter = bson.M{"proposedBy": userID}
	case "received":
		filter = bson.M{"proposedTo": userID}
	case "", "all":
		filter = bson.M{"$or": []bson.M{{"proposedBy": userID}, {"proposedTo": userID}}}
	default:
		return nil, nil, models.NewValidation("direction must be 'sent', 'received' or 'all'")
	}
	if status != "" {
		filter["status"] = status
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := s.proposals().CountDocuments(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.proposals().Find(ctx, filter, opts)
	if err != nil {
		return nil, nil, err
	}
	var proposals []models.Proposal
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, nil, err
	}

	pagination := &models.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}
	return proposals, pagination, nil
}

// markExpired records the expiry transition observed at read time.
func (s *ProposalService) markExpired(ctx context.Context, proposal *models.Proposal) error {
	now := time.Now()
	historyEntry := models.ProposalHistoryEntry{
		Action:      "expired",
		PerformedBy: proposal.ProposedBy,
		Timestamp:   now,
	}
	_, err := s.proposals().UpdateOne(ctx,
		bson.M{"_id": proposal.ID, "status": models.ProposalStatusPending},
		bson.M{
			"$set":  bson.M{"status": models.ProposalStatusExpired, "updatedAt": now},
			"$push": bson.M{"negotiationHistory": historyEntry},
		},
	)
	if err != nil {
		return err
	}
	proposal.Status = models.ProposalStatusExpired
	proposal.NegotiationHistory = append(proposal.NegotiationHistory, historyEntry)
	proposal.UpdatedAt = now
	return nil
}

// ExpireSweep marks every overdue pending proposal expired. Run it
// periodically so clients that never re-read a proposal still see it
// close.
func (s *ProposalService) ExpireSweep(ctx context.Context) (int64, error) {
	now := time.Now()
	result, err := s.proposals().UpdateMany(ctx,
		bson.M{"status": models.ProposalStatusPending, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.ProposalStatusExpired, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	if result.ModifiedCount > 0 {
		log.Printf("proposal: expired %d overdue proposals", result.ModifiedCount)
	}
	return result.ModifiedCount, nil
}
