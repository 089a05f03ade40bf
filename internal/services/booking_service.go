package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gotransit/internal/models"
	"gotransit/internal/repositories/interfaces"
	"gotransit/pkg/logger"
	"gotransit/pkg/payment"
	"gotransit/pkg/providers"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier pushes booking snapshots to observers. The websocket hub
// implements it; a nil notifier disables pushes.
type Notifier interface {
	BroadcastBookingUpdate(journeyID string, set *models.BookingSet)
}

// BookingService turns a selected journey into committed transportation. It
// owns every BookingRecord and ConsolidatedPayment; readers only ever see
// snapshots. It never synthesizes a successful booking locally — a segment is
// confirmed solely on the provider's acknowledgment.
type BookingService interface {
	BeginBooking(ctx context.Context, journeyID primitive.ObjectID) (*models.BookingSet, error)
	BeginSegmentBooking(ctx context.Context, journeyID, segmentID primitive.ObjectID) (*models.BookingSet, error)
	ConfirmSegment(ctx context.Context, bookingID primitive.ObjectID) (*models.BookingRecord, error)
	SettlePayment(ctx context.Context, paymentID primitive.ObjectID) (*models.ConsolidatedPayment, error)
	MarkPaymentSettled(ctx context.Context, paymentID primitive.ObjectID) (*models.ConsolidatedPayment, error)
	GetJourneyBookings(ctx context.Context, journeyID primitive.ObjectID) (*models.BookingSet, error)
}

type bookingService struct {
	store            JourneyStore
	registry         *providers.Registry
	bookingRepo      interfaces.BookingRepository
	paymentRepo      interfaces.PaymentRepository
	paymentProvider  payment.PaymentProvider
	notifier         Notifier
	currency         string
	cancelMaxRetries uint64
	logger           *logger.Logger

	// Serializes booking operations per journey so a double-submitted
	// beginBooking can never create a partially-initialized set.
	mu           sync.Mutex
	journeyLocks map[string]*sync.Mutex
}

func NewBookingService(
	store JourneyStore,
	registry *providers.Registry,
	bookingRepo interfaces.BookingRepository,
	paymentRepo interfaces.PaymentRepository,
	paymentProvider payment.PaymentProvider,
	notifier Notifier,
	currency string,
	cancelMaxRetries uint64,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		store:            store,
		registry:         registry,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		paymentProvider:  paymentProvider,
		notifier:         notifier,
		currency:         currency,
		cancelMaxRetries: cancelMaxRetries,
		logger:           log,
		journeyLocks:     make(map[string]*sync.Mutex),
	}
}

func (s *bookingService) BeginBooking(ctx context.Context, journeyID primitive.ObjectID) (*models.BookingSet, error) {
	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	return s.bookJourney(ctx, journey)
}

// BeginSegmentBooking books a single segment of a planned journey by lifting
// it into a one-segment sub-journey, so individual "book" actions flow
// through the same entry point as a full commitment.
func (s *bookingService) BeginSegmentBooking(ctx context.Context, journeyID, segmentID primitive.ObjectID) (*models.BookingSet, error) {
	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	segment, ok := journey.SegmentByID(segmentID)
	if !ok {
		return nil, fmt.Errorf("segment %s not part of journey %s", segmentID.Hex(), journeyID.Hex())
	}

	sub := &models.Journey{
		ID:        primitive.NewObjectID(),
		Segments:  []models.Segment{segment},
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveJourney(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to persist sub-journey: %w", err)
	}

	return s.bookJourney(ctx, sub)
}

func (s *bookingService) bookJourney(ctx context.Context, journey *models.Journey) (*models.BookingSet, error) {
	lock := s.journeyLock(journey.ID)
	lock.Lock()
	defer lock.Unlock()

	// A repeated submission for the same journey returns the set created by
	// the first one instead of double-booking.
	existing, err := s.bookingRepo.GetByJourneyID(ctx, journey.ID)
	if err == nil && len(existing) > 0 {
		return s.snapshot(ctx, journey.ID, existing), nil
	}

	if expired := journey.ExpiredSegments(time.Now()); len(expired) > 0 {
		return nil, &models.QuoteExpiredError{JourneyID: journey.ID, SegmentIDs: expired}
	}

	var records []*models.BookingRecord
	for _, segment := range journey.Segments {
		if segment.Mode == models.ModeWalk {
			continue
		}

		record := &models.BookingRecord{
			ID:        primitive.NewObjectID(),
			JourneyID: journey.ID,
			SegmentID: segment.ID,
			Segment:   segment,
			Status:    models.BookingStatusPending,
		}
		if err := s.bookingRepo.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to create booking record: %w", err)
		}
		records = append(records, record)

		s.logger.LogBookingEvent(record.ID, "booking_created", map[string]interface{}{
			"journey_id": journey.ID.Hex(),
			"mode":       string(segment.Mode),
		})
	}

	if len(records) > 0 {
		pay := &models.ConsolidatedPayment{
			ID:        primitive.NewObjectID(),
			JourneyID: journey.ID,
			Amount:    journey.PayableFare(),
			Currency:  s.currency,
			Status:    models.PaymentStatusPending,
		}
		if err := s.paymentRepo.Create(ctx, pay); err != nil {
			return nil, fmt.Errorf("failed to create consolidated payment: %w", err)
		}

		s.logger.LogPaymentEvent(pay.ID, "payment_created", pay.Amount, pay.Currency)
	}

	set := s.snapshot(ctx, journey.ID, records)
	s.broadcast(journey.ID, set)
	return set, nil
}

func (s *bookingService) ConfirmSegment(ctx context.Context, bookingID primitive.ObjectID) (*models.BookingRecord, error) {
	record, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lock := s.journeyLock(record.JourneyID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; another confirm may have raced us here.
	record, err = s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Terminal records replay their outcome without touching the provider.
	switch record.Status {
	case models.BookingStatusConfirmed:
		return copyRecord(record), nil
	case models.BookingStatusFailed:
		return copyRecord(record), &models.ProviderRejectedError{
			BookingID: record.ID,
			SegmentID: record.SegmentID,
			Reason:    record.FailureReason,
		}
	}

	if record.Segment.Expired(time.Now()) {
		s.failRecord(ctx, record, "quote validity window expired")
		s.handleSegmentFailure(ctx, record)
		return copyRecord(record), &models.QuoteExpiredError{
			JourneyID:  record.JourneyID,
			SegmentIDs: []primitive.ObjectID{record.SegmentID},
		}
	}

	booker, err := s.registry.Booker(record.Segment.Mode)
	if err != nil {
		return nil, err
	}

	ack, err := booker.Book(ctx, record.Segment)
	if err != nil {
		// Transport failure: the record stays pending and the caller may
		// retry once the provider is reachable again.
		return nil, fmt.Errorf("failed to confirm booking %s: %w", bookingID.Hex(), err)
	}

	if !ack.Accepted {
		s.failRecord(ctx, record, ack.Reason)
		s.handleSegmentFailure(ctx, record)
		return copyRecord(record), &models.ProviderRejectedError{
			BookingID: record.ID,
			SegmentID: record.SegmentID,
			Reason:    ack.Reason,
		}
	}

	now := time.Now()
	record.Status = models.BookingStatusConfirmed
	record.ProviderReference = ack.ProviderReference
	record.ConfirmedAt = &now
	if err := s.bookingRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist booking confirmation: %w", err)
	}

	s.logger.LogBookingEvent(record.ID, "booking_confirmed", map[string]interface{}{
		"provider_reference": ack.ProviderReference,
	})

	s.broadcastJourney(ctx, record.JourneyID)
	return copyRecord(record), nil
}

func (s *bookingService) SettlePayment(ctx context.Context, paymentID primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	lock := s.journeyLock(pay.JourneyID)
	lock.Lock()
	defer lock.Unlock()

	pay, err = s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch pay.Status {
	case models.PaymentStatusPaid, models.PaymentStatusSettled:
		return copyPayment(pay), nil
	case models.PaymentStatusFailed:
		return copyPayment(pay), &models.PaymentFailedError{PaymentID: pay.ID, Reason: pay.FailureReason}
	}

	records, err := s.bookingRepo.GetByJourneyID(ctx, pay.JourneyID)
	if err != nil {
		return nil, err
	}

	pendingCount := 0
	for _, record := range records {
		switch record.Status {
		case models.BookingStatusFailed:
			return copyPayment(pay), &models.PaymentFailedError{
				PaymentID: pay.ID,
				Reason:    fmt.Sprintf("segment booking %s failed", record.ID.Hex()),
			}
		case models.BookingStatusConfirmed:
		default:
			pendingCount++
		}
	}
	if pendingCount > 0 {
		return nil, fmt.Errorf("failed to settle payment %s: %d segment bookings not yet confirmed", paymentID.Hex(), pendingCount)
	}

	response, err := s.paymentProvider.Charge(ctx, &payment.ChargeRequest{
		PaymentID:   pay.ID.Hex(),
		Amount:      pay.Amount,
		Currency:    pay.Currency,
		Description: "Consolidated journey payment " + pay.JourneyID.Hex(),
		Metadata:    map[string]string{"journey_id": pay.JourneyID.Hex()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to charge payment %s: %w", paymentID.Hex(), err)
	}

	now := time.Now()
	switch response.Status {
	case payment.ChargeStatusPaid:
		pay.Status = models.PaymentStatusPaid
		pay.TransactionID = response.TransactionID
		pay.PaidAt = &now
	case payment.ChargeStatusPending:
		return nil, fmt.Errorf("charge for payment %s pending gateway confirmation", paymentID.Hex())
	default:
		pay.Status = models.PaymentStatusFailed
		pay.FailureReason = response.FailureReason
		pay.FailedAt = &now
	}

	if err := s.paymentRepo.Update(ctx, pay); err != nil {
		return nil, fmt.Errorf("failed to persist payment state: %w", err)
	}

	s.logger.LogPaymentEvent(pay.ID, "payment_"+string(pay.Status), pay.Amount, pay.Currency)
	s.broadcastJourney(ctx, pay.JourneyID)

	if pay.Status == models.PaymentStatusFailed {
		return copyPayment(pay), &models.PaymentFailedError{PaymentID: pay.ID, Reason: pay.FailureReason}
	}
	return copyPayment(pay), nil
}

// MarkPaymentSettled records the settlement acknowledgment from the payment
// collaborator's webhook. Only a paid payment can settle.
func (s *bookingService) MarkPaymentSettled(ctx context.Context, paymentID primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	lock := s.journeyLock(pay.JourneyID)
	lock.Lock()
	defer lock.Unlock()

	pay, err = s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch pay.Status {
	case models.PaymentStatusSettled:
		return copyPayment(pay), nil
	case models.PaymentStatusPaid:
		now := time.Now()
		pay.Status = models.PaymentStatusSettled
		pay.SettledAt = &now
		if err := s.paymentRepo.Update(ctx, pay); err != nil {
			return nil, fmt.Errorf("failed to persist settlement: %w", err)
		}
		s.logger.LogPaymentEvent(pay.ID, "payment_settled", pay.Amount, pay.Currency)
		return copyPayment(pay), nil
	default:
		return nil, fmt.Errorf("cannot settle payment %s in state %s", paymentID.Hex(), pay.Status)
	}
}

func (s *bookingService) GetJourneyBookings(ctx context.Context, journeyID primitive.ObjectID) (*models.BookingSet, error) {
	records, err := s.bookingRepo.GetByJourneyID(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	return s.snapshot(ctx, journeyID, records), nil
}

// handleSegmentFailure fails the consolidated payment and attempts a
// compensating cancellation of every already-confirmed sibling. Cancellation
// is best-effort: failures are recorded and reported, never retried forever.
func (s *bookingService) handleSegmentFailure(ctx context.Context, failed *models.BookingRecord) {
	pay, err := s.paymentRepo.GetByJourneyID(ctx, failed.JourneyID)
	if err == nil && (pay.Status == models.PaymentStatusPending || pay.Status == models.PaymentStatusPaid) {
		now := time.Now()
		pay.Status = models.PaymentStatusFailed
		pay.FailureReason = fmt.Sprintf("segment booking %s failed: %s", failed.ID.Hex(), failed.FailureReason)
		pay.FailedAt = &now
		if err := s.paymentRepo.Update(ctx, pay); err != nil {
			s.logger.WithPaymentID(pay.ID).WithError(err).Error("Failed to mark payment failed")
		} else {
			s.logger.LogPaymentEvent(pay.ID, "payment_failed", pay.Amount, pay.Currency)
		}
	}

	siblings, err := s.bookingRepo.GetByJourneyID(ctx, failed.JourneyID)
	if err != nil {
		s.logger.WithJourneyID(failed.JourneyID).WithError(err).Error("Failed to load siblings for compensation")
		return
	}

	for _, sibling := range siblings {
		if sibling.ID == failed.ID || sibling.Status != models.BookingStatusConfirmed || sibling.CancelledAt != nil {
			continue
		}
		s.cancelWithRetry(ctx, sibling)
	}

	s.broadcastJourney(ctx, failed.JourneyID)
}

func (s *bookingService) cancelWithRetry(ctx context.Context, record *models.BookingRecord) {
	booker, err := s.registry.Booker(record.Segment.Mode)
	if err != nil {
		s.logger.WithBookingID(record.ID).WithError(err).Error("No booking provider for compensation")
		return
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.cancelMaxRetries)
	err = backoff.Retry(func() error {
		return booker.Cancel(ctx, record.ProviderReference)
	}, backoff.WithContext(policy, ctx))

	if err != nil {
		record.CancellationError = err.Error()
		s.logger.WithBookingID(record.ID).WithError(err).Error("Compensating cancellation failed")
	} else {
		now := time.Now()
		record.CancelledAt = &now
		s.logger.LogBookingEvent(record.ID, "booking_cancelled", map[string]interface{}{
			"provider_reference": record.ProviderReference,
		})
	}

	if err := s.bookingRepo.Update(ctx, record); err != nil {
		s.logger.WithBookingID(record.ID).WithError(err).Error("Failed to persist cancellation state")
	}
}

func (s *bookingService) failRecord(ctx context.Context, record *models.BookingRecord, reason string) {
	now := time.Now()
	record.Status = models.BookingStatusFailed
	record.FailureReason = reason
	record.FailedAt = &now
	if err := s.bookingRepo.Update(ctx, record); err != nil {
		s.logger.WithBookingID(record.ID).WithError(err).Error("Failed to persist booking failure")
	}

	s.logger.LogBookingEvent(record.ID, "booking_failed", map[string]interface{}{
		"reason": reason,
	})
}

func (s *bookingService) snapshot(ctx context.Context, journeyID primitive.ObjectID, records []*models.BookingRecord) *models.BookingSet {
	set := &models.BookingSet{
		JourneyID: journeyID,
		Records:   make([]models.BookingRecord, 0, len(records)),
	}
	for _, record := range records {
		set.Records = append(set.Records, *record)
	}

	if pay, err := s.paymentRepo.GetByJourneyID(ctx, journeyID); err == nil {
		set.Payment = copyPayment(pay)
	}

	return set
}

func (s *bookingService) broadcastJourney(ctx context.Context, journeyID primitive.ObjectID) {
	records, err := s.bookingRepo.GetByJourneyID(ctx, journeyID)
	if err != nil {
		return
	}
	s.broadcast(journeyID, s.snapshot(ctx, journeyID, records))
}

func (s *bookingService) broadcast(journeyID primitive.ObjectID, set *models.BookingSet) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastBookingUpdate(journeyID.Hex(), set)
}

func (s *bookingService) journeyLock(journeyID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := journeyID.Hex()
	if s.journeyLocks[key] == nil {
		s.journeyLocks[key] = &sync.Mutex{}
	}
	return s.journeyLocks[key]
}

func copyRecord(record *models.BookingRecord) *models.BookingRecord {
	c := *record
	return &c
}

func copyPayment(pay *models.ConsolidatedPayment) *models.ConsolidatedPayment {
	c := *pay
	return &c
}
