package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gotransit/internal/models"
	"gotransit/pkg/payment"
	"gotransit/pkg/providers"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryBookingRepo struct {
	records map[primitive.ObjectID]models.BookingRecord
	order   []primitive.ObjectID
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{records: make(map[primitive.ObjectID]models.BookingRecord)}
}

func (m *memoryBookingRepo) Create(ctx context.Context, record *models.BookingRecord) error {
	m.records[record.ID] = *record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *memoryBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BookingRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id.Hex())
	}
	return &record, nil
}

func (m *memoryBookingRepo) GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) ([]*models.BookingRecord, error) {
	var out []*models.BookingRecord
	for _, id := range m.order {
		record := m.records[id]
		if record.JourneyID == journeyID {
			copied := record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryBookingRepo) Update(ctx context.Context, record *models.BookingRecord) error {
	if _, ok := m.records[record.ID]; !ok {
		return fmt.Errorf("booking %s not found", record.ID.Hex())
	}
	m.records[record.ID] = *record
	return nil
}

type memoryPaymentRepo struct {
	payments map[primitive.ObjectID]models.ConsolidatedPayment
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: make(map[primitive.ObjectID]models.ConsolidatedPayment)}
}

func (m *memoryPaymentRepo) Create(ctx context.Context, pay *models.ConsolidatedPayment) error {
	m.payments[pay.ID] = *pay
	return nil
}

func (m *memoryPaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	pay, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", id.Hex())
	}
	return &pay, nil
}

func (m *memoryPaymentRepo) GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	for _, pay := range m.payments {
		if pay.JourneyID == journeyID {
			copied := pay
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("no payment for journey %s", journeyID.Hex())
}

func (m *memoryPaymentRepo) Update(ctx context.Context, pay *models.ConsolidatedPayment) error {
	if _, ok := m.payments[pay.ID]; !ok {
		return fmt.Errorf("payment %s not found", pay.ID.Hex())
	}
	m.payments[pay.ID] = *pay
	return nil
}

type fakeBooker struct {
	mode        models.TransportMode
	bookCalls   int
	cancelCalls []string
	ack         *providers.BookingAck
	bookErr     error
	cancelErr   error
}

func (f *fakeBooker) Mode() models.TransportMode { return f.mode }

func (f *fakeBooker) Book(ctx context.Context, segment models.Segment) (*providers.BookingAck, error) {
	f.bookCalls++
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	if f.ack != nil {
		return f.ack, nil
	}
	return &providers.BookingAck{Accepted: true, ProviderReference: "ref-" + segment.ID.Hex()[:8]}, nil
}

func (f *fakeBooker) Cancel(ctx context.Context, providerReference string) error {
	f.cancelCalls = append(f.cancelCalls, providerReference)
	return f.cancelErr
}

type fakeGateway struct {
	chargeCalls int
	response    *payment.ChargeResponse
	err         error
}

func (f *fakeGateway) Charge(ctx context.Context, request *payment.ChargeRequest) (*payment.ChargeResponse, error) {
	f.chargeCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &payment.ChargeResponse{
		TransactionID: "txn-1",
		Status:        payment.ChargeStatusPaid,
		Amount:        request.Amount,
		Currency:      request.Currency,
	}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	return &payment.RefundResponse{RefundID: "rfnd-1", Status: "processed", Amount: request.Amount}, nil
}

type bookingFixture struct {
	svc         BookingService
	store       *memoryJourneyStore
	bookingRepo *memoryBookingRepo
	paymentRepo *memoryPaymentRepo
	gateway     *fakeGateway
	bus         *fakeBooker
	auto        *fakeBooker
	journey     *models.Journey
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	store := newMemoryJourneyStore()
	bookingRepo := newMemoryBookingRepo()
	paymentRepo := newMemoryPaymentRepo()
	gateway := &fakeGateway{}
	bus := &fakeBooker{mode: models.ModeBus}
	auto := &fakeBooker{mode: models.ModeAuto}

	registry := providers.NewRegistry()
	registry.RegisterBooker(bus)
	registry.RegisterBooker(auto)

	journey := &models.Journey{
		ID: primitive.NewObjectID(),
		Segments: []models.Segment{
			quoted(models.ModeWalk, models.LegRoleFirstMile, planHome, planEntry, 8, 0),
			quoted(models.ModeBus, models.LegRoleMain, planEntry, planExit, 25, 30),
			quoted(models.ModeAuto, models.LegRoleLastMile, planExit, planDest, 6, 45),
		},
		CreatedAt: time.Now(),
	}
	if err := store.SaveJourney(context.Background(), journey); err != nil {
		t.Fatalf("failed to seed journey: %v", err)
	}

	svc := NewBookingService(store, registry, bookingRepo, paymentRepo, gateway, nil, "INR", 2, testLogger(t))

	return &bookingFixture{
		svc:         svc,
		store:       store,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		bus:         bus,
		auto:        auto,
		journey:     journey,
	}
}

func (f *bookingFixture) begin(t *testing.T) *models.BookingSet {
	t.Helper()
	set, err := f.svc.BeginBooking(context.Background(), f.journey.ID)
	if err != nil {
		t.Fatalf("BeginBooking failed: %v", err)
	}
	return set
}

func (f *bookingFixture) confirmAll(t *testing.T, set *models.BookingSet) {
	t.Helper()
	for _, record := range set.Records {
		if _, err := f.svc.ConfirmSegment(context.Background(), record.ID); err != nil {
			t.Fatalf("ConfirmSegment(%s) failed: %v", record.ID.Hex(), err)
		}
	}
}

func TestBeginBookingCreatesRecordsAndPayment(t *testing.T) {
	f := newBookingFixture(t)

	set := f.begin(t)

	if len(set.Records) != 2 {
		t.Fatalf("got %d records, want 2 (walk excluded)", len(set.Records))
	}
	for _, record := range set.Records {
		if record.Status != models.BookingStatusPending {
			t.Errorf("record %s status = %s, want pending", record.ID.Hex(), record.Status)
		}
		if record.Segment.Mode == models.ModeWalk {
			t.Error("walk segment got a booking record")
		}
	}

	if set.Payment == nil {
		t.Fatal("no consolidated payment created")
	}
	if set.Payment.Amount != 75 {
		t.Errorf("payment amount = %v, want 75 (bus 30 + auto 45)", set.Payment.Amount)
	}
	if set.Payment.Status != models.PaymentStatusPending {
		t.Errorf("payment status = %s, want pending", set.Payment.Status)
	}
}

func TestBeginBookingIsIdempotent(t *testing.T) {
	f := newBookingFixture(t)

	first := f.begin(t)
	second := f.begin(t)

	if len(second.Records) != len(first.Records) {
		t.Fatalf("second begin returned %d records, want %d", len(second.Records), len(first.Records))
	}
	if len(f.bookingRepo.order) != 2 {
		t.Errorf("repeated begin created %d records total, want 2", len(f.bookingRepo.order))
	}
	if second.Payment.ID != first.Payment.ID {
		t.Error("repeated begin created a second payment")
	}
}

func TestBeginBookingRejectsExpiredQuotes(t *testing.T) {
	f := newBookingFixture(t)

	f.journey.Segments[1].ValidUntil = time.Now().Add(-time.Minute)
	if err := f.store.SaveJourney(context.Background(), f.journey); err != nil {
		t.Fatalf("failed to update journey: %v", err)
	}

	_, err := f.svc.BeginBooking(context.Background(), f.journey.ID)
	var expired *models.QuoteExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("got %v, want QuoteExpiredError", err)
	}
	if len(f.bookingRepo.order) != 0 {
		t.Errorf("%d records created despite expired quotes", len(f.bookingRepo.order))
	}
}

func TestBeginSegmentBookingCoversOneSegment(t *testing.T) {
	f := newBookingFixture(t)

	busSegment := f.journey.Segments[1]
	set, err := f.svc.BeginSegmentBooking(context.Background(), f.journey.ID, busSegment.ID)
	if err != nil {
		t.Fatalf("BeginSegmentBooking failed: %v", err)
	}

	if len(set.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(set.Records))
	}
	if set.Records[0].SegmentID != busSegment.ID {
		t.Error("record does not reference the requested segment")
	}
	if set.Payment == nil || set.Payment.Amount != busSegment.Fare {
		t.Errorf("payment amount wrong for single-segment booking")
	}
	if set.JourneyID == f.journey.ID {
		t.Error("single-segment booking reused the full journey id")
	}
}

func TestConfirmSegmentIsIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)

	var busRecord models.BookingRecord
	for _, record := range set.Records {
		if record.Segment.Mode == models.ModeBus {
			busRecord = record
		}
	}

	first, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if first.Status != models.BookingStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", first.Status)
	}
	if first.ProviderReference == "" {
		t.Fatal("confirmed record has no provider reference")
	}

	second, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatalf("repeated confirm returned error: %v", err)
	}
	if second.ProviderReference != first.ProviderReference {
		t.Error("repeated confirm changed the provider reference")
	}
	if f.bus.bookCalls != 1 {
		t.Errorf("provider booked %d times, want 1", f.bus.bookCalls)
	}
}

func TestConfirmSegmentRejectionCompensatesSiblings(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)

	var busRecord, autoRecord models.BookingRecord
	for _, record := range set.Records {
		switch record.Segment.Mode {
		case models.ModeBus:
			busRecord = record
		case models.ModeAuto:
			autoRecord = record
		}
	}

	confirmed, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatalf("bus confirm failed: %v", err)
	}

	f.auto.ack = &providers.BookingAck{Accepted: false, Reason: "no vehicles"}
	_, err = f.svc.ConfirmSegment(context.Background(), autoRecord.ID)
	var rejected *models.ProviderRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("got %v, want ProviderRejectedError", err)
	}

	failed, err := f.bookingRepo.GetByID(context.Background(), autoRecord.ID)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != models.BookingStatusFailed {
		t.Errorf("rejected record status = %s, want failed", failed.Status)
	}

	pay, err := f.paymentRepo.GetByJourneyID(context.Background(), f.journey.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pay.Status != models.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed after segment failure", pay.Status)
	}

	if len(f.bus.cancelCalls) != 1 || f.bus.cancelCalls[0] != confirmed.ProviderReference {
		t.Errorf("confirmed sibling not cancelled: cancel calls %v", f.bus.cancelCalls)
	}
	cancelled, err := f.bookingRepo.GetByID(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.CancelledAt == nil {
		t.Error("cancelled sibling has no cancellation timestamp")
	}
}

func TestConfirmSegmentKeepsPendingOnTransportError(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)

	var busRecord models.BookingRecord
	for _, record := range set.Records {
		if record.Segment.Mode == models.ModeBus {
			busRecord = record
		}
	}

	f.bus.bookErr = errors.New("connection refused")
	if _, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID); err == nil {
		t.Fatal("confirm succeeded despite transport error")
	}

	record, err := f.bookingRepo.GetByID(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatal(err)
	}
	if record.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending after transport error", record.Status)
	}

	// Retry once the provider is back.
	f.bus.bookErr = nil
	confirmed, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed {
		t.Errorf("retry status = %s, want confirmed", confirmed.Status)
	}
}

func TestSettlePaymentRequiresAllConfirmations(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)

	if _, err := f.svc.SettlePayment(context.Background(), set.Payment.ID); err == nil {
		t.Fatal("settle succeeded with pending bookings")
	}
	if f.gateway.chargeCalls != 0 {
		t.Errorf("gateway charged %d times before confirmations", f.gateway.chargeCalls)
	}

	f.confirmAll(t, set)

	pay, err := f.svc.SettlePayment(context.Background(), set.Payment.ID)
	if err != nil {
		t.Fatalf("settle failed after confirmations: %v", err)
	}
	if pay.Status != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", pay.Status)
	}
	if pay.TransactionID == "" {
		t.Error("paid payment has no transaction id")
	}

	// Settling again must not charge twice.
	again, err := f.svc.SettlePayment(context.Background(), set.Payment.ID)
	if err != nil {
		t.Fatalf("repeated settle failed: %v", err)
	}
	if again.Status != models.PaymentStatusPaid {
		t.Errorf("repeated settle status = %s, want paid", again.Status)
	}
	if f.gateway.chargeCalls != 1 {
		t.Errorf("gateway charged %d times, want 1", f.gateway.chargeCalls)
	}
}

func TestSettlePaymentChargeFailure(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)
	f.confirmAll(t, set)

	f.gateway.response = &payment.ChargeResponse{
		Status:        payment.ChargeStatusFailed,
		FailureReason: "card declined",
	}

	_, err := f.svc.SettlePayment(context.Background(), set.Payment.ID)
	var failed *models.PaymentFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("got %v, want PaymentFailedError", err)
	}

	pay, err := f.paymentRepo.GetByID(context.Background(), set.Payment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pay.Status != models.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", pay.Status)
	}

	// Confirmed bookings stay confirmed; payment failure is not compensated
	// by cancelling transportation.
	records, err := f.bookingRepo.GetByJourneyID(context.Background(), f.journey.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, record := range records {
		if record.Status != models.BookingStatusConfirmed {
			t.Errorf("record %s status = %s after payment failure, want confirmed", record.ID.Hex(), record.Status)
		}
	}
}

func TestMarkPaymentSettled(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)
	f.confirmAll(t, set)

	if _, err := f.svc.MarkPaymentSettled(context.Background(), set.Payment.ID); err == nil {
		t.Fatal("settled a payment that was never paid")
	}

	if _, err := f.svc.SettlePayment(context.Background(), set.Payment.ID); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	pay, err := f.svc.MarkPaymentSettled(context.Background(), set.Payment.ID)
	if err != nil {
		t.Fatalf("MarkPaymentSettled failed: %v", err)
	}
	if pay.Status != models.PaymentStatusSettled {
		t.Errorf("payment status = %s, want settled", pay.Status)
	}
	if pay.SettledAt == nil {
		t.Error("settled payment has no settlement timestamp")
	}

	// Idempotent.
	again, err := f.svc.MarkPaymentSettled(context.Background(), set.Payment.ID)
	if err != nil {
		t.Fatalf("repeated MarkPaymentSettled failed: %v", err)
	}
	if again.Status != models.PaymentStatusSettled {
		t.Errorf("repeated settle status = %s, want settled", again.Status)
	}
}

func TestConfirmExpiredSegmentFails(t *testing.T) {
	f := newBookingFixture(t)
	set := f.begin(t)

	var busRecord models.BookingRecord
	for _, record := range set.Records {
		if record.Segment.Mode == models.ModeBus {
			busRecord = record
		}
	}

	stale := f.bookingRepo.records[busRecord.ID]
	stale.Segment.ValidUntil = time.Now().Add(-time.Minute)
	f.bookingRepo.records[busRecord.ID] = stale

	_, err := f.svc.ConfirmSegment(context.Background(), busRecord.ID)
	var expired *models.QuoteExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("got %v, want QuoteExpiredError", err)
	}
	if f.bus.bookCalls != 0 {
		t.Errorf("provider called %d times for an expired quote, want 0", f.bus.bookCalls)
	}

	record, err := f.bookingRepo.GetByID(context.Background(), busRecord.ID)
	if err != nil {
		t.Fatal(err)
	}
	if record.Status != models.BookingStatusFailed {
		t.Errorf("status = %s, want failed", record.Status)
	}
}
