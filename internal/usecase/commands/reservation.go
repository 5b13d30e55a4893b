package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rentflow/internal/domain/availability"
	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/domain/tax"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/notify"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/pkg/config"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/pkg/geo"
	"rentflow/internal/pkg/money"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CreateItemInput struct {
	ProductID           *uuid.UUID
	IsCustomItem        bool
	Name                string
	Quantity            int
	UnitPrice           float64
	ManualPriceOverride bool
	Attributes          map[string]string
	ClaimedTotal        float64
}

type DeliveryInput struct {
	Address    string
	Lat        float64
	Lng        float64
	ClaimedFee float64
}

// CreateReservationInput carries the booking request. The three amount
// fields are advisory: the engine recomputes everything and only logs
// divergence. ActorIsStaff comes from the authenticated role, never from
// the request body; only staff may submit custom items or price overrides.
type CreateReservationInput struct {
	StoreID        uuid.UUID
	CustomerID     uuid.UUID
	ActorIsStaff   bool
	StartDate      time.Time
	EndDate        time.Time
	Items          []CreateItemInput
	CustomerNotes  string
	Locale         string
	SubtotalAmount float64
	DepositAmount  float64
	TotalAmount    float64
	Delivery       *DeliveryInput
}

type CreateReservationResult struct {
	ReservationID     uuid.UUID
	ReservationNumber string
	PaymentURL        *string
	IsReplayed        bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, input CreateReservationInput, idempotencyKey uuid.UUID) (*CreateReservationResult, error)
}

type reservationEngine struct {
	stores     StoreReads
	products   ProductReads
	holds      AvailabilityReads
	resReads   ReservationReads
	resWrites  ReservationWrites
	activities ActivityWrites
	idem       IdempotencyRepository
	provider   PaymentProvider
	dispatcher notify.Dispatcher
	allocator  availability.Allocator
	pool       *pgxpool.Pool
	clock      clock.Clock
	booking    config.BookingConfig
	stripe     config.StripeConfig
}

func NewReservationEngine(
	stores StoreReads,
	products ProductReads,
	holds AvailabilityReads,
	resReads ReservationReads,
	resWrites ReservationWrites,
	activities ActivityWrites,
	idem IdempotencyRepository,
	provider PaymentProvider,
	dispatcher notify.Dispatcher,
	pool *pgxpool.Pool,
	clk clock.Clock,
	cfg config.Config,
) ReservationCommands {
	return &reservationEngine{
		stores:     stores,
		products:   products,
		holds:      holds,
		resReads:   resReads,
		resWrites:  resWrites,
		activities: activities,
		idem:       idem,
		provider:   provider,
		dispatcher: dispatcher,
		allocator:  availability.GreedyAllocator{},
		pool:       pool,
		clock:      clk,
		booking:    cfg.Booking,
		stripe:     cfg.Stripe,
	}
}

func (e *reservationEngine) CreateReservation(ctx context.Context, input CreateReservationInput, idempotencyKey uuid.UUID) (*CreateReservationResult, error) {
	if err := validateActorPricing(input); err != nil {
		return nil, err
	}

	requestHash := hashRequest(input)
	expiresAt := e.clock.Now().Add(24 * time.Hour)

	replayed, err := e.handleIdempotency(ctx, idempotencyKey, input.CustomerID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	return e.createNewReservation(ctx, input, idempotencyKey)
}

func (e *reservationEngine) handleIdempotency(ctx context.Context, key, customerID uuid.UUID, requestHash string, expiresAt time.Time) (*CreateReservationResult, error) {
	inserted, err := e.idem.TryInsert(ctx, key, customerID, "POST /reservations", requestHash, expiresAt)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if inserted {
		// This call owns the key; proceed with creation.
		return nil, nil
	}

	existing, err := e.idem.Get(ctx, key, customerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	switch existing.Status {
	case "completed":
		// Replay is only safe for the same payload; a reused key with a
		// different body is a client bug, not a retry.
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateRequest
		}
		if existing.ResultReservationID == nil {
			return nil, errs.New("completed request missing result reservation ID")
		}
		res, err := e.resReads.FindByID(ctx, nil, *existing.ResultReservationID)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return &CreateReservationResult{
			ReservationID:     res.ID(),
			ReservationNumber: res.Number(),
			IsReplayed:        true,
		}, nil

	case "processing":
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateRequest
		}
		return nil, ErrRequestInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (e *reservationEngine) createNewReservation(ctx context.Context, input CreateReservationInput, idempotencyKey uuid.UUID) (*CreateReservationResult, error) {
	now := e.clock.Now()

	store, err := e.stores.FindByID(ctx, input.StoreID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	period, err := reservation.NewPeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidPeriod)
	}

	if violations := validateRentalWindow(store, period, now); len(violations) > 0 {
		return nil, errors.Join(violations...)
	}

	deliveryItem, err := e.resolveDelivery(store, input)
	if err != nil {
		return nil, err
	}

	// Collision retries regenerate the number and redo the whole
	// transaction; the last attempt uses the id-derived fallback.
	maxAttempts := e.booking.NumberMaxRetries + 1
	var res *reservation.Reservation
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err = shared.RunInTxWithRetry(ctx, e.pool, 2, func(tx db.DBTX) (*reservation.Reservation, error) {
			return e.buildAndPersist(ctx, tx, store, input, period, deliveryItem, idempotencyKey, now, attempt == maxAttempts-1)
		})
		if err == nil {
			break
		}
		if infra.IsKind(err, infra.KindDuplicateKey) {
			slog.Warn("reservation number collision, regenerating", "attempt", attempt+1)
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	paymentURL := e.createCheckoutURL(ctx, res)

	e.dispatcher.Dispatch(ctx, []notify.Intent{
		{Event: notify.EventReservationCreated, ReservationID: res.ID(), Recipient: "customer", Locale: input.Locale},
		{Event: notify.EventReservationCreated, ReservationID: res.ID(), Recipient: "store"},
	})

	return &CreateReservationResult{
		ReservationID:     res.ID(),
		ReservationNumber: res.Number(),
		PaymentURL:        paymentURL,
	}, nil
}

// buildAndPersist runs entirely inside one transaction: product rows are
// locked, prices recomputed from authoritative definitions, availability
// re-proven, and only then are rows written. Two concurrent bookings for
// the last unit serialize on the product lock.
func (e *reservationEngine) buildAndPersist(
	ctx context.Context,
	tx db.DBTX,
	store *shared.StoreSnapshot,
	input CreateReservationInput,
	period reservation.Period,
	deliveryItem *reservation.Item,
	idempotencyKey uuid.UUID,
	now time.Time,
	useFallbackNumber bool,
) (*reservation.Reservation, error) {
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}
	if err := e.products.LockForBooking(ctx, tx, productIDs); err != nil {
		return nil, err
	}

	blocking := reservation.BlockingStatuses(store.PendingBlocksAvailability)
	holds, err := e.holds.FindHolds(ctx, tx, productIDs, period.Start(), period.End(), blocking)
	if err != nil {
		return nil, err
	}

	items := make([]reservation.Item, 0, len(input.Items)+1)
	subtotal := 0.0
	deposit := 0.0

	for _, in := range input.Items {
		item, err := e.buildItem(ctx, tx, store, in, period, holds)
		if err != nil {
			return nil, err
		}
		subtotal += item.TotalPrice
		deposit += item.DepositPerUnit * float64(item.Quantity)
		items = append(items, *item)
	}
	if deliveryItem != nil {
		subtotal += deliveryItem.TotalPrice
		items = append(items, *deliveryItem)
	}
	subtotal = money.Round2(subtotal)
	deposit = money.Round2(deposit)

	logAmountMismatch(input, subtotal, deposit)

	taxFields := reservationTax(store.Tax, subtotal)

	number := reservation.GenerateNumber(now)
	res, err := reservation.NewReservation(
		input.StoreID, input.CustomerID, number, period, items,
		deposit, taxFields, input.CustomerNotes, now,
	)
	if err != nil {
		return nil, err
	}
	if useFallbackNumber {
		res = reservation.Reconstruct(
			res.ID(), res.StoreID(), res.CustomerID(),
			reservation.FallbackNumber(now, res.ID()),
			res.Status(), res.Period(), res.Items(),
			res.SubtotalAmount(), res.DepositAmount(), res.TotalAmount(),
			res.Tax(), res.CustomerNotes(), res.DepositStatus(),
			nil, nil, nil, nil, nil,
			res.CreatedAt(), res.UpdatedAt(),
		)
	}

	if err := e.resWrites.Create(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := e.activities.Append(ctx, tx, res.CreatedActivity(nil, now)); err != nil {
		return nil, err
	}
	if err := e.idem.UpdateStatusCompleted(ctx, tx, idempotencyKey, input.CustomerID, hashID(res.ID()), res.ID()); err != nil {
		return nil, err
	}
	return res, nil
}

// buildItem resolves the authoritative product, recomputes its price and
// proves availability for the requested quantity.
func (e *reservationEngine) buildItem(
	ctx context.Context,
	tx db.DBTX,
	store *shared.StoreSnapshot,
	in CreateItemInput,
	period reservation.Period,
	holds []availability.Hold,
) (*reservation.Item, error) {
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	if in.ProductID == nil || in.IsCustomItem {
		return buildCustomItem(in), nil
	}

	prod, err := e.products.FindByID(ctx, tx, *in.ProductID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNoLongerAvailable
		}
		return nil, err
	}
	if !prod.IsActive {
		return nil, ErrProductUnavailable
	}

	if err := e.proveAvailability(ctx, tx, prod, in, period, holds); err != nil {
		return nil, err
	}

	var manual *float64
	if in.ManualPriceOverride {
		manual = &in.UnitPrice
	}
	quote, err := pricing.QuoteItem(prod.Pricing, period.Start(), period.End(), in.Quantity, manual)
	if err != nil {
		return nil, err
	}

	if !money.Equal(quote.Subtotal, in.ClaimedTotal) && in.ClaimedTotal != 0 {
		// Fraud/staleness signal only; the server amount is persisted.
		slog.Warn("client item total diverges from server computation",
			"product_id", prod.ID,
			"claimed", in.ClaimedTotal,
			"computed", quote.Subtotal)
	}

	item := &reservation.Item{
		ID:             uuid.New(),
		ProductID:      &prod.ID,
		Quantity:       in.Quantity,
		Duration:       quote.Duration,
		UnitPrice:      money.Round2(quote.UnitPrice),
		DepositPerUnit: prod.DepositPerUnit,
		TotalPrice:     money.Round2(quote.Subtotal),
		Snapshot: reservation.ProductSnapshot{
			Name:        prod.Name,
			Description: prod.Description,
			Images:      prod.Images,
		},
		Breakdown:  &quote.Breakdown,
		Attributes: in.Attributes,
	}

	if rate := tax.EffectiveRate(store.Tax, prod.TaxRateOverride); rate != nil {
		var bd tax.Breakdown
		if store.Tax.PricesIncludeTax {
			bd = tax.BreakdownInclusive(item.TotalPrice, *rate)
		} else {
			bd = tax.BreakdownExclusive(item.TotalPrice, *rate)
		}
		item.Tax = &reservation.TaxFields{
			Rate:            *rate,
			SubtotalExclTax: money.Round2(bd.Exclusive),
			TaxAmount:       money.Round2(bd.Tax),
		}
	}

	return item, nil
}

func (e *reservationEngine) proveAvailability(
	ctx context.Context,
	tx db.DBTX,
	prod *shared.ProductSnapshot,
	in CreateItemInput,
	period reservation.Period,
	holds []availability.Hold,
) error {
	window := availability.Window{Start: period.Start(), End: period.End()}

	if prod.TrackUnits && len(prod.AttributeAxes) > 0 {
		units, err := e.products.FindUnits(ctx, tx, prod.ID)
		if err != nil {
			return err
		}
		capacity := availability.CapacityBySignature(units, holdsForProduct(holds, prod.ID), window, nil)

		if len(in.Attributes) > 0 {
			sig := availability.Signature(in.Attributes)
			if capacity[sig] < in.Quantity {
				return productGoneError(prod, in.Quantity, capacity[sig])
			}
			return nil
		}
		if _, err := e.allocator.Allocate(in.Quantity, capacity); err != nil {
			return productGoneError(prod, in.Quantity, 0)
		}
		return nil
	}

	free := availability.Available(prod.Quantity, holds, prod.ID, window, nil)
	if free < in.Quantity {
		return productGoneError(prod, in.Quantity, free)
	}
	return nil
}

// productGoneError names the offending item so the caller can tell which
// line of a multi-item booking lost the race.
func productGoneError(prod *shared.ProductSnapshot, requested, available int) error {
	return errs.Wrap(ErrProductNoLongerAvailable,
		fmt.Sprintf("product %q (%s): requested %d, available %d", prod.Name, prod.ID, requested, available))
}

// validateActorPricing rejects customer requests that try to set their own
// prices. Custom items and manual overrides take the submitted unit price
// as authoritative, so both are staff-only.
func validateActorPricing(input CreateReservationInput) error {
	if input.ActorIsStaff {
		return nil
	}
	for _, item := range input.Items {
		if item.ManualPriceOverride || item.IsCustomItem {
			return errs.Mark(errs.New("client-priced items require a staff actor"), ErrUnauthorized)
		}
	}
	return nil
}

func holdsForProduct(holds []availability.Hold, productID uuid.UUID) []availability.Hold {
	var filtered []availability.Hold
	for _, h := range holds {
		if h.ProductID == productID {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func buildCustomItem(in CreateItemInput) *reservation.Item {
	quote := pricing.QuoteCustomItem(in.UnitPrice, 1, in.Quantity)
	return &reservation.Item{
		ID:           uuid.New(),
		IsCustomItem: true,
		Quantity:     in.Quantity,
		Duration:     1,
		UnitPrice:    money.Round2(in.UnitPrice),
		TotalPrice:   money.Round2(quote.Subtotal),
		Snapshot:     reservation.ProductSnapshot{Name: in.Name},
		Breakdown:    &quote.Breakdown,
	}
}

func (e *reservationEngine) resolveDelivery(store *shared.StoreSnapshot, input CreateReservationInput) (*reservation.Item, error) {
	if input.Delivery == nil {
		return nil, nil
	}
	if !store.Delivery.Enabled {
		return nil, nil
	}
	if input.Delivery.Address == "" {
		return nil, ErrDeliveryRequired
	}

	distance, fee, err := computeDeliveryFee(store, geo.Point{Lat: input.Delivery.Lat, Lng: input.Delivery.Lng})
	if err != nil {
		return nil, err
	}

	if !money.Equal(fee, input.Delivery.ClaimedFee) && input.Delivery.ClaimedFee != 0 {
		slog.Warn("client delivery fee diverges from server computation",
			"claimed", input.Delivery.ClaimedFee,
			"computed", fee,
			"distance_km", distance)
	}

	if fee == 0 {
		return nil, nil
	}
	item := buildCustomItem(CreateItemInput{Name: "Delivery", Quantity: 1, UnitPrice: fee})
	return item, nil
}

func (e *reservationEngine) createCheckoutURL(ctx context.Context, res *reservation.Reservation) *string {
	url, err := e.provider.CreateCheckoutSession(ctx, CheckoutSession{
		ReservationID: res.ID(),
		AmountMinor:   money.ToMinorUnits(res.TotalAmount()),
		Currency:      e.stripe.Currency,
		Description:   "Reservation " + res.Number(),
		SuccessURL:    e.booking.CheckoutSuccessURL,
		CancelURL:     e.booking.CheckoutCancelURL,
	})
	if err != nil {
		// The booking stands; payment can be retried from the reservation page.
		slog.Warn("failed to create checkout session", "reservation_id", res.ID(), "error", err)
		return nil
	}
	return &url
}

func reservationTax(settings tax.Settings, subtotal float64) *reservation.TaxFields {
	rate := tax.EffectiveRate(settings, nil)
	if rate == nil {
		return nil
	}
	var bd tax.Breakdown
	if settings.PricesIncludeTax {
		bd = tax.BreakdownInclusive(subtotal, *rate)
	} else {
		bd = tax.BreakdownExclusive(subtotal, *rate)
	}
	return &reservation.TaxFields{
		Rate:            *rate,
		SubtotalExclTax: money.Round2(bd.Exclusive),
		TaxAmount:       money.Round2(bd.Tax),
	}
}

func logAmountMismatch(input CreateReservationInput, subtotal, deposit float64) {
	total := money.Round2(subtotal + deposit)
	if (input.SubtotalAmount != 0 && !money.Equal(input.SubtotalAmount, subtotal)) ||
		(input.DepositAmount != 0 && !money.Equal(input.DepositAmount, deposit)) ||
		(input.TotalAmount != 0 && !money.Equal(input.TotalAmount, total)) {
		slog.Warn("client totals diverge from server computation",
			"claimed_subtotal", input.SubtotalAmount,
			"claimed_deposit", input.DepositAmount,
			"claimed_total", input.TotalAmount,
			"computed_subtotal", subtotal,
			"computed_deposit", deposit,
			"computed_total", total)
	}
}

func hashRequest(input CreateReservationInput) string {
	data, _ := json.Marshal(input)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func hashID(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
