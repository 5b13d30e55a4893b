// Package stripe adapts the card processor to the booking core's
// PaymentProvider port. All amounts cross this package in minor currency
// units; conversion happens in the usecase layer.
package stripe

import (
	"context"

	"rentflow/internal/pkg/config"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/usecase/commands"

	"github.com/stripe/stripe-go/v82"
)

type Provider struct {
	client *stripe.Client
}

func NewProvider(cfg config.Config) *Provider {
	return &Provider{client: stripe.NewClient(cfg.Stripe.APIKey)}
}

var _ commands.PaymentProvider = (*Provider)(nil)

// CreateDepositAuthorization places a manual-capture hold on the saved
// card. The intent stays authorized until captured or cancelled.
func (p *Provider) CreateDepositAuthorization(ctx context.Context, auth commands.DepositAuthorization) (string, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(auth.AmountMinor),
		Currency:      stripe.String(auth.Currency),
		Customer:      stripe.String(auth.CustomerRef),
		PaymentMethod: stripe.String(auth.PaymentMethodRef),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(auth.Description),
	}

	intent, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return "", errs.Wrap(err, "failed to create payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusRequiresCapture {
		return "", errs.New("payment intent not authorized: status " + string(intent.Status))
	}
	return intent.ID, nil
}

// CaptureDeposit captures up to the authorized amount; the remainder is
// released automatically by the processor.
func (p *Provider) CaptureDeposit(ctx context.Context, intentRef string, amountMinor int64) (string, error) {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(amountMinor),
	}

	intent, err := p.client.V1PaymentIntents.Capture(ctx, intentRef, params)
	if err != nil {
		return "", errs.Wrap(err, "failed to capture payment intent")
	}
	if intent.LatestCharge == nil {
		return "", errs.New("captured payment intent has no charge")
	}
	return intent.LatestCharge.ID, nil
}

func (p *Provider) ReleaseDeposit(ctx context.Context, intentRef string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String("requested_by_customer"),
	}
	if _, err := p.client.V1PaymentIntents.Cancel(ctx, intentRef, params); err != nil {
		return errs.Wrap(err, "failed to cancel payment intent")
	}
	return nil
}

// CreateCheckoutSession builds a hosted payment page for the rental
// charge and returns its URL.
func (p *Provider) CreateCheckoutSession(ctx context.Context, session commands.CheckoutSession) (string, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(session.SuccessURL),
		CancelURL:  stripe.String(session.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(session.Currency),
					UnitAmount: stripe.Int64(session.AmountMinor),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(session.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"reservation_id": session.ReservationID.String(),
		},
	}

	checkout, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return "", errs.Wrap(err, "failed to create checkout session")
	}
	return checkout.URL, nil
}

func (p *Provider) CreateRefund(ctx context.Context, chargeRef string, amountMinor int64) (string, error) {
	params := &stripe.RefundCreateParams{
		Charge: stripe.String(chargeRef),
		Amount: stripe.Int64(amountMinor),
	}

	refund, err := p.client.V1Refunds.Create(ctx, params)
	if err != nil {
		return "", errs.Wrap(err, "failed to create refund")
	}
	return refund.ID, nil
}

// GetChargeRefundableAmount asks the processor how much of a charge is
// still refundable, so local arithmetic never drifts from its books.
func (p *Provider) GetChargeRefundableAmount(ctx context.Context, chargeRef string) (int64, error) {
	charge, err := p.client.V1Charges.Retrieve(ctx, chargeRef, &stripe.ChargeRetrieveParams{})
	if err != nil {
		return 0, errs.Wrap(err, "failed to retrieve charge")
	}
	return charge.Amount - charge.AmountRefunded, nil
}
