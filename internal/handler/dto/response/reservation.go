package response

import (
	"time"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/usecase/commands"
	"rentflow/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ID         uuid.UUID `json:"id"`
	Number     string    `json:"number"`
	PaymentURL *string   `json:"paymentUrl"`
	IsReplayed bool      `json:"isReplayed,omitempty"`
}

func FromCreateResult(result *commands.CreateReservationResult) *CreateReservationResponse {
	return &CreateReservationResponse{
		ID:         result.ReservationID,
		Number:     result.ReservationNumber,
		PaymentURL: result.PaymentURL,
		IsReplayed: result.IsReplayed,
	}
}

type TaxResponse struct {
	Rate            float64 `json:"rate"`
	SubtotalExclTax float64 `json:"subtotalExclTax"`
	TaxAmount       float64 `json:"taxAmount"`
}

type ItemUnitResponse struct {
	UnitID     uuid.UUID `json:"unitId"`
	Identifier string    `json:"identifier"`
}

type ItemResponse struct {
	ID             uuid.UUID          `json:"id"`
	ProductID      *uuid.UUID         `json:"productId,omitempty"`
	IsCustomItem   bool               `json:"isCustomItem,omitempty"`
	Name           string             `json:"name"`
	Quantity       int                `json:"quantity"`
	Duration       int                `json:"duration"`
	UnitPrice      float64            `json:"unitPrice"`
	DepositPerUnit float64            `json:"depositPerUnit"`
	TotalPrice     float64            `json:"totalPrice"`
	Breakdown      *pricing.Breakdown `json:"priceBreakdown,omitempty"`
	Tax            *TaxResponse       `json:"tax,omitempty"`
	Attributes     map[string]string  `json:"attributes,omitempty"`
	Units          []ItemUnitResponse `json:"units,omitempty"`
}

type ActivityResponse struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	ActorID     *uuid.UUID     `json:"actorId,omitempty"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type PaymentResponse struct {
	ID                uuid.UUID  `json:"id"`
	Type              string     `json:"type"`
	Method            string     `json:"method"`
	Status            string     `json:"status"`
	Amount            float64    `json:"amount"`
	CapturedAmount    *float64   `json:"capturedAmount,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	RefundOfPaymentID *uuid.UUID `json:"refundOfPaymentId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type LedgerResponse struct {
	RentalPaid       float64 `json:"rentalPaid"`
	DepositCollected float64 `json:"depositCollected"`
	DepositReturned  float64 `json:"depositReturned"`
	MaxReturnable    float64 `json:"maxReturnable"`
}

type ReservationResponse struct {
	ID             uuid.UUID          `json:"id"`
	StoreID        uuid.UUID          `json:"storeId"`
	CustomerID     uuid.UUID          `json:"customerId"`
	Number         string             `json:"number"`
	Status         string             `json:"status"`
	StartDate      time.Time          `json:"startDate"`
	EndDate        time.Time          `json:"endDate"`
	Items          []ItemResponse     `json:"items"`
	SubtotalAmount float64            `json:"subtotalAmount"`
	DepositAmount  float64            `json:"depositAmount"`
	TotalAmount    float64            `json:"totalAmount"`
	Tax            *TaxResponse       `json:"tax,omitempty"`
	CustomerNotes  string             `json:"customerNotes,omitempty"`
	DepositStatus  string             `json:"depositStatus"`
	PickedUpAt     *time.Time         `json:"pickedUpAt,omitempty"`
	ReturnedAt     *time.Time         `json:"returnedAt,omitempty"`
	Activities     []ActivityResponse `json:"activities,omitempty"`
	Payments       []PaymentResponse  `json:"payments,omitempty"`
	Ledger         *LedgerResponse    `json:"ledger,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type ReservationListResponse struct {
	ID             uuid.UUID `json:"id"`
	Number         string    `json:"number"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	SubtotalAmount float64   `json:"subtotalAmount"`
	DepositAmount  float64   `json:"depositAmount"`
	TotalAmount    float64   `json:"totalAmount"`
	DepositStatus  string    `json:"depositStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AvailabilityResponse struct {
	ProductID   uuid.UUID      `json:"productId"`
	Requested   int            `json:"requested"`
	Available   int            `json:"available"`
	BySignature map[string]int `json:"bySignature,omitempty"`
	Satisfiable bool           `json:"satisfiable"`
}

func FromReservationDetail(detail *queries.ReservationDetail) *ReservationResponse {
	res := detail.Reservation
	resp := &ReservationResponse{
		ID:             res.ID(),
		StoreID:        res.StoreID(),
		CustomerID:     res.CustomerID(),
		Number:         res.Number(),
		Status:         string(res.Status()),
		StartDate:      res.Period().Start(),
		EndDate:        res.Period().End(),
		Items:          fromItems(res.Items()),
		SubtotalAmount: res.SubtotalAmount(),
		DepositAmount:  res.DepositAmount(),
		TotalAmount:    res.TotalAmount(),
		Tax:            fromTax(res.Tax()),
		CustomerNotes:  res.CustomerNotes(),
		DepositStatus:  string(res.DepositStatus()),
		PickedUpAt:     res.PickedUpAt(),
		ReturnedAt:     res.ReturnedAt(),
		Activities:     fromActivities(detail.Activities),
		Payments:       fromPayments(detail.Payments),
		Ledger: &LedgerResponse{
			RentalPaid:       detail.Ledger.RentalPaid,
			DepositCollected: detail.Ledger.DepositCollected,
			DepositReturned:  detail.Ledger.DepositReturned,
			MaxReturnable:    detail.MaxReturnable,
		},
		CreatedAt: res.CreatedAt(),
		UpdatedAt: res.UpdatedAt(),
	}
	return resp
}

func fromItems(items []reservation.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			IsCustomItem:   item.IsCustomItem,
			Name:           item.Snapshot.Name,
			Quantity:       item.Quantity,
			Duration:       item.Duration,
			UnitPrice:      item.UnitPrice,
			DepositPerUnit: item.DepositPerUnit,
			TotalPrice:     item.TotalPrice,
			Breakdown:      item.Breakdown,
			Tax:            fromItemTax(item.Tax),
			Attributes:     item.Attributes,
		}
		for _, unit := range item.Units {
			out[i].Units = append(out[i].Units, ItemUnitResponse{
				UnitID:     unit.UnitID,
				Identifier: unit.IdentifierSnapshot,
			})
		}
	}
	return out
}

func fromTax(t *reservation.TaxFields) *TaxResponse {
	if t == nil {
		return nil
	}
	return &TaxResponse{
		Rate:            t.Rate,
		SubtotalExclTax: t.SubtotalExclTax,
		TaxAmount:       t.TaxAmount,
	}
}

func fromItemTax(t *reservation.TaxFields) *TaxResponse {
	return fromTax(t)
}

func fromActivities(activities []reservation.Activity) []ActivityResponse {
	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = ActivityResponse{
			ID:          a.ID,
			Type:        string(a.Type),
			ActorID:     a.ActorID,
			Description: a.Description,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		}
	}
	return out
}

func fromPayments(payments []payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = PaymentResponse{
			ID:                p.ID,
			Type:              string(p.Type),
			Method:            string(p.Method),
			Status:            string(p.Status),
			Amount:            p.Amount,
			CapturedAmount:    p.CapturedAmount,
			Reason:            p.Reason,
			RefundOfPaymentID: p.RefundOfPaymentID,
			CreatedAt:         p.CreatedAt,
		}
	}
	return out
}

func FromPayment(p *payment.Payment) *PaymentResponse {
	resp := fromPayments([]payment.Payment{*p})
	return &resp[0]
}

func FromReservationListItem(rm *queries.ReservationListItem) *ReservationListResponse {
	return &ReservationListResponse{
		ID:             rm.ID,
		Number:         rm.Number,
		Status:         rm.Status,
		StartDate:      rm.StartDate,
		EndDate:        rm.EndDate,
		SubtotalAmount: rm.SubtotalAmount,
		DepositAmount:  rm.DepositAmount,
		TotalAmount:    rm.TotalAmount,
		DepositStatus:  rm.DepositStatus,
		CreatedAt:      rm.CreatedAt,
	}
}

func FromAvailabilityResult(result *queries.AvailabilityResult) *AvailabilityResponse {
	return &AvailabilityResponse{
		ProductID:   result.ProductID,
		Requested:   result.Requested,
		Available:   result.Available,
		BySignature: result.BySignature,
		Satisfiable: result.Satisfiable,
	}
}
