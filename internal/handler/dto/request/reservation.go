package request

import (
	"time"

	"rentflow/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReservationItemRequest struct {
	ProductID           *uuid.UUID        `json:"productId,omitempty"`
	IsCustomItem        bool              `json:"isCustomItem,omitempty"`
	Name                string            `json:"name,omitempty"`
	Quantity            int               `json:"quantity" binding:"required,min=1"`
	UnitPrice           float64           `json:"unitPrice,omitempty"`
	ManualPriceOverride bool              `json:"manualPriceOverride,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
	TotalPrice          float64           `json:"totalPrice,omitempty"`
}

type DeliveryRequest struct {
	Address string  `json:"address" binding:"required"`
	Lat     float64 `json:"lat" binding:"required"`
	Lng     float64 `json:"lng" binding:"required"`
	Fee     float64 `json:"fee,omitempty"`
}

type CreateReservationRequest struct {
	StoreID        uuid.UUID                `json:"storeId" binding:"required"`
	StartDate      time.Time                `json:"startDate" binding:"required"`
	EndDate        time.Time                `json:"endDate" binding:"required"`
	Items          []ReservationItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerNotes  string                   `json:"customerNotes,omitempty"`
	Locale         string                   `json:"locale,omitempty"`
	SubtotalAmount float64                  `json:"subtotalAmount,omitempty"`
	DepositAmount  float64                  `json:"depositAmount,omitempty"`
	TotalAmount    float64                  `json:"totalAmount,omitempty"`
	Delivery       *DeliveryRequest         `json:"delivery,omitempty"`
}

// ToInput maps the request body onto the command input. The staff flag
// comes from the authenticated role, never from the body.
func (r CreateReservationRequest) ToInput(customerID uuid.UUID, actorIsStaff bool) commands.CreateReservationInput {
	items := make([]commands.CreateItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = commands.CreateItemInput{
			ProductID:           item.ProductID,
			IsCustomItem:        item.IsCustomItem,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			ManualPriceOverride: item.ManualPriceOverride,
			Attributes:          item.Attributes,
			ClaimedTotal:        item.TotalPrice,
		}
	}

	input := commands.CreateReservationInput{
		StoreID:        r.StoreID,
		CustomerID:     customerID,
		ActorIsStaff:   actorIsStaff,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Items:          items,
		CustomerNotes:  r.CustomerNotes,
		Locale:         r.Locale,
		SubtotalAmount: r.SubtotalAmount,
		DepositAmount:  r.DepositAmount,
		TotalAmount:    r.TotalAmount,
	}
	if r.Delivery != nil {
		input.Delivery = &commands.DeliveryInput{
			Address:    r.Delivery.Address,
			Lat:        r.Delivery.Lat,
			Lng:        r.Delivery.Lng,
			ClaimedFee: r.Delivery.Fee,
		}
	}
	return input
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

type SaveCardRequest struct {
	CustomerRef      string `json:"customerRef" binding:"required"`
	PaymentMethodRef string `json:"paymentMethodRef" binding:"required"`
}

type CaptureDepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

type RecordPaymentRequest struct {
	Type   string  `json:"type" binding:"required"`
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
	Reason string  `json:"reason,omitempty"`
}

type RefundPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason,omitempty"`
}

type AssignUnitsRequest struct {
	UnitIDs []uuid.UUID `json:"unitIds" binding:"required"`
}
