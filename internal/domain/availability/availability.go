package availability

import (
	"errors"
	"sort"
	"strings"
	"time"

	"rentflow/internal/domain/product"

	"github.com/google/uuid"
)

var ErrInsufficientCapacity = errors.New("insufficient capacity for requested quantity")

// DefaultSignature is the combination signature of units (or requests)
// without attribute values.
const DefaultSignature = "__default"

// Window is a half-open rental interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Hold is one existing claim against a product: a reservation item in a
// blocking status whose interval may overlap the requested window.
type Hold struct {
	ReservationID uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	Window        Window
	UnitIDs       []uuid.UUID
}

// Signature produces the deterministic attribute-combination key:
// lower-cased, trimmed key:value pairs sorted by key, joined by "|".
// An empty selection maps to DefaultSignature.
func Signature(attrs map[string]string) string {
	if len(attrs) == 0 {
		return DefaultSignature
	}
	pairs := make([]string, 0, len(attrs))
	for k, v := range attrs {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		pairs = append(pairs, key+":"+val)
	}
	if len(pairs) == 0 {
		return DefaultSignature
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

// ReservedQuantity sums the quantities of holds on productID that overlap
// the window, skipping the caller's own in-flight reservation.
func ReservedQuantity(holds []Hold, productID uuid.UUID, window Window, excludeReservationID *uuid.UUID) int {
	total := 0
	for _, h := range holds {
		if h.ProductID != productID {
			continue
		}
		if excludeReservationID != nil && h.ReservationID == *excludeReservationID {
			continue
		}
		if h.Window.Overlaps(window) {
			total += h.Quantity
		}
	}
	return total
}

// Available returns how many unserialized units of the product are free
// over the window. Never negative.
func Available(totalQuantity int, holds []Hold, productID uuid.UUID, window Window, excludeReservationID *uuid.UUID) int {
	free := totalQuantity - ReservedQuantity(holds, productID, window, excludeReservationID)
	if free < 0 {
		return 0
	}
	return free
}

// CapacityBySignature groups a product's units by combination signature and
// subtracts units already assigned to overlapping blocking holds. Only
// units in status available count toward capacity.
func CapacityBySignature(units []product.Unit, holds []Hold, window Window, excludeReservationID *uuid.UUID) map[string]int {
	assigned := make(map[uuid.UUID]bool)
	for _, h := range holds {
		if excludeReservationID != nil && h.ReservationID == *excludeReservationID {
			continue
		}
		if !h.Window.Overlaps(window) {
			continue
		}
		for _, unitID := range h.UnitIDs {
			assigned[unitID] = true
		}
	}

	capacity := make(map[string]int)
	for _, u := range units {
		if u.Status != product.UnitAvailable {
			continue
		}
		if assigned[u.ID] {
			continue
		}
		capacity[Signature(u.Attributes)]++
	}
	return capacity
}

// Allocator decides how a quantity request spanning multiple attribute
// combinations is spread across them. The allocation is all-or-nothing.
type Allocator interface {
	Allocate(requested int, capacity map[string]int) (map[string]int, error)
}

// GreedyAllocator exhausts the combination with the most remaining
// capacity first; ties break on signature ascending for determinism.
type GreedyAllocator struct{}

func (GreedyAllocator) Allocate(requested int, capacity map[string]int) (map[string]int, error) {
	if requested <= 0 {
		return map[string]int{}, nil
	}

	sigs := make([]string, 0, len(capacity))
	total := 0
	for sig, n := range capacity {
		if n > 0 {
			sigs = append(sigs, sig)
			total += n
		}
	}
	if total < requested {
		return nil, ErrInsufficientCapacity
	}

	sort.Slice(sigs, func(i, j int) bool {
		if capacity[sigs[i]] != capacity[sigs[j]] {
			return capacity[sigs[i]] > capacity[sigs[j]]
		}
		return sigs[i] < sigs[j]
	})

	allocation := make(map[string]int)
	remaining := requested
	for _, sig := range sigs {
		if remaining == 0 {
			break
		}
		take := capacity[sig]
		if take > remaining {
			take = remaining
		}
		allocation[sig] = take
		remaining -= take
	}
	return allocation, nil
}
