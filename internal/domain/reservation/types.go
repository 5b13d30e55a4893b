package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusOngoing, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// statusEdges is the full set of legal status transitions. Anything not
// listed here is rejected before any mutation.
var statusEdges = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusOngoing, StatusCancelled},
	StatusOngoing:   {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range statusEdges[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowsEdits reports whether items and dates may still change. Terminal
// reservations are immutable.
func (s Status) AllowsEdits() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusOngoing:
		return true
	default:
		return false
	}
}

// BlockingStatuses returns the statuses counted against availability.
// Whether a still-pending reservation blocks stock is store-configurable.
func BlockingStatuses(pendingBlocks bool) []Status {
	if pendingBlocks {
		return []Status{StatusPending, StatusConfirmed, StatusOngoing}
	}
	return []Status{StatusConfirmed, StatusOngoing}
}

type DepositStatus string

const (
	DepositNone       DepositStatus = "none"
	DepositCardSaved  DepositStatus = "card_saved"
	DepositAuthorized DepositStatus = "authorized"
	DepositCaptured   DepositStatus = "captured"
	DepositReleased   DepositStatus = "released"
	DepositFailed     DepositStatus = "failed"
)

func (d DepositStatus) String() string {
	return string(d)
}

func (d DepositStatus) IsValid() bool {
	switch d {
	case DepositNone, DepositCardSaved, DepositAuthorized, DepositCaptured, DepositReleased, DepositFailed:
		return true
	default:
		return false
	}
}

// depositEdges: none → card_saved → authorized → captured|released. Any
// live state may drop to failed on a provider error; failed only recovers
// via a fresh card_saved attempt.
var depositEdges = map[DepositStatus][]DepositStatus{
	DepositNone:       {DepositCardSaved, DepositFailed},
	DepositCardSaved:  {DepositAuthorized, DepositFailed},
	DepositAuthorized: {DepositCaptured, DepositReleased, DepositFailed},
	DepositFailed:     {DepositCardSaved},
}

func (d DepositStatus) CanTransitionTo(to DepositStatus) bool {
	for _, allowed := range depositEdges[d] {
		if allowed == to {
			return true
		}
	}
	return false
}
