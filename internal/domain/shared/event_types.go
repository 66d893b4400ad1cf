package shared

// EventType names a fact recorded in the compliance journal
type EventType string

const (
	EventTypeBalanceComputed EventType = "CB_COMPUTED"
	EventTypeSurplusBanked   EventType = "SURPLUS_BANKED"
	EventTypeBankedApplied   EventType = "BANKED_APPLIED"
	EventTypePoolCreated     EventType = "POOL_CREATED"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventTypeBalanceComputed, EventTypeSurplusBanked, EventTypeBankedApplied, EventTypePoolCreated:
		return true
	}
	return false
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
