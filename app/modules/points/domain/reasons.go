package pointsdomain

import "fmt"

// ScoringReason is the ledger reason for an event's scoring pass.
func ScoringReason(eventID int64, strategyKey string) string {
	return fmt.Sprintf("Event %d point scoring using %s", eventID, strategyKey)
}

// DecayReason is the ledger reason for an event's decay pass.
func DecayReason(eventID int64, strategyKey string) string {
	return fmt.Sprintf("Event %d decay using %s", eventID, strategyKey)
}

// MaxReasonLength bounds ledger reasons.
const MaxReasonLength = 255

// TruncateReason trims reason to MaxReasonLength runes.
func TruncateReason(reason string) string {
	r := []rune(reason)
	if len(r) <= MaxReasonLength {
		return reason
	}
	return string(r[:MaxReasonLength])
}
