// Package pointsevents defines the message contracts of the points module.
package pointsevents

import "time"

// Stream carries every points subject.
const (
	StreamName    = "points"
	StreamSubject = "points.>"
)

// Inbound topics.
const (
	// EventCompletedV1 is published by the event manager when a tournament finishes.
	EventCompletedV1 = "points.event.completed.v1"
	// AdjustRequestedV1 asks for a manual balance correction.
	AdjustRequestedV1 = "points.adjust.requested.v1"
)

// Outbound topics.
const (
	EventScoredV1        = "points.event.scored.v1"
	EventScoringFailedV1 = "points.event.scoring.failed.v1"
	AdjustedV1           = "points.adjusted.v1"
	AdjustFailedV1       = "points.adjust.failed.v1"
)

// ParticipationV1 is one entrant's result.
type ParticipationV1 struct {
	MembershipID *int64 `json:"membership_id,omitempty"`
	Rank         *int   `json:"rank,omitempty"`
	Eliminations int    `json:"eliminations"`
}

// EventCompletedPayloadV1 is a finished event snapshot.
type EventCompletedPayloadV1 struct {
	EventID           int64             `json:"event_id"`
	SeasonID          string            `json:"season_id,omitempty"`
	ScoringStrategy   string            `json:"scoring_strategy,omitempty"`
	TotalParticipants int               `json:"total_participants"`
	Participations    []ParticipationV1 `json:"participations"`
	CompletedAt       time.Time         `json:"completed_at"`
}

// DeltaV1 is a delta that reached a membership.
type DeltaV1 struct {
	MembershipID int64 `json:"membership_id"`
	Delta        int   `json:"delta"`
	Balance      int   `json:"balance"`
}

// PhaseV1 summarises one completion phase.
type PhaseV1 struct {
	Strategy       string    `json:"strategy"`
	Reason         string    `json:"reason"`
	AlreadyApplied bool      `json:"already_applied"`
	Applied        []DeltaV1 `json:"applied,omitempty"`
	Skipped        []int64   `json:"skipped,omitempty"`
}

// EventScoredPayloadV1 reports a processed completion.
type EventScoredPayloadV1 struct {
	EventID    int64    `json:"event_id"`
	SeasonID   string   `json:"season_id,omitempty"`
	Skipped    bool     `json:"skipped"`
	SkipReason string   `json:"skip_reason,omitempty"`
	Scoring    *PhaseV1 `json:"scoring,omitempty"`
	Decay      *PhaseV1 `json:"decay,omitempty"`
}

// EventScoringFailedPayloadV1 reports a completion that was rejected.
type EventScoringFailedPayloadV1 struct {
	EventID int64  `json:"event_id"`
	Reason  string `json:"reason"`
}

// AdjustRequestedPayloadV1 requests a manual delta.
type AdjustRequestedPayloadV1 struct {
	MembershipID int64  `json:"membership_id"`
	Delta        int    `json:"delta"`
	Reason       string `json:"reason"`
	RequestedBy  string `json:"requested_by,omitempty"`
	// RequestID deduplicates redelivered requests. The message UUID is used when empty.
	RequestID string `json:"request_id,omitempty"`
}

// AdjustedPayloadV1 reports an applied adjustment.
type AdjustedPayloadV1 struct {
	MembershipID   int64  `json:"membership_id"`
	Delta          int    `json:"delta"`
	Balance        int    `json:"balance"`
	Reason         string `json:"reason"`
	RequestID      string `json:"request_id,omitempty"`
	AlreadyApplied bool   `json:"already_applied,omitempty"`
}

// AdjustFailedPayloadV1 reports a rejected adjustment.
type AdjustFailedPayloadV1 struct {
	MembershipID int64  `json:"membership_id"`
	Reason       string `json:"reason"`
}
