package event

import "time"

// ApprovalKind classifies a transition into the approved status
type ApprovalKind string

const (
	// FirstApproval covers a never-approved event, an event with no usable
	// history, and an already-approved event re-approved without intervening
	// edits. The ledger cannot tell the last case apart from the first two;
	// content-change recency is the only signal available.
	FirstApproval ApprovalKind = "first_approval"
	// Reapproval is an approval that follows a content change postdating the
	// previous approval.
	Reapproval ApprovalKind = "reapproval"
)

// ClassifyApproval decides whether an approval transition is a first approval
// or a reapproval. Both timestamps must come from the ledger state before the
// transition itself is recorded.
func ClassifyApproval(lastApprovalAt, lastContentChangeAt *time.Time) ApprovalKind {
	if lastApprovalAt == nil || lastContentChangeAt == nil {
		return FirstApproval
	}
	if lastContentChangeAt.After(*lastApprovalAt) {
		return Reapproval
	}
	return FirstApproval
}
