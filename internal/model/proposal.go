package model

import "time"

// Proposal review states. A proposal starts pending and is moved by an
// admin to exactly one of the terminal states; there is no way back.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Proposal mirrors the `film_proposals` table: a member-submitted
// suggestion for a future screening.
type Proposal struct {
	ID        uint64    `json:"id"`
	MemberID  uint64    `json:"memberId"`
	Title     string    `json:"title"`
	Director  string    `json:"director"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProposalWithMember is the admin listing row: a proposal joined with the
// submitting member's display name.
type ProposalWithMember struct {
	Proposal
	MemberName string `json:"memberName"`
}
