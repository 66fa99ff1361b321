package types //nolint:revive

type ProposalKind string

const (
	// KindProposal is a proposal whose operations run directly through the
	// quorum wallet.
	KindProposal ProposalKind = "Proposal"
	// KindTimelockProposal is a proposal whose operations are wrapped in
	// delay queue schedule or cancel calls before running through the wallet.
	KindTimelockProposal ProposalKind = "TimelockProposal"
)

// StringToProposalKind converts a string to a ProposalKind.
var StringToProposalKind = map[string]ProposalKind{
	"Proposal":         KindProposal,
	"TimelockProposal": KindTimelockProposal,
}
