package edition

import "errors"

// Edition domain errors
var (
	// ErrOrderNotFound marks a lookup for an order that does not exist
	ErrOrderNotFound = errors.New("edition: order not found")
	// ErrLineItemNotFound marks a lookup for a line item that does not exist
	ErrLineItemNotFound = errors.New("edition: line item not found")
	// ErrRevokeUnassigned marks a revoke request against an item that holds
	// no edition number; the request is rejected with no state change
	ErrRevokeUnassigned = errors.New("edition: line item holds no edition number")
	// ErrNoEditionNumber marks a certificate operation against an item that
	// holds no edition number
	ErrNoEditionNumber = errors.New("edition: line item holds no edition number")
	// ErrResequenceInProgress marks a resequence request for a product whose
	// lock is already held by another trigger
	ErrResequenceInProgress = errors.New("edition: resequence already in progress for product")
	// ErrReconciliationAmbiguity marks multiple plausible order matches;
	// the records are kept distinct rather than merged by guesswork
	ErrReconciliationAmbiguity = errors.New("edition: ambiguous order match")
)
