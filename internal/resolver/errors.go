package resolver

import "errors"

var (
	ErrLineItemNotFound  = errors.New("line item not found in solicitation")
	ErrQuoteNotFound     = errors.New("quote not found in solicitation")
	ErrQuoteItemNotFound = errors.New("quote item not found in quote")
	ErrLinkageMismatch   = errors.New("quote item does not belong to the given line item")
	ErrQuoteRejected     = errors.New("quote is rejected and cannot win")
	ErrInvalidPrice      = errors.New("quote item has a non-positive unit price")
	ErrInvalidQuantity   = errors.New("line item has a non-positive quantity")
	ErrForeignCandidate  = errors.New("candidate quotes a different line item")
	ErrNoCandidates      = errors.New("line item has no quotes")
	ErrUnstableWinner    = errors.New("reassignment did not make the chosen quote item the winner")
	ErrInvariant         = errors.New("consistency invariant violated")
)
