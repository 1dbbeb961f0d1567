package custody

import "errors"

var (
	// ErrUnknownItem is returned for item IDs the custodian has never seen.
	ErrUnknownItem = errors.New("unknown item")

	// ErrNotOwner is returned when a transfer names a from-party that does not
	// currently hold the item.
	ErrNotOwner = errors.New("party does not own the item")

	// ErrNotApproved is returned when the transfer operator is neither the
	// owner nor an operator the owner has approved.
	ErrNotApproved = errors.New("operator is not approved by the item owner")
)

// Custodian holds auctioned items and moves them between parties. The auction
// consumes this interface only; it never assumes a transfer succeeded.
//
// Transfer follows the owner-or-approved rule: the operator must be the owner
// itself, or an operator the owner has approved for all of its items.
type Custodian interface {
	// OwnerOf returns the party currently holding itemID.
	OwnerOf(itemID string) (string, error)

	// Transfer moves itemID from one party to another on behalf of operator.
	// It fails with ErrNotOwner if from does not hold the item, and with
	// ErrNotApproved if operator has no authority over it.
	Transfer(itemID, operator, from, to string) error
}
