package custody

import (
	"fmt"
	"sync"
)

// MemoryCustodian is an in-memory Custodian with ERC721-style ownership and
// operator approvals. It backs the auction in tests and single-process
// deployments where no external asset contract is involved.
type MemoryCustodian struct {
	mu        sync.Mutex
	owners    map[string]string          // itemID -> owner
	operators map[string]map[string]bool // owner -> operator -> approved
}

// NewMemoryCustodian returns an empty custodian with no minted items.
func NewMemoryCustodian() *MemoryCustodian {
	return &MemoryCustodian{
		owners:    make(map[string]string),
		operators: make(map[string]map[string]bool),
	}
}

// Mint registers a new item under the given owner. Minting an existing item
// is an error; ownership is only ever changed through Transfer.
func (c *MemoryCustodian) Mint(itemID, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.owners[itemID]; exists {
		return fmt.Errorf("item %s already minted", itemID)
	}
	c.owners[itemID] = owner
	return nil
}

// SetApprovalForAll grants or revokes an operator's authority to move any of
// the owner's items.
func (c *MemoryCustodian) SetApprovalForAll(owner, operator string, approved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops, ok := c.operators[owner]
	if !ok {
		ops = make(map[string]bool)
		c.operators[owner] = ops
	}
	ops[operator] = approved
}

// OwnerOf returns the current holder of itemID.
func (c *MemoryCustodian) OwnerOf(itemID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[itemID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	return owner, nil
}

// Transfer moves itemID from one party to another, enforcing the
// owner-or-approved rule for the operator.
func (c *MemoryCustodian) Transfer(itemID, operator, from, to string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if owner != from {
		return fmt.Errorf("%w: %s does not hold item %s", ErrNotOwner, from, itemID)
	}
	if operator != from && !c.operators[from][operator] {
		return fmt.Errorf("%w: operator %s, owner %s", ErrNotApproved, operator, from)
	}

	c.owners[itemID] = to
	return nil
}
