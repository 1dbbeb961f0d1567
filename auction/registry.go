package auction

import (
	"errors"

	"github.com/akhoshrozeh/dutch-auction/core"
)

// ErrSlotOccupied is returned when a listing is created while another record
// still occupies the slot.
var ErrSlotOccupied = errors.New("a listing already occupies the slot")

// Registry holds the single listing slot: at most one core.Listing exists
// system-wide. It stores and clears records only; the machine owns all
// custody side effects and must resolve them before clearing.
type Registry struct {
	slot *core.Listing
}

// NewRegistry returns a registry with an empty slot.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create validates the listing and stores it in the slot. It fails with
// ErrSlotOccupied when a record already exists, leaving that record intact.
func (r *Registry) Create(l core.Listing) (*core.Listing, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if r.slot != nil {
		return nil, ErrSlotOccupied
	}
	r.slot = &l
	return r.slot, nil
}

// Current returns the stored listing, or nil when the slot is empty.
func (r *Registry) Current() *core.Listing {
	return r.slot
}

// Clear empties the slot unconditionally. Callers must have already resolved
// custody of the listed item.
func (r *Registry) Clear() {
	r.slot = nil
}

// restore puts a previously cleared record back, compensating a settlement or
// sweep whose external transfer failed.
func (r *Registry) restore(l *core.Listing) {
	r.slot = l
}
