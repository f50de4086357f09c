package testutil

import "github.com/roach88/quester/internal/host"

// DefaultMaxStack is the stack size Give merges up to.
const DefaultMaxStack = 64

// Inventory is a slot-limited host.Inventory.
type Inventory struct {
	Slots    int
	MaxStack int
	stacks   []host.ItemStack
}

// NewInventory returns an empty inventory with the given slot count.
func NewInventory(slots int) *Inventory {
	return &Inventory{Slots: slots, MaxStack: DefaultMaxStack}
}

// Stacks returns a copy of the occupied slots.
func (inv *Inventory) Stacks() []host.ItemStack {
	out := make([]host.ItemStack, len(inv.stacks))
	copy(out, inv.stacks)
	return out
}

// Give merges into existing stacks first, then fills free slots.
func (inv *Inventory) Give(stack host.ItemStack) int {
	left := stack.Quantity
	for i := range inv.stacks {
		if left == 0 {
			break
		}
		s := &inv.stacks[i]
		if s.Code != stack.Code || s.Quantity >= inv.MaxStack {
			continue
		}
		n := min(inv.MaxStack-s.Quantity, left)
		s.Quantity += n
		left -= n
	}
	for left > 0 && len(inv.stacks) < inv.Slots {
		n := min(inv.MaxStack, left)
		inv.stacks = append(inv.stacks, host.ItemStack{Code: stack.Code, Quantity: n})
		left -= n
	}
	return left
}

// Take removes up to qty matching items, oldest stacks first.
func (inv *Inventory) Take(pattern string, qty int) int {
	taken := 0
	kept := inv.stacks[:0]
	for _, s := range inv.stacks {
		if taken < qty && host.MatchCode(pattern, s.Code) {
			n := min(s.Quantity, qty-taken)
			s.Quantity -= n
			taken += n
		}
		if s.Quantity > 0 {
			kept = append(kept, s)
		}
	}
	inv.stacks = kept
	return taken
}

// Count sums the quantity of items matching pattern.
func (inv *Inventory) Count(pattern string) int {
	n := 0
	for _, s := range inv.stacks {
		if host.MatchCode(pattern, s.Code) {
			n += s.Quantity
		}
	}
	return n
}

// Fill occupies every free slot with a junk item so that Give fails.
func (inv *Inventory) Fill() {
	for len(inv.stacks) < inv.Slots {
		inv.stacks = append(inv.stacks, host.ItemStack{Code: "game:rock-junk", Quantity: inv.MaxStack})
	}
}
