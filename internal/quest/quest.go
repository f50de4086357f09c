package quest

import (
	"github.com/roach88/quester/internal/objective"
)

// Definition is a compiled quest.
type Definition struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title,omitempty"`
	GiverCode       string                 `json:"giver,omitempty"`
	Objectives      []objective.Descriptor `json:"objectives"`
	AcceptActions   []string               `json:"onAccept,omitempty"`
	CompleteActions []string               `json:"onComplete,omitempty"`
	ItemRewards     []Reward               `json:"rewards,omitempty"`
	RandomRewards   RandomPool             `json:"randomRewards,omitzero"`
	Predecessor     string                 `json:"predecessor,omitempty"`
	CooldownDays    float64                `json:"cooldownDays,omitempty"`
	AutoComplete    bool                   `json:"autoComplete,omitempty"`
}

// Reward is an item granted on completion. Weight only matters inside a
// random pool.
type Reward struct {
	Code   string  `json:"code"`
	Amount int     `json:"amount"`
	Weight float64 `json:"weight,omitempty"`
}

// RandomPool grants up to SelectAmount distinct items drawn by weight.
type RandomPool struct {
	SelectAmount int      `json:"select"`
	Items        []Reward `json:"items,omitempty"`
}

// Repeatable reports whether the quest may be accepted again after
// completion.
func (d *Definition) Repeatable() bool {
	return d.CooldownDays > 0
}

// ObjectiveIndex returns the index of the objective with the given id.
func (d *Definition) ObjectiveIndex(id string) (int, bool) {
	for i, o := range d.Objectives {
		if o.ID == id {
			return i, true
		}
	}
	return 0, false
}
