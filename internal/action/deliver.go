package action

import (
	"github.com/roach88/quester/internal/host"
)

// Deliver puts stack into the player's inventory and spawns whatever does not
// fit at the quest giver's position, or at the player's when the giver is
// gone. Items are never dropped silently: a failed spawn returns
// ErrCodeDeliveryFailed.
func Deliver(env *Env, p host.Player, giverID int64, stack host.ItemStack) error {
	if stack.Quantity <= 0 {
		return nil
	}
	left := p.Inventory().Give(stack)
	if left <= 0 {
		return nil
	}

	pos := p.Position()
	if giverID != 0 && env.World != nil {
		if giver, ok := env.World.Entity(giverID); ok {
			pos = giver.Position()
		}
	}

	rest := host.ItemStack{Code: stack.Code, Quantity: left}
	if env.World == nil {
		return &Error{Code: ErrCodeDeliveryFailed, Message: "inventory full and no world to spawn " + rest.Code}
	}
	if err := env.World.SpawnItem(rest, pos); err != nil {
		return &Error{
			Code:    ErrCodeDeliveryFailed,
			Message: "inventory full and spawn failed for " + rest.Code,
			Err:     err,
		}
	}
	env.logger().Debug("inventory full, reward spawned in world",
		"player", p.UID(),
		"item", rest.Code,
		"quantity", rest.Quantity)
	return nil
}
