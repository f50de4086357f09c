package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/objective"
)

// OnEntityDeath forwards a kill by p to its kill objectives.
func (d *Driver) OnEntityDeath(ctx context.Context, p host.Player, victim host.Entity) {
	if victim == nil {
		return
	}
	d.dispatch(ctx, p, func(c *objective.Context, o objective.Objective) bool {
		l, ok := o.(objective.KillListener)
		return ok && l.OnKill(c, p, victim, c.Objective.Args)
	})
}

// OnBlockBroken forwards a block broken by p to its block objectives.
func (d *Driver) OnBlockBroken(ctx context.Context, p host.Player, pos host.BlockPos, code string) {
	d.onBlock(ctx, p, objective.BlockEvent{Kind: objective.BlockBreak, Pos: pos, Code: code})
}

// OnBlockPlaced forwards a block placed by p.
func (d *Driver) OnBlockPlaced(ctx context.Context, p host.Player, pos host.BlockPos, code string) {
	d.onBlock(ctx, p, objective.BlockEvent{Kind: objective.BlockPlace, Pos: pos, Code: code})
}

// OnBlockInteract forwards a block interaction by p.
func (d *Driver) OnBlockInteract(ctx context.Context, p host.Player, pos host.BlockPos, code string) {
	d.onBlock(ctx, p, objective.BlockEvent{Kind: objective.BlockInteract, Pos: pos, Code: code})
}

func (d *Driver) onBlock(ctx context.Context, p host.Player, ev objective.BlockEvent) {
	d.dispatch(ctx, p, func(c *objective.Context, o objective.Objective) bool {
		l, ok := o.(objective.BlockListener)
		return ok && l.OnBlock(c, p, ev, c.Objective.Args)
	})
}

// OnEntityInteract forwards p interacting with target.
func (d *Driver) OnEntityInteract(ctx context.Context, p host.Player, target host.Entity) {
	if target == nil {
		return
	}
	d.dispatch(ctx, p, func(c *objective.Context, o objective.Objective) bool {
		l, ok := o.(objective.EntityInteractListener)
		return ok && l.OnEntityInteract(c, p, target, c.Objective.Args)
	})
}

// dispatch runs fn over every active quest of p. Orphaned records are left
// for the next tick to clean up.
func (d *Driver) dispatch(ctx context.Context, p host.Player, fn visitFunc) {
	active, err := d.mgr.ActiveQuests(ctx, p.UID())
	if err != nil {
		d.logger.Error("loading quest log failed", "player", p.UID(), "error", err)
		return
	}
	for _, aq := range active {
		def, ok := d.mgr.Quests().Get(aq.QuestID)
		if !ok {
			continue
		}
		d.visit(ctx, p, aq, def, fn, nil)
	}
}

// OnPlayerJoin migrates legacy attribute keys and loads the quest log.
func (d *Driver) OnPlayerJoin(ctx context.Context, p host.Player) error {
	moved := attr.Migrate(p.Attributes(), d.legacyNamespaces)
	if moved > 0 {
		d.logger.Info("migrated legacy quest attributes", "player", p.UID(), "keys", moved)
	}
	log, err := d.mgr.Log(ctx, p.UID())
	if err != nil {
		return err
	}
	d.logger.Debug("player joined",
		"player", p.UID(),
		"active", len(log.Active),
		"completed", len(log.Completed))
	return nil
}

// OnPlayerDisconnect saves the player and drops the cached log.
func (d *Driver) OnPlayerDisconnect(ctx context.Context, p host.Player) error {
	err := d.mgr.SavePlayer(ctx, p)
	d.mgr.Evict(p.UID())
	if err != nil {
		return fmt.Errorf("disconnect %s: %w", p.UID(), err)
	}
	return nil
}

// OnWorldSave saves every connected player and every cached log.
func (d *Driver) OnWorldSave(ctx context.Context) error {
	var errs []error
	if d.world != nil {
		for _, p := range d.world.Players() {
			if err := d.mgr.SavePlayer(ctx, p); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := d.mgr.SaveAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
