package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// evaluate runs every assertion and returns the failure messages.
func (h *harness) evaluate(ctx context.Context, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.check(ctx, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return failures
}

func (h *harness) check(ctx context.Context, a Assertion) error {
	uid := h.player.UID()
	switch a.Type {
	case AssertActive:
		active, err := h.app.Manager.ActiveQuests(ctx, uid)
		if err != nil {
			return err
		}
		got := make([]string, 0, len(active))
		for _, aq := range active {
			got = append(got, aq.QuestID)
		}
		want := slices.Clone(a.Quests)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return fmt.Errorf("expected %v, got %v", want, got)
		}
	case AssertCompleted:
		done, err := h.app.Manager.Completed(ctx, uid)
		if err != nil {
			return err
		}
		for _, q := range a.Quests {
			if !slices.Contains(done, q) {
				return fmt.Errorf("%s not completed (completed: %v)", q, done)
			}
		}
	case AssertAttr:
		v, ok := h.player.Attrs.Get(a.Key)
		if !ok {
			return fmt.Errorf("attribute %s is not set", a.Key)
		}
		if v.String() != a.Value {
			return fmt.Errorf("attribute %s: expected %q, got %q", a.Key, a.Value, v.String())
		}
	case AssertNotified:
		for _, text := range h.notes.Texts(uid) {
			if strings.Contains(text, a.Text) {
				return nil
			}
		}
		return fmt.Errorf("no notification contains %q", a.Text)
	case AssertInventory:
		if got := h.player.Inv.Count(a.Code); got != a.Amount {
			return fmt.Errorf("expected %d of %s, got %d", a.Amount, a.Code, got)
		}
	}
	return nil
}
