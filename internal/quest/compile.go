package quest

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/quester/internal/objective"
)

// CompileError is a definition error with its CUE source position.
type CompileError struct {
	Quest   string
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements error.
func (e *CompileError) Error() string {
	field := e.Field
	if e.Quest != "" {
		field = "quest." + e.Quest + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// CompileQuest turns the CUE value of one quest into a Definition. The quest
// id is the struct label unless the struct sets `id`.
//
//	v := ctx.CompileString(src)
//	def, err := CompileQuest(v.LookupPath(cue.ParsePath("quest.wolfhunt")))
func CompileQuest(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if id, ok, err := optionalString(v, "id"); err != nil {
		return nil, err
	} else if ok {
		def.ID = id
	}
	if def.ID == "" {
		return nil, &CompileError{Field: "id", Message: "quest id is required", Pos: v.Pos()}
	}

	wrap := func(err error) error {
		if ce, ok := err.(*CompileError); ok && ce.Quest == "" {
			ce.Quest = def.ID
		}
		return err
	}

	if def.Title, _, err = optionalString(v, "title"); err != nil {
		return nil, wrap(err)
	}
	if def.GiverCode, _, err = optionalString(v, "giver"); err != nil {
		return nil, wrap(err)
	}
	if def.Predecessor, _, err = optionalString(v, "predecessor"); err != nil {
		return nil, wrap(err)
	}
	if def.Objectives, err = parseObjectives(v); err != nil {
		return nil, wrap(err)
	}
	if def.AcceptActions, err = parseActionStrings(v, "onAccept"); err != nil {
		return nil, wrap(err)
	}
	if def.CompleteActions, err = parseActionStrings(v, "onComplete"); err != nil {
		return nil, wrap(err)
	}
	if def.ItemRewards, err = parseRewards(v.LookupPath(cue.ParsePath("rewards")), "rewards"); err != nil {
		return nil, wrap(err)
	}
	if def.RandomRewards, err = parseRandomPool(v); err != nil {
		return nil, wrap(err)
	}

	if cd := v.LookupPath(cue.ParsePath("cooldownDays")); cd.Exists() {
		if def.CooldownDays, err = cd.Float64(); err != nil || def.CooldownDays < 0 {
			return nil, wrap(&CompileError{Field: "cooldownDays", Message: "must be a non-negative number", Pos: cd.Pos()})
		}
	}
	if ac := v.LookupPath(cue.ParsePath("autoComplete")); ac.Exists() {
		if def.AutoComplete, err = ac.Bool(); err != nil {
			return nil, wrap(&CompileError{Field: "autoComplete", Message: "must be a bool", Pos: ac.Pos()})
		}
	}

	return def, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, &CompileError{Field: field, Message: "must be a string", Pos: f.Pos()}
	}
	return s, true, nil
}

func parseObjectives(v cue.Value) ([]objective.Descriptor, error) {
	list := v.LookupPath(cue.ParsePath("objectives"))
	if !list.Exists() {
		return nil, nil
	}
	iter, err := list.List()
	if err != nil {
		return nil, &CompileError{Field: "objectives", Message: "must be a list", Pos: list.Pos()}
	}

	var out []objective.Descriptor
	for i := 0; iter.Next(); i++ {
		ov := iter.Value()
		field := fmt.Sprintf("objectives[%d]", i)

		var d objective.Descriptor
		typ, ok, err := optionalString(ov, "type")
		if err != nil || !ok || typ == "" {
			return nil, &CompileError{Field: field + ".type", Message: "objective type is required", Pos: ov.Pos()}
		}
		d.Type = strings.ToLower(typ)
		if d.ID, _, err = optionalString(ov, "id"); err != nil {
			return nil, &CompileError{Field: field + ".id", Message: "must be a string", Pos: ov.Pos()}
		}
		if d.OnComplete, _, err = optionalString(ov, "onComplete"); err != nil {
			return nil, &CompileError{Field: field + ".onComplete", Message: "must be an action string", Pos: ov.Pos()}
		}
		if d.Args, err = parseArgs(ov.LookupPath(cue.ParsePath("args")), field+".args"); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// parseArgs accepts strings, numbers and bools and renders them as strings.
func parseArgs(v cue.Value, field string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list", Pos: v.Pos()}
	}
	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := scalarString(iter.Value())
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("%s[%d]", field, i), Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

func scalarString(v cue.Value) (string, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	default:
		return "", fmt.Errorf("must be a string, number or bool")
	}
}

// parseActionStrings accepts a single action string or a list of them.
func parseActionStrings(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	if s, err := f.String(); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return []string{s}, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be an action string or a list of them", Pos: f.Pos()}
	}
	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "must be an action string", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

func parseRewards(v cue.Value, field string) ([]Reward, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list", Pos: v.Pos()}
	}
	var out []Reward
	for i := 0; iter.Next(); i++ {
		rv := iter.Value()
		f := fmt.Sprintf("%s[%d]", field, i)

		r := Reward{Amount: 1, Weight: 1}
		code, ok, err := optionalString(rv, "code")
		if err != nil || !ok || code == "" {
			return nil, &CompileError{Field: f + ".code", Message: "reward code is required", Pos: rv.Pos()}
		}
		r.Code = code
		if a := rv.LookupPath(cue.ParsePath("amount")); a.Exists() {
			n, err := a.Int64()
			if err != nil || n <= 0 {
				return nil, &CompileError{Field: f + ".amount", Message: "must be a positive integer", Pos: a.Pos()}
			}
			r.Amount = int(n)
		}
		if w := rv.LookupPath(cue.ParsePath("weight")); w.Exists() {
			wf, err := w.Float64()
			if err != nil || wf <= 0 {
				return nil, &CompileError{Field: f + ".weight", Message: "must be a positive number", Pos: w.Pos()}
			}
			r.Weight = wf
		}
		out = append(out, r)
	}
	return out, nil
}

func parseRandomPool(v cue.Value) (RandomPool, error) {
	var pool RandomPool
	rv := v.LookupPath(cue.ParsePath("randomRewards"))
	if !rv.Exists() {
		return pool, nil
	}
	sel := rv.LookupPath(cue.ParsePath("select"))
	if sel.Exists() {
		n, err := sel.Int64()
		if err != nil || n < 0 {
			return pool, &CompileError{Field: "randomRewards.select", Message: "must be a non-negative integer", Pos: sel.Pos()}
		}
		pool.SelectAmount = int(n)
	}
	items, err := parseRewards(rv.LookupPath(cue.ParsePath("items")), "randomRewards.items")
	if err != nil {
		return pool, err
	}
	pool.Items = items
	if !sel.Exists() {
		pool.SelectAmount = min(1, len(items))
	}
	return pool, nil
}

// formatCUEError keeps the position of the first CUE error.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
