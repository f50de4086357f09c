package actionstr

import (
	"strings"
	"unicode"
)

// Command is one parsed action invocation.
type Command struct {
	ID   string
	Args []string
}

// String renders the command back into action-string form.
// Arguments that would not survive re-tokenizing as bare tokens are quoted.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.ID)
	for _, a := range c.Args {
		b.WriteByte(' ')
		if needsQuote(a) {
			b.WriteByte('\'')
			b.WriteString(a)
			b.WriteByte('\'')
			continue
		}
		b.WriteString(a)
	}
	return b.String()
}

// Parse splits s into its ordered commands.
//
// A quote only opens a quoted argument at the start of a token and only when
// a closing quote follows; otherwise it is an ordinary character of a bare
// token. Empty and whitespace-only commands are skipped.
func Parse(s string) []Command {
	var (
		cmds []Command
		toks []string
	)
	flush := func() {
		if len(toks) > 0 && toks[0] != "" {
			cmds = append(cmds, Command{ID: toks[0], Args: toks[1:]})
		}
		toks = nil
	}

	r := []rune(s)
	for i := 0; i < len(r); {
		c := r[i]
		if c == ';' {
			flush()
			i++
			continue
		}
		if unicode.IsSpace(c) {
			i++
			continue
		}
		if c == '\'' {
			if end := indexRune(r, i+1, '\''); end >= 0 {
				toks = append(toks, string(r[i+1:end]))
				i = end + 1
				continue
			}
		}
		j := i
		for j < len(r) && r[j] != ';' && !unicode.IsSpace(r[j]) {
			j++
		}
		toks = append(toks, string(r[i:j]))
		i = j
	}
	flush()

	return cmds
}

// Join renders commands as a single action string.
func Join(cmds []Command) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

func indexRune(r []rune, from int, want rune) int {
	for i := from; i < len(r); i++ {
		if r[i] == want {
			return i
		}
	}
	return -1
}

func needsQuote(a string) bool {
	if a == "" || strings.HasPrefix(a, "'") {
		return true
	}
	return strings.ContainsFunc(a, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
}
