// Package actionstr tokenizes action strings.
//
// An action string is the small command language quest definitions use to
// describe side-effects:
//
//	giveitem game:gear-rusty 2; notify 'You found some gears'; completequest
//
// Commands are separated by semicolons. Each command is an action id followed
// by positional arguments. An argument is either a bare token delimited by
// whitespace or a single-quoted string that may contain whitespace and
// semicolons. Quotes are stripped; there are no escape sequences.
//
// Parsing is total: malformed input degrades to fewer (or zero) commands and
// never returns an error. Resolving action ids happens at dispatch time.
package actionstr
