package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/quester/internal/host"
)

// Notification is one message delivered to a player.
type Notification struct {
	PlayerUID string
	Text      string
}

// Notifier records notifications in delivery order.
type Notifier struct {
	Sent []Notification
}

// Notify records text for p.
func (n *Notifier) Notify(p host.Player, text string) {
	n.Sent = append(n.Sent, Notification{PlayerUID: p.UID(), Text: text})
}

// Texts returns everything sent to uid.
func (n *Notifier) Texts(uid string) []string {
	var out []string
	for _, s := range n.Sent {
		if s.PlayerUID == uid {
			out = append(out, s.Text)
		}
	}
	return out
}

// Localizer formats templates from a fixed table. Unknown keys are returned
// unchanged with any arguments appended.
type Localizer struct {
	Strings map[string]string
}

// Lookup formats key from Strings.
func (l *Localizer) Lookup(key string, args ...any) string {
	if tmpl, ok := l.Strings[key]; ok {
		if len(args) == 0 {
			return tmpl
		}
		return fmt.Sprintf(tmpl, args...)
	}
	if len(args) == 0 {
		return key
	}
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

// Journal keeps entries per player.
type Journal struct {
	entries map[string][]host.JournalEntry
}

// AddEntry appends e to uid's journal.
func (j *Journal) AddEntry(uid string, e host.JournalEntry) {
	if j.entries == nil {
		j.entries = make(map[string][]host.JournalEntry)
	}
	j.entries[uid] = append(j.entries[uid], e)
}

// Entries returns uid's entries, filtered by loreCode unless it is empty.
func (j *Journal) Entries(uid, loreCode string) []host.JournalEntry {
	var out []host.JournalEntry
	for _, e := range j.entries[uid] {
		if loreCode == "" || e.LoreCode == loreCode {
			out = append(out, e)
		}
	}
	return out
}
