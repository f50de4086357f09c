package quest

import (
	"slices"
	"time"
)

// ActiveQuest is a player's in-progress instance of a quest. Tracker state
// lives in the player's attribute store, not here.
type ActiveQuest struct {
	InstanceID string    `json:"instanceId"`
	QuestID    string    `json:"questId"`
	GiverID    int64     `json:"giverId"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// PlayerLog is the persisted quest state of one player.
type PlayerLog struct {
	PlayerUID string               `json:"player"`
	Active    []ActiveQuest        `json:"active"`
	Completed map[string]time.Time `json:"completed"`
}

// NewPlayerLog returns an empty log for uid.
func NewPlayerLog(uid string) *PlayerLog {
	return &PlayerLog{PlayerUID: uid, Completed: make(map[string]time.Time)}
}

// ActiveQuest returns the active record for questID.
func (l *PlayerLog) ActiveQuest(questID string) (ActiveQuest, bool) {
	for _, aq := range l.Active {
		if aq.QuestID == questID {
			return aq, true
		}
	}
	return ActiveQuest{}, false
}

// IsActive reports whether questID has an active record.
func (l *PlayerLog) IsActive(questID string) bool {
	_, ok := l.ActiveQuest(questID)
	return ok
}

// AddActive appends aq unless the quest is already active.
func (l *PlayerLog) AddActive(aq ActiveQuest) bool {
	if l.IsActive(aq.QuestID) {
		return false
	}
	l.Active = append(l.Active, aq)
	return true
}

// RemoveActive drops the active record for questID.
func (l *PlayerLog) RemoveActive(questID string) bool {
	n := len(l.Active)
	l.Active = slices.DeleteFunc(l.Active, func(aq ActiveQuest) bool { return aq.QuestID == questID })
	return len(l.Active) != n
}

// IsCompleted reports whether questID was ever completed.
func (l *PlayerLog) IsCompleted(questID string) bool {
	_, ok := l.Completed[questID]
	return ok
}

// CompletedAt returns when questID was last completed.
func (l *PlayerLog) CompletedAt(questID string) (time.Time, bool) {
	t, ok := l.Completed[questID]
	return t, ok
}

// MarkCompleted records a completion of questID at at.
func (l *PlayerLog) MarkCompleted(questID string, at time.Time) {
	if l.Completed == nil {
		l.Completed = make(map[string]time.Time)
	}
	l.Completed[questID] = at
}

// ClearCompleted forgets the completion of questID. It reports whether
// there was one.
func (l *PlayerLog) ClearCompleted(questID string) bool {
	if _, ok := l.Completed[questID]; !ok {
		return false
	}
	delete(l.Completed, questID)
	return true
}

// CompletedIDs returns completed quest ids sorted.
func (l *PlayerLog) CompletedIDs() []string {
	ids := make([]string, 0, len(l.Completed))
	for id := range l.Completed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy.
func (l *PlayerLog) Clone() *PlayerLog {
	c := &PlayerLog{
		PlayerUID: l.PlayerUID,
		Active:    slices.Clone(l.Active),
		Completed: make(map[string]time.Time, len(l.Completed)),
	}
	for k, v := range l.Completed {
		c.Completed[k] = v
	}
	return c
}
