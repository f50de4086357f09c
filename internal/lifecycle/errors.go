package lifecycle

import "errors"

var (
	// ErrAlreadyActive is returned when accepting a quest that is active.
	ErrAlreadyActive = errors.New("quest already active")

	// ErrNotActive is returned when completing or abandoning a quest that is
	// not active.
	ErrNotActive = errors.New("quest not active")

	// ErrNotCompletable is returned when a quest's objectives are not all met.
	ErrNotCompletable = errors.New("quest objectives not met")

	// ErrUnknownQuest is returned for quest ids missing from the registry.
	ErrUnknownQuest = errors.New("unknown quest")

	// ErrPredecessorMissing is returned when the predecessor quest has not
	// been completed.
	ErrPredecessorMissing = errors.New("predecessor quest not completed")

	// ErrOnCooldown is returned when a repeatable quest is accepted again
	// before its cooldown has elapsed.
	ErrOnCooldown = errors.New("quest on cooldown")

	// ErrAlreadyCompleted is returned when accepting a completed quest that
	// is not repeatable.
	ErrAlreadyCompleted = errors.New("quest already completed")
)
