package landing

import "time"

// State is the editor session state.
type State string

const (
	StateViewing State = "viewing"
	StateEditing State = "editing"
	StateDirty   State = "dirty"
	StateSaving  State = "saving"
)

// LeaveDecision answers the save/discard prompt when leaving a dirty session.
type LeaveDecision string

const (
	LeaveUndecided LeaveDecision = ""
	LeaveSave      LeaveDecision = "save"
	LeaveDiscard   LeaveDecision = "discard"
)

// SessionView is what API clients see of an editor session.
type SessionView struct {
	ID         string                 `json:"id"`
	DocumentID string                 `json:"document_id"`
	State      State                  `json:"state"`
	Dirty      bool                   `json:"dirty"`
	Layout     string                 `json:"layout"`
	Fields     map[string]string      `json:"fields"`
	Images     map[string]ImageConfig `json:"images"` // defaults merged with overrides
	LastError  string                 `json:"last_error,omitempty"`
	SavedAt    *time.Time             `json:"saved_at,omitempty"`
}
