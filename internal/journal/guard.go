package journal

import (
	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/models"
)

// Decision reasons
const (
	ReasonEdit         = "edit"
	ReasonWindowOpen   = "window open"
	ReasonWindowClosed = "window closed"
)

// Decision is the guard's verdict on a create-or-update request.
type Decision struct {
	Allowed bool                `json:"allowed"`
	Reason  string              `json:"reason"`
	Kind    constants.EntryKind `json:"kind"`
	Window  clock.Window        `json:"-"`
	Status  clock.WindowStatus  `json:"status"`
}

// AuthorizePost allows edits at any time and creates only while the window is open.
func AuthorizePost(kind constants.EntryKind, existing *models.JournalEntry, status clock.WindowStatus, w clock.Window) Decision {
	d := Decision{Kind: kind, Window: w, Status: status}
	switch {
	case existing != nil:
		d.Allowed = true
		d.Reason = ReasonEdit
	case status == clock.StatusOpen:
		d.Allowed = true
		d.Reason = ReasonWindowOpen
	default:
		d.Reason = ReasonWindowClosed
	}
	return d
}

// Err returns nil for an allowed decision, else a WindowClosedError carrying
// the window boundaries.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &grerrors.WindowClosedError{
		Kind:   string(d.Kind),
		Status: string(d.Status),
		Opens:  d.Window.OpensAt(),
		Closes: d.Window.ClosesAt(),
	}
}
