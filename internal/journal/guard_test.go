package journal

import (
	"errors"
	"testing"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/models"
)

func TestAuthorizePost(t *testing.T) {
	morning := clock.DefaultPolicy().Morning
	existing := &models.JournalEntry{ID: "e1"}

	tests := []struct {
		name     string
		existing *models.JournalEntry
		status   clock.WindowStatus
		allowed  bool
		reason   string
	}{
		{"edit before window", existing, clock.StatusBefore, true, ReasonEdit},
		{"edit after window", existing, clock.StatusAfter, true, ReasonEdit},
		{"edit inside window", existing, clock.StatusOpen, true, ReasonEdit},
		{"create inside window", nil, clock.StatusOpen, true, ReasonWindowOpen},
		{"create before window", nil, clock.StatusBefore, false, ReasonWindowClosed},
		{"create after window", nil, clock.StatusAfter, false, ReasonWindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AuthorizePost(constants.EntryMorning, tt.existing, tt.status, morning)
			if d.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.allowed)
			}
			if d.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.reason)
			}
			if (d.Err() == nil) != tt.allowed {
				t.Errorf("Err() = %v, allowed %v", d.Err(), tt.allowed)
			}
		})
	}
}

func TestDecisionErrCarriesBoundaries(t *testing.T) {
	evening := clock.DefaultPolicy().Evening
	err := AuthorizePost(constants.EntryEvening, nil, clock.StatusBefore, evening).Err()

	var wc *grerrors.WindowClosedError
	if !errors.As(err, &wc) {
		t.Fatalf("expected WindowClosedError, got %v", err)
	}
	if wc.Opens != "18:00" || wc.Closes != "24:00" {
		t.Errorf("boundaries = %s-%s, want 18:00-24:00", wc.Opens, wc.Closes)
	}
	if wc.Kind != "evening" || wc.Status != "before" {
		t.Errorf("kind/status = %s/%s", wc.Kind, wc.Status)
	}
}
