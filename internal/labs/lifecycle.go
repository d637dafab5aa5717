package labs

import (
	"errors"
	"fmt"
	"time"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

// ErrInvalidPhaseTransition is returned for any out-of-order lifecycle call.
var ErrInvalidPhaseTransition = errors.New("invalid lab phase transition")

func transitionError(current models.LabPhaseStatus, requested models.LabPhaseStatus) error {
	return fmt.Errorf("%w: cannot go to %q from %q", ErrInvalidPhaseTransition, requested, current)
}

// OpenPhase moves a semester's lab enrollment from not_started to open,
// enabling preference submission. Forward-only, like every transition here;
// failed calls are never retried automatically.
func OpenPhase(phase *models.LabEnrollmentPhase, now time.Time) error {
	if phase.Status != models.LabPhaseNotStarted && phase.Status != "" {
		return transitionError(phase.Status, models.LabPhaseOpen)
	}
	phase.Status = models.LabPhaseOpen
	phase.OpenedAt = &now
	return nil
}

// ClosePhase moves open to processing, freezing preferences.
func ClosePhase(phase *models.LabEnrollmentPhase, now time.Time) error {
	if phase.Status != models.LabPhaseOpen {
		return transitionError(phase.Status, models.LabPhaseProcessing)
	}
	phase.Status = models.LabPhaseProcessing
	phase.ClosedAt = &now
	return nil
}

// FinishPhase moves processing to processed, after the assignment run.
func FinishPhase(phase *models.LabEnrollmentPhase, now time.Time) error {
	if phase.Status != models.LabPhaseProcessing {
		return transitionError(phase.Status, models.LabPhaseProcessed)
	}
	phase.Status = models.LabPhaseProcessed
	phase.ProcessedAt = &now
	return nil
}

// CanSubmitPreferences reports whether students may still edit preferences.
func CanSubmitPreferences(phase models.LabEnrollmentPhase) bool {
	return phase.Status == models.LabPhaseOpen
}

// CanPreprocess reports whether the conservative single-option pass may run.
// Allowed while preferences are still open and after closing, never after
// the final pass has sealed the semester.
func CanPreprocess(phase models.LabEnrollmentPhase) bool {
	return phase.Status == models.LabPhaseOpen || phase.Status == models.LabPhaseProcessing
}

// CanAssign reports whether the full assignment pass may run.
func CanAssign(phase models.LabEnrollmentPhase) bool {
	return phase.Status == models.LabPhaseProcessing
}
