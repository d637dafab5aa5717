package schedule

import (
	"errors"
	"fmt"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

// ErrInvalidSlot is returned for a malformed time slot (unknown day,
// non-positive duration or start hour out of the 1-15 grid).
var ErrInvalidSlot = errors.New("invalid time slot")

// MinHour and MaxHour bound the academic-hour grid of one day.
const (
	MinHour = 1
	MaxHour = 15
)

var dayIndex = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
}

// Cell is one (day, academic hour) square of the weekly grid, the atomic
// unit of schedule comparison.
type Cell struct {
	Day  string
	Hour int
}

// CellSet holds the cells occupied by one entity's schedule.
type CellSet map[Cell]struct{}

// OccupiedCells expands a schedule into the set of grid cells it covers.
// A slot of duration D starting at hour H covers H..H+D-1 on its day.
func OccupiedCells(slots []models.TimeSlot) (CellSet, error) {
	cells := make(CellSet)
	for _, slot := range slots {
		if _, ok := dayIndex[slot.Day]; !ok {
			return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidSlot, slot.Day)
		}
		if slot.Duration < 1 {
			return nil, fmt.Errorf("%w: duration %d on %s", ErrInvalidSlot, slot.Duration, slot.Day)
		}
		if slot.StartHour < MinHour {
			return nil, fmt.Errorf("%w: start hour %d on %s", ErrInvalidSlot, slot.StartHour, slot.Day)
		}
		if slot.StartHour+slot.Duration-1 > MaxHour {
			return nil, fmt.Errorf("%w: slot runs past hour %d on %s", ErrInvalidSlot, MaxHour, slot.Day)
		}
		for h := slot.StartHour; h < slot.StartHour+slot.Duration; h++ {
			cells[Cell{Day: slot.Day, Hour: h}] = struct{}{}
		}
	}
	return cells, nil
}

// Conflicts reports whether two cell sets share at least one cell.
func Conflicts(a, b CellSet) bool {
	// iterate over the smaller set
	if len(b) < len(a) {
		a, b = b, a
	}
	for cell := range a {
		if _, ok := b[cell]; ok {
			return true
		}
	}
	return false
}

// SlotsConflict is a convenience wrapper for comparing two raw schedules.
func SlotsConflict(a, b []models.TimeSlot) (bool, error) {
	ca, err := OccupiedCells(a)
	if err != nil {
		return false, err
	}
	cb, err := OccupiedCells(b)
	if err != nil {
		return false, err
	}
	return Conflicts(ca, cb), nil
}

// Merge adds every cell of other into s.
func (s CellSet) Merge(other CellSet) {
	for cell := range other {
		s[cell] = struct{}{}
	}
}
