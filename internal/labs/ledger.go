package labs

import (
	"errors"
	"fmt"

	"github.com/JPostigo48/TI2project-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrCapacityExceeded signals an attempt to fill a seat in a section that
// has none left, in the ledger or in the store. Fatal to that assignment
// step only.
var ErrCapacityExceeded = errors.New("section capacity exceeded")

// CapacityLedger tracks seats consumed during one assignment run. It seeds
// itself from the persisted enrolledCount so a re-run after a partial
// failure picks up where the store left off. Append-only: there is no
// release, runs never un-assign.
type CapacityLedger struct {
	capacity map[primitive.ObjectID]int
	used     map[primitive.ObjectID]int
}

func NewCapacityLedger(sections []models.Section) *CapacityLedger {
	l := &CapacityLedger{
		capacity: make(map[primitive.ObjectID]int, len(sections)),
		used:     make(map[primitive.ObjectID]int, len(sections)),
	}
	for _, sec := range sections {
		l.capacity[sec.ID] = sec.Capacity
		l.used[sec.ID] = sec.EnrolledCount
	}
	return l
}

// HasSeat reports whether the section still has a free seat. Unknown
// sections have no seats.
func (l *CapacityLedger) HasSeat(sectionID primitive.ObjectID) bool {
	cap, ok := l.capacity[sectionID]
	if !ok {
		return false
	}
	return l.used[sectionID] < cap
}

// Reserve consumes one seat. Callers must have checked HasSeat within the
// same decision; reserving past capacity fails loudly.
func (l *CapacityLedger) Reserve(sectionID primitive.ObjectID) error {
	if !l.HasSeat(sectionID) {
		return fmt.Errorf("%w: section %s (%d/%d)", ErrCapacityExceeded,
			sectionID.Hex(), l.used[sectionID], l.capacity[sectionID])
	}
	l.used[sectionID]++
	return nil
}

// Used returns the seats consumed so far for a section, persisted plus
// reserved in this run.
func (l *CapacityLedger) Used(sectionID primitive.ObjectID) int {
	return l.used[sectionID]
}
