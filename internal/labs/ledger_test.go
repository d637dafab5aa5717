package labs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

func TestLedgerSeedsFromEnrolledCount(t *testing.T) {
	sec := models.Section{ID: primitive.NewObjectID(), Capacity: 2, EnrolledCount: 1}
	ledger := NewCapacityLedger([]models.Section{sec})

	assert.True(t, ledger.HasSeat(sec.ID))
	assert.Equal(t, 1, ledger.Used(sec.ID))

	require.NoError(t, ledger.Reserve(sec.ID))
	assert.False(t, ledger.HasSeat(sec.ID))
	assert.Equal(t, 2, ledger.Used(sec.ID))
}

func TestLedgerFullSection(t *testing.T) {
	sec := models.Section{ID: primitive.NewObjectID(), Capacity: 1, EnrolledCount: 1}
	ledger := NewCapacityLedger([]models.Section{sec})

	assert.False(t, ledger.HasSeat(sec.ID))
	err := ledger.Reserve(sec.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, ledger.Used(sec.ID))
}

func TestLedgerUnknownSectionHasNoSeat(t *testing.T) {
	ledger := NewCapacityLedger(nil)
	unknown := primitive.NewObjectID()

	assert.False(t, ledger.HasSeat(unknown))
	assert.ErrorIs(t, ledger.Reserve(unknown), ErrCapacityExceeded)
}

func TestLedgerZeroCapacity(t *testing.T) {
	sec := models.Section{ID: primitive.NewObjectID(), Capacity: 0}
	ledger := NewCapacityLedger([]models.Section{sec})
	assert.False(t, ledger.HasSeat(sec.ID))
}
