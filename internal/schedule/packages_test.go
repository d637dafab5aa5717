package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

func section(course primitive.ObjectID, group string, slots ...models.TimeSlot) models.Section {
	return models.Section{
		ID:       primitive.NewObjectID(),
		CourseID: course,
		Kind:     models.KindTheory,
		Group:    group,
		Schedule: slots,
	}
}

func TestBuildPackagesRejectsBadSize(t *testing.T) {
	_, err := BuildPackages(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBuildPackagesFirstFit(t *testing.T) {
	// X and Y clash on Monday 1-2; Z is free on Tuesday.
	courseX := primitive.NewObjectID()
	courseY := primitive.NewObjectID()
	courseZ := primitive.NewObjectID()
	x := section(courseX, "A", slot("Monday", 1, 2))
	y := section(courseY, "A", slot("Monday", 1, 2))
	z := section(courseZ, "A", slot("Tuesday", 1, 2))

	packages, err := BuildPackages([]models.Section{x, y, z}, 2)
	require.NoError(t, err)
	require.Len(t, packages, 2)

	// Fuller bundle comes first after the size sort.
	assert.Equal(t, 2, packages[0].Size())
	assert.Equal(t, 1, packages[1].Size())

	// Every section placed exactly once.
	seen := map[primitive.ObjectID]int{}
	for _, pkg := range packages {
		for _, sec := range pkg.Sections {
			seen[sec.ID]++
		}
	}
	assert.Equal(t, map[primitive.ObjectID]int{x.ID: 1, y.ID: 1, z.ID: 1}, seen)
}

func TestBuildPackagesNoPairwiseConflicts(t *testing.T) {
	var sections []models.Section
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	for i := 0; i < 12; i++ {
		sections = append(sections, section(primitive.NewObjectID(), "A",
			slot(days[i%len(days)], 1+(i%5)*2, 2)))
	}

	packages, err := BuildPackages(sections, 4)
	require.NoError(t, err)

	for _, pkg := range packages {
		for i := range pkg.Sections {
			for j := i + 1; j < len(pkg.Sections); j++ {
				clash, err := SlotsConflict(pkg.Sections[i].Schedule, pkg.Sections[j].Schedule)
				require.NoError(t, err)
				assert.False(t, clash, "sections %s and %s share a package but clash",
					pkg.Sections[i].Code(), pkg.Sections[j].Code())
			}
		}
	}
}

func TestBuildPackagesDeterministic(t *testing.T) {
	var sections []models.Section
	for i := 0; i < 10; i++ {
		sections = append(sections, section(primitive.NewObjectID(), "A",
			slot("Monday", 1+i, 1)))
	}

	first, err := BuildPackages(sections, 3)
	require.NoError(t, err)
	second, err := BuildPackages(sections, 3)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Size(), second[i].Size())
		for j := range first[i].Sections {
			assert.Equal(t, first[i].Sections[j].ID, second[i].Sections[j].ID)
		}
	}
}

func TestBuildPackagesRespectsMaxSize(t *testing.T) {
	var sections []models.Section
	for i := 0; i < 7; i++ {
		// All disjoint, everything could share one package if unbounded.
		sections = append(sections, section(primitive.NewObjectID(), "A",
			slot("Monday", 1+i*2, 1)))
	}

	packages, err := BuildPackages(sections, 3)
	require.NoError(t, err)
	require.Len(t, packages, 3)
	for _, pkg := range packages {
		assert.LessOrEqual(t, pkg.Size(), 3)
	}
}

func TestBuildPackagesPropagatesInvalidSlot(t *testing.T) {
	bad := section(primitive.NewObjectID(), "A", slot("Monday", 1, 0))
	_, err := BuildPackages([]models.Section{bad}, 2)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}
