package labs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

type fakeCommitter struct {
	records []models.Enrollment
	failFor map[primitive.ObjectID]bool // section ids whose commit fails
}

func (f *fakeCommitter) Commit(_ context.Context, rec models.Enrollment) error {
	if f.failFor[rec.SectionID] {
		return fmt.Errorf("store unavailable")
	}
	f.records = append(f.records, rec)
	return nil
}

type fixture struct {
	semesterID primitive.ObjectID
	sections   []models.Section
	enrolls    []models.Enrollment
	students   []models.User
}

func newFixture() *fixture {
	return &fixture{semesterID: primitive.NewObjectID()}
}

func (f *fixture) student(code string) models.User {
	u := models.User{ID: primitive.NewObjectID(), Code: code, Role: models.RoleStudent}
	f.students = append(f.students, u)
	return u
}

func (f *fixture) section(course primitive.ObjectID, kind models.SectionKind, group string,
	capacity, enrolled int, slots ...models.TimeSlot) models.Section {

	sec := models.Section{
		ID:            primitive.NewObjectID(),
		CourseID:      course,
		SemesterID:    f.semesterID,
		Kind:          kind,
		Group:         group,
		Capacity:      capacity,
		EnrolledCount: enrolled,
		Schedule:      slots,
	}
	f.sections = append(f.sections, sec)
	return sec
}

func (f *fixture) enroll(student models.User, sec models.Section, prefs ...primitive.ObjectID) {
	f.enrolls = append(f.enrolls, models.Enrollment{
		ID:             primitive.NewObjectID(),
		StudentID:      student.ID,
		SectionID:      sec.ID,
		SemesterID:     f.semesterID,
		Status:         models.StatusEnrolled,
		LabPreferences: prefs,
	})
}

func (f *fixture) input() AssignmentInput {
	return AssignmentInput{
		SemesterID:  f.semesterID,
		Sections:    f.sections,
		Enrollments: f.enrolls,
		Students:    f.students,
	}
}

func slot(day string, start, duration int) models.TimeSlot {
	return models.TimeSlot{Day: day, StartHour: start, Duration: duration}
}

func TestAssignSkipsConflictingPreference(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	l1 := f.section(course, models.KindLab, "A", 1, 0, slot("Monday", 2, 1)) // clashes with theory
	l2 := f.section(course, models.KindLab, "B", 1, 0, slot("Monday", 5, 1))

	s := f.student("20230001")
	f.enroll(s, theory, l1.ID, l2.ID)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, l2.ID, summary.Assigned[0].SectionID)
	assert.True(t, summary.Assigned[0].ViaPreference)
	assert.Empty(t, summary.Unassigned)
	require.Len(t, c.records, 1)
	assert.Equal(t, s.ID, c.records[0].StudentID)
}

func TestAssignDefaultRankingIsReversed(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	f.section(course, models.KindLab, "A", 5, 0, slot("Tuesday", 1, 2))
	labB := f.section(course, models.KindLab, "B", 5, 0, slot("Wednesday", 1, 2))

	s := f.student("20230001")
	f.enroll(s, theory) // no preferences

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	// "B" ranks before "A" under the reversed group order.
	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, labB.ID, summary.Assigned[0].SectionID)
	assert.False(t, summary.Assigned[0].ViaPreference)
}

func TestAssignDefaultRankingFallsBackWhenFull(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	labA := f.section(course, models.KindLab, "A", 5, 0, slot("Tuesday", 1, 2))
	f.section(course, models.KindLab, "B", 1, 1, slot("Wednesday", 1, 2)) // full

	s := f.student("20230001")
	f.enroll(s, theory)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, labA.ID, summary.Assigned[0].SectionID)
}

func TestAssignSkipsFullSectionRegardlessOfConflict(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	full := f.section(course, models.KindLab, "A", 1, 1, slot("Friday", 1, 2)) // free time, no seat

	s := f.student("20230001")
	f.enroll(s, theory, full.ID)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	require.Len(t, summary.Unassigned, 1)
	assert.Equal(t, s.ID, summary.Unassigned[0].StudentID)
	assert.Equal(t, course, summary.Unassigned[0].CourseID)
}

func TestAssignCatchesCrossCourseLabConflicts(t *testing.T) {
	f := newFixture()
	courseA := primitive.NewObjectID()
	courseB := primitive.NewObjectID()
	theoryA := f.section(courseA, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	theoryB := f.section(courseB, models.KindTheory, "A", 30, 1, slot("Tuesday", 1, 2))
	// Both courses only offer a lab in the same block.
	f.section(courseA, models.KindLab, "A", 5, 0, slot("Friday", 3, 2))
	f.section(courseB, models.KindLab, "A", 5, 0, slot("Friday", 3, 2))

	s := f.student("20230001")
	f.enroll(s, theoryA)
	f.enroll(s, theoryB)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	// One lab lands, the other clashes with it and stays unassigned.
	assert.Len(t, summary.Assigned, 1)
	assert.Len(t, summary.Unassigned, 1)
}

func TestAssignRespectsCapacityAcrossStudents(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 3, slot("Monday", 1, 2))
	lab := f.section(course, models.KindLab, "A", 2, 0, slot("Friday", 1, 2))

	for i := 1; i <= 3; i++ {
		s := f.student(fmt.Sprintf("2023000%d", i))
		f.enroll(s, theory)
	}

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	assert.Len(t, summary.Assigned, 2)
	assert.Len(t, summary.Unassigned, 1)
	// Never more commits than seats.
	assert.LessOrEqual(t, len(c.records), lab.Capacity)
}

func TestAssignProcessesStudentsInCodeOrder(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 2, slot("Monday", 1, 2))
	f.section(course, models.KindLab, "A", 1, 0, slot("Friday", 1, 2))

	late := f.student("20230099")
	early := f.student("20230001")
	f.enroll(late, theory)
	f.enroll(early, theory)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, early.ID, summary.Assigned[0].StudentID)
	require.Len(t, summary.Unassigned, 1)
	assert.Equal(t, late.ID, summary.Unassigned[0].StudentID)
}

func TestAssignIsIdempotent(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	lab := f.section(course, models.KindLab, "A", 2, 0, slot("Friday", 1, 2))

	s := f.student("20230001")
	f.enroll(s, theory)

	c := &fakeCommitter{}
	engine := NewEngine(nil)
	first, err := engine.Assign(context.Background(), f.input(), c)
	require.NoError(t, err)
	require.Len(t, first.Assigned, 1)

	// Second run sees the state the first one committed.
	for i := range f.sections {
		if f.sections[i].ID == lab.ID {
			f.sections[i].EnrolledCount++
		}
	}
	f.enrolls = append(f.enrolls, c.records...)

	second, err := engine.Assign(context.Background(), f.input(), c)
	require.NoError(t, err)
	assert.Empty(t, second.Assigned)
	assert.Empty(t, second.Unassigned)
	assert.Equal(t, 1, second.AlreadySet)
	assert.Len(t, c.records, 1)
}

func TestAssignContinuesAfterCommitFailure(t *testing.T) {
	f := newFixture()
	courseA := primitive.NewObjectID()
	courseB := primitive.NewObjectID()
	theoryA := f.section(courseA, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	theoryB := f.section(courseB, models.KindTheory, "A", 30, 1, slot("Tuesday", 1, 2))
	labA := f.section(courseA, models.KindLab, "A", 5, 0, slot("Friday", 1, 2))
	labB := f.section(courseB, models.KindLab, "A", 5, 0, slot("Friday", 5, 2))

	s := f.student("20230001")
	f.enroll(s, theoryA)
	f.enroll(s, theoryB)

	c := &fakeCommitter{failFor: map[primitive.ObjectID]bool{labA.ID: true}}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	require.Len(t, summary.Failed, 1)
	assert.Equal(t, labA.ID, summary.Failed[0].SectionID)
	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, labB.ID, summary.Assigned[0].SectionID)
}

func TestAssignIgnoresPreferencesOutsideCourse(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	other := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	f.section(course, models.KindLab, "A", 5, 0, slot("Friday", 1, 2))
	foreign := f.section(other, models.KindLab, "A", 5, 0, slot("Friday", 5, 2))

	s := f.student("20230001")
	// Only preference points at another course's lab: nothing valid remains
	// and the default ranking does not kick in for a stated preference.
	f.enroll(s, theory, foreign.ID)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	assert.Len(t, summary.Unassigned, 1)
}

func TestPreprocessAssignsOnlyUnambiguousCases(t *testing.T) {
	f := newFixture()
	oneOption := primitive.NewObjectID()
	twoOptions := primitive.NewObjectID()
	theory1 := f.section(oneOption, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	theory2 := f.section(twoOptions, models.KindTheory, "A", 30, 1, slot("Tuesday", 1, 2))
	onlyLab := f.section(oneOption, models.KindLab, "A", 5, 0, slot("Friday", 1, 2))
	f.section(twoOptions, models.KindLab, "A", 5, 0, slot("Thursday", 1, 2))
	f.section(twoOptions, models.KindLab, "B", 5, 0, slot("Thursday", 5, 2))

	s := f.student("20230001")
	f.enroll(s, theory1)
	f.enroll(s, theory2)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Preprocess(context.Background(), f.input(), c)
	require.NoError(t, err)

	// The single-option course is settled, the two-option one left alone.
	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, onlyLab.ID, summary.Assigned[0].SectionID)
	assert.Empty(t, summary.Unassigned)
}

func TestPreprocessLeavesHopelessPairsAlone(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 1, slot("Monday", 1, 2))
	f.section(course, models.KindLab, "A", 1, 1, slot("Friday", 1, 2)) // full

	s := f.student("20230001")
	f.enroll(s, theory)

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Preprocess(context.Background(), f.input(), c)
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	assert.Empty(t, summary.Unassigned) // the full pass will report it
}

func TestAssignIgnoresDroppedEnrollments(t *testing.T) {
	f := newFixture()
	course := primitive.NewObjectID()
	theory := f.section(course, models.KindTheory, "A", 30, 0, slot("Monday", 1, 2))
	f.section(course, models.KindLab, "A", 5, 0, slot("Friday", 1, 2))

	s := f.student("20230001")
	f.enrolls = append(f.enrolls, models.Enrollment{
		StudentID:  s.ID,
		SectionID:  theory.ID,
		SemesterID: f.semesterID,
		Status:     models.StatusDropped,
	})

	c := &fakeCommitter{}
	summary, err := NewEngine(nil).Assign(context.Background(), f.input(), c)
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	assert.Empty(t, summary.Unassigned)
}
