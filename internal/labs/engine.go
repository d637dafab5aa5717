package labs

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/JPostigo48/TI2project-backend/internal/models"
	"github.com/JPostigo48/TI2project-backend/internal/schedule"
)

// Committer persists one accepted assignment: the enrollment record plus the
// section's enrolledCount increment. Implementations must be idempotent on
// (student, section) so a re-run after a partial failure converges.
type Committer interface {
	Commit(ctx context.Context, rec models.Enrollment) error
}

// AssignmentInput is the snapshot one run operates on. The engine never
// reads the store itself; callers load the semester's sections, non-dropped
// enrollments and students up front, and a failed load aborts the run
// before any mutation.
type AssignmentInput struct {
	SemesterID  primitive.ObjectID
	Sections    []models.Section
	Enrollments []models.Enrollment
	Students    []models.User
}

// Assignment is one accepted (student, course, lab section) decision.
type Assignment struct {
	StudentID     primitive.ObjectID `json:"student_id"`
	CourseID      primitive.ObjectID `json:"course_id"`
	SectionID     primitive.ObjectID `json:"section_id"`
	Group         string             `json:"group"`
	ViaPreference bool               `json:"via_preference"`
}

// StudentCourse identifies a pair the run could not resolve.
type StudentCourse struct {
	StudentID primitive.ObjectID `json:"student_id"`
	CourseID  primitive.ObjectID `json:"course_id"`
}

// CommitFailure records a persistence error for one assignment; the run
// keeps going.
type CommitFailure struct {
	StudentID primitive.ObjectID `json:"student_id"`
	CourseID  primitive.ObjectID `json:"course_id"`
	SectionID primitive.ObjectID `json:"section_id"`
	Error     string             `json:"error"`
}

// RunSummary is the audit record of one assignment run.
type RunSummary struct {
	RunID      string          `json:"run_id"`
	SemesterID string          `json:"semester_id"`
	StartedAt  time.Time       `json:"started_at"`
	Assigned   []Assignment    `json:"assigned"`
	Unassigned []StudentCourse `json:"unassigned"`
	AlreadySet int             `json:"already_set"` // pairs holding a lab before the run
	Failed     []CommitFailure `json:"failed"`
}

// Engine assigns students to lab sections under capacity and schedule
// constraints. One run is a single sequential batch pass: the processing
// order is the concurrency control, nothing inside a run is parallel.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Assign runs the full pass: every (student, course) pair with a theory
// enrollment in a course that offers labs, and no lab yet, gets the first
// candidate with a free seat and no clash against the student's accumulated
// schedule. Callers gate this behind CanAssign.
func (e *Engine) Assign(ctx context.Context, in AssignmentInput, c Committer) (*RunSummary, error) {
	return e.run(ctx, in, c, false)
}

// Preprocess runs the conservative pass: a pair is assigned only when
// exactly one candidate survives both the seat and the conflict check.
// Ambiguous or hopeless pairs are left untouched for the full pass.
// Callers gate this behind CanPreprocess.
func (e *Engine) Preprocess(ctx context.Context, in AssignmentInput, c Committer) (*RunSummary, error) {
	return e.run(ctx, in, c, true)
}

// studentState is one student's view during a run: which courses are
// resolved and every cell the student already occupies, theory and labs
// alike, so cross-course lab clashes are caught.
type studentState struct {
	id      primitive.ObjectID
	sortKey string
	cells   schedule.CellSet
	// keyed by course id: which courses already have a lab, which have a
	// theory enrollment, and the stated lab preferences per course
	resolved    map[primitive.ObjectID]bool
	theory      map[primitive.ObjectID]bool
	preferences map[primitive.ObjectID][]primitive.ObjectID
}

func (e *Engine) run(ctx context.Context, in AssignmentInput, c Committer, onlyUnambiguous bool) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:      uuid.NewString(),
		SemesterID: in.SemesterID.Hex(),
		StartedAt:  time.Now(),
	}

	sectionByID := make(map[primitive.ObjectID]models.Section, len(in.Sections))
	labsByCourse := make(map[primitive.ObjectID][]models.Section)
	var labSections []models.Section
	for _, sec := range in.Sections {
		sectionByID[sec.ID] = sec
		if sec.Kind == models.KindLab {
			labsByCourse[sec.CourseID] = append(labsByCourse[sec.CourseID], sec)
			labSections = append(labSections, sec)
		}
	}
	ledger := NewCapacityLedger(labSections)

	codeByStudent := make(map[primitive.ObjectID]string, len(in.Students))
	for _, u := range in.Students {
		codeByStudent[u.ID] = u.Code
	}

	states, err := buildStudentStates(in.Enrollments, sectionByID, codeByStudent)
	if err != nil {
		return nil, err
	}

	// Fixed pass order: students by code, then each student's lab-bearing
	// courses by id. Determinism is part of the contract.
	sort.Slice(states, func(i, j int) bool { return states[i].sortKey < states[j].sortKey })

	for _, st := range states {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		courses := make([]primitive.ObjectID, 0, len(st.theory))
		for courseID := range st.theory {
			if len(labsByCourse[courseID]) > 0 {
				courses = append(courses, courseID)
			}
		}
		sort.Slice(courses, func(i, j int) bool { return courses[i].Hex() < courses[j].Hex() })

		for _, courseID := range courses {
			if st.resolved[courseID] {
				summary.AlreadySet++
				continue
			}
			candidates := rankCandidates(st.preferences[courseID], labsByCourse[courseID])
			e.place(ctx, st, courseID, candidates, ledger, c, summary, onlyUnambiguous)
		}
	}

	e.log.Info("lab assignment run finished",
		zap.String("run_id", summary.RunID),
		zap.String("semester_id", summary.SemesterID),
		zap.Bool("preprocess", onlyUnambiguous),
		zap.Int("assigned", len(summary.Assigned)),
		zap.Int("unassigned", len(summary.Unassigned)),
		zap.Int("already_set", summary.AlreadySet),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

// place tries the ranked candidates for one (student, course) pair and
// commits the first survivor. In unambiguous mode it first counts survivors
// and backs off unless there is exactly one.
func (e *Engine) place(ctx context.Context, st *studentState, courseID primitive.ObjectID,
	candidates []candidate, ledger *CapacityLedger, c Committer, summary *RunSummary, onlyUnambiguous bool) {

	survivors := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if !ledger.HasSeat(cand.section.ID) {
			continue
		}
		if schedule.Conflicts(cand.cells, st.cells) {
			continue
		}
		survivors = append(survivors, cand)
		if !onlyUnambiguous {
			break // first fit wins in the full pass
		}
	}

	if onlyUnambiguous {
		if len(survivors) != 1 {
			return // ambiguous or hopeless, leave for the full pass
		}
	} else if len(survivors) == 0 {
		summary.Unassigned = append(summary.Unassigned, StudentCourse{StudentID: st.id, CourseID: courseID})
		return
	}

	winner := survivors[0]
	// Re-checked inside Reserve; a failure here is a ledger contract bug and
	// only kills this one step.
	if err := ledger.Reserve(winner.section.ID); err != nil {
		e.log.Error("seat reservation failed",
			zap.String("section_id", winner.section.ID.Hex()), zap.Error(err))
		summary.Failed = append(summary.Failed, CommitFailure{
			StudentID: st.id, CourseID: courseID, SectionID: winner.section.ID, Error: err.Error(),
		})
		return
	}

	rec := models.Enrollment{
		StudentID:  st.id,
		SectionID:  winner.section.ID,
		SemesterID: winner.section.SemesterID,
		Status:     models.StatusEnrolled,
		EnrolledAt: time.Now(),
	}
	if err := c.Commit(ctx, rec); err != nil {
		e.log.Error("assignment commit failed",
			zap.String("student_id", st.id.Hex()),
			zap.String("section_id", winner.section.ID.Hex()),
			zap.Error(err))
		summary.Failed = append(summary.Failed, CommitFailure{
			StudentID: st.id, CourseID: courseID, SectionID: winner.section.ID, Error: err.Error(),
		})
		// The seat stays reserved: better a phantom hold for the rest of
		// the run than overbooking a section the store may have updated.
		return
	}

	st.cells.Merge(winner.cells)
	st.resolved[courseID] = true
	summary.Assigned = append(summary.Assigned, Assignment{
		StudentID:     st.id,
		CourseID:      courseID,
		SectionID:     winner.section.ID,
		Group:         winner.section.Group,
		ViaPreference: winner.viaPreference,
	})
}

type candidate struct {
	section       models.Section
	cells         schedule.CellSet
	viaPreference bool
}

// rankCandidates orders the labs of one course for one student: the
// student's valid preferences in their stated order, else every lab of the
// course in reverse group order ("C" before "B" before "A", "03" before
// "02").
func rankCandidates(preferences []primitive.ObjectID, courseLabs []models.Section) []candidate {
	labByID := make(map[primitive.ObjectID]models.Section, len(courseLabs))
	for _, sec := range courseLabs {
		labByID[sec.ID] = sec
	}

	var ranked []models.Section
	viaPreference := false
	if len(preferences) > 0 {
		for _, id := range preferences {
			if sec, ok := labByID[id]; ok {
				ranked = append(ranked, sec)
			}
		}
		viaPreference = len(ranked) > 0
	}
	if !viaPreference && len(preferences) == 0 {
		ranked = make([]models.Section, len(courseLabs))
		copy(ranked, courseLabs)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Group != ranked[j].Group {
				return ranked[i].Group > ranked[j].Group
			}
			return ranked[i].ID.Hex() < ranked[j].ID.Hex()
		})
	}

	out := make([]candidate, 0, len(ranked))
	for _, sec := range ranked {
		cells, err := schedule.OccupiedCells(sec.Schedule)
		if err != nil {
			// Malformed catalog slots never reach the engine through the
			// handlers; skip rather than poison the whole run.
			continue
		}
		out = append(out, candidate{section: sec, cells: cells, viaPreference: viaPreference})
	}
	return out
}

func buildStudentStates(enrollments []models.Enrollment, sectionByID map[primitive.ObjectID]models.Section,
	codeByStudent map[primitive.ObjectID]string) ([]*studentState, error) {

	byStudent := make(map[primitive.ObjectID]*studentState)
	for _, enr := range enrollments {
		if enr.Status == models.StatusDropped {
			continue
		}
		sec, ok := sectionByID[enr.SectionID]
		if !ok {
			continue // enrollment into another semester's catalog
		}
		st := byStudent[enr.StudentID]
		if st == nil {
			code := codeByStudent[enr.StudentID]
			if code == "" {
				code = enr.StudentID.Hex()
			}
			st = &studentState{
				id:          enr.StudentID,
				sortKey:     code + "/" + enr.StudentID.Hex(),
				cells:       make(schedule.CellSet),
				resolved:    make(map[primitive.ObjectID]bool),
				theory:      make(map[primitive.ObjectID]bool),
				preferences: make(map[primitive.ObjectID][]primitive.ObjectID),
			}
			byStudent[enr.StudentID] = st
		}

		cells, err := schedule.OccupiedCells(sec.Schedule)
		if err != nil {
			return nil, err
		}
		st.cells.Merge(cells)

		switch sec.Kind {
		case models.KindTheory:
			st.theory[sec.CourseID] = true
			if len(enr.LabPreferences) > 0 {
				st.preferences[sec.CourseID] = enr.LabPreferences
			}
		case models.KindLab:
			st.resolved[sec.CourseID] = true
		}
	}

	states := make([]*studentState, 0, len(byStudent))
	for _, st := range byStudent {
		states = append(states, st)
	}
	return states, nil
}
