package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JPostigo48/TI2project-backend/internal/labs"
	"github.com/JPostigo48/TI2project-backend/internal/models"
	"github.com/JPostigo48/TI2project-backend/internal/schedule"
)

// EnrollmentHandler covers bulk enrollment: building conflict-free section
// packages and enrolling a student into one.
type EnrollmentHandler struct {
	sections    *mongo.Collection
	enrollments *mongo.Collection
	committer   labs.Committer
}

func NewEnrollmentHandler(client *mongo.Client, dbName string) *EnrollmentHandler {
	db := client.Database(dbName)
	return &EnrollmentHandler{
		sections:    db.Collection("sections"),
		enrollments: db.Collection("enrollments"),
		committer:   labs.NewMongoCommitter(client, dbName),
	}
}

type packageResponse struct {
	Size     int              `json:"size"`
	Sections []models.Section `json:"sections"`
}

// GetPackages bundles a semester's theory sections into conflict-free
// packages of at most size sections
func (h *EnrollmentHandler) GetPackages(w http.ResponseWriter, r *http.Request) {
	semesterID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("semester"))
	if err != nil {
		http.Error(w, "Invalid semester ID", http.StatusBadRequest)
		return
	}
	size := 5
	if v := r.URL.Query().Get("size"); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid package size", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := h.sections.Find(ctx, bson.M{"semester": semesterID, "type": models.KindTheory})
	if err != nil {
		http.Error(w, "Failed to fetch sections", http.StatusInternalServerError)
		return
	}
	var sections []models.Section
	if err := cursor.All(ctx, &sections); err != nil {
		http.Error(w, "Error decoding sections", http.StatusInternalServerError)
		return
	}

	packages, err := schedule.BuildPackages(sections, size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := make([]packageResponse, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, packageResponse{Size: pkg.Size(), Sections: pkg.Sections})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// BulkEnroll enrolls one student into a package of sections. The package is
// re-validated against itself and against the student's current schedule,
// and each seat goes through the same guarded commit as lab assignment.
func (h *EnrollmentHandler) BulkEnroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID  primitive.ObjectID   `json:"student_id"`
		SemesterID primitive.ObjectID   `json:"semester_id"`
		SectionIDs []primitive.ObjectID `json:"section_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.StudentID.IsZero() || req.SemesterID.IsZero() || len(req.SectionIDs) == 0 {
		http.Error(w, "student_id, semester_id and section_ids are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := h.sections.Find(ctx, bson.M{"_id": bson.M{"$in": req.SectionIDs}, "semester": req.SemesterID})
	if err != nil {
		http.Error(w, "Failed to fetch sections", http.StatusInternalServerError)
		return
	}
	var sections []models.Section
	if err := cursor.All(ctx, &sections); err != nil {
		http.Error(w, "Error decoding sections", http.StatusInternalServerError)
		return
	}
	if len(sections) != len(req.SectionIDs) {
		http.Error(w, "One of the sections does not exist in this semester", http.StatusBadRequest)
		return
	}

	// The requested sections must not clash with each other or with what
	// the student already has.
	taken, err := h.studentCells(ctx, req.StudentID, req.SemesterID)
	if err != nil {
		http.Error(w, "Failed to fetch current schedule", http.StatusInternalServerError)
		return
	}
	for _, sec := range sections {
		cells, err := schedule.OccupiedCells(sec.Schedule)
		if err != nil {
			http.Error(w, "Invalid schedule in section "+sec.ID.Hex(), http.StatusBadRequest)
			return
		}
		if schedule.Conflicts(taken, cells) {
			http.Error(w, "Section "+sec.ID.Hex()+" conflicts with the student's schedule", http.StatusConflict)
			return
		}
		if sec.EnrolledCount >= sec.Capacity {
			http.Error(w, "Section "+sec.ID.Hex()+" is full", http.StatusConflict)
			return
		}
		taken.Merge(cells)
	}

	now := time.Now()
	created := make([]models.Enrollment, 0, len(sections))
	for _, sec := range sections {
		rec := models.Enrollment{
			StudentID:  req.StudentID,
			SectionID:  sec.ID,
			SemesterID: req.SemesterID,
			Status:     models.StatusEnrolled,
			EnrolledAt: now,
		}
		if err := h.committer.Commit(ctx, rec); err != nil {
			http.Error(w, "Failed to enroll into section "+sec.ID.Hex(), http.StatusConflict)
			return
		}
		created = append(created, rec)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// studentCells collects every cell the student's non-dropped enrollments
// occupy in a semester.
func (h *EnrollmentHandler) studentCells(ctx context.Context, studentID, semesterID primitive.ObjectID) (schedule.CellSet, error) {
	cursor, err := h.enrollments.Find(ctx, bson.M{
		"student":  studentID,
		"semester": semesterID,
		"status":   bson.M{"$ne": models.StatusDropped},
	})
	if err != nil {
		return nil, err
	}
	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}

	cells := make(schedule.CellSet)
	for _, enr := range enrollments {
		var sec models.Section
		if err := h.sections.FindOne(ctx, bson.M{"_id": enr.SectionID}).Decode(&sec); err != nil {
			continue
		}
		secCells, err := schedule.OccupiedCells(sec.Schedule)
		if err != nil {
			continue
		}
		cells.Merge(secCells)
	}
	return cells, nil
}
