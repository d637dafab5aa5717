package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/JPostigo48/TI2project-backend/internal/labs"
	"github.com/JPostigo48/TI2project-backend/internal/middleware"
	"github.com/JPostigo48/TI2project-backend/internal/models"
	"github.com/JPostigo48/TI2project-backend/internal/utils"
)

// LabHandler owns the lab enrollment cycle: preference submission while the
// phase is open, then the preprocess and assignment runs.
type LabHandler struct {
	sections    *mongo.Collection
	enrollments *mongo.Collection
	semesters   *mongo.Collection
	users       *mongo.Collection
	engine      *labs.Engine
	committer   labs.Committer
	mailer      utils.Mailer
	log         *zap.Logger
}

func NewLabHandler(client *mongo.Client, dbName string, mailer utils.Mailer, log *zap.Logger) *LabHandler {
	db := client.Database(dbName)
	return &LabHandler{
		sections:    db.Collection("sections"),
		enrollments: db.Collection("enrollments"),
		semesters:   db.Collection("semesters"),
		users:       db.Collection("users"),
		engine:      labs.NewEngine(log),
		committer:   labs.NewMongoCommitter(client, dbName),
		mailer:      mailer,
		log:         log,
	}
}

// SubmitPreferences stores a student's ordered lab choices for one course.
// Only allowed while the semester's lab phase is open.
func (h *LabHandler) SubmitPreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID    primitive.ObjectID   `json:"course_id"`
		SemesterID  primitive.ObjectID   `json:"semester_id"`
		Preferences []primitive.ObjectID `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.CourseID.IsZero() || req.SemesterID.IsZero() {
		http.Error(w, "course_id and semester_id are required", http.StatusBadRequest)
		return
	}
	if len(req.Preferences) == 0 {
		http.Error(w, "At least one preference is required", http.StatusBadRequest)
		return
	}

	studentID, err := primitive.ObjectIDFromHex(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var semester models.Semester
	if err := h.semesters.FindOne(ctx, bson.M{"_id": req.SemesterID}).Decode(&semester); err != nil {
		http.Error(w, "Semester not found", http.StatusNotFound)
		return
	}
	if !labs.CanSubmitPreferences(semester.LabEnrollment) {
		http.Error(w, "Lab enrollment is not open for this semester", http.StatusConflict)
		return
	}

	// Every preference must be a lab section of this course and semester
	validLabs, err := h.sections.CountDocuments(ctx, bson.M{
		"_id":      bson.M{"$in": req.Preferences},
		"course":   req.CourseID,
		"semester": req.SemesterID,
		"type":     models.KindLab,
	})
	if err != nil {
		http.Error(w, "Failed to validate preferences", http.StatusInternalServerError)
		return
	}
	if validLabs != int64(len(req.Preferences)) {
		http.Error(w, "One of the selected options is not a lab of this course", http.StatusBadRequest)
		return
	}

	// The student needs an active theory enrollment in the course
	theoryIDs, err := h.theorySectionIDs(ctx, req.CourseID, req.SemesterID)
	if err != nil {
		http.Error(w, "Failed to validate enrollment", http.StatusInternalServerError)
		return
	}

	res, err := h.enrollments.UpdateOne(ctx,
		bson.M{
			"student": studentID,
			"section": bson.M{"$in": theoryIDs},
			"status":  models.StatusEnrolled,
		},
		bson.M{"$set": bson.M{"labPreferences": req.Preferences}},
	)
	if err != nil {
		http.Error(w, "Failed to save preferences", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "No active theory enrollment for this course", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Preferences saved"})
}

// GetMyPreferences returns the caller's stored lab preferences for a course
func (h *LabHandler) GetMyPreferences(w http.ResponseWriter, r *http.Request) {
	courseID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("course"))
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	theoryIDs, err := h.theorySectionIDs(ctx, courseID, primitive.NilObjectID)
	if err != nil {
		http.Error(w, "Failed to fetch enrollment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var enrollment models.Enrollment
	err = h.enrollments.FindOne(ctx, bson.M{
		"student": studentID,
		"section": bson.M{"$in": theoryIDs},
	}).Decode(&enrollment)
	if err != nil {
		// No enrollment is not an error for the frontend, just empty prefs
		json.NewEncoder(w).Encode(map[string]interface{}{"lab_preferences": []string{}})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"lab_preferences": enrollment.LabPreferences,
		"status":          enrollment.Status,
	})
}

// Preprocess runs the conservative single-option pass for a semester.
// Allowed while the phase is open or processing.
func (h *LabHandler) Preprocess(w http.ResponseWriter, r *http.Request) {
	h.runEngine(w, r, true)
}

// ProcessAssignments runs the full assignment pass and seals the semester's
// lab phase. Allowed only while the phase is processing.
func (h *LabHandler) ProcessAssignments(w http.ResponseWriter, r *http.Request) {
	h.runEngine(w, r, false)
}

func (h *LabHandler) runEngine(w http.ResponseWriter, r *http.Request, preprocess bool) {
	semesterID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("semester"))
	if err != nil {
		http.Error(w, "Invalid semester ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var semester models.Semester
	if err := h.semesters.FindOne(ctx, bson.M{"_id": semesterID}).Decode(&semester); err != nil {
		http.Error(w, "Semester not found", http.StatusNotFound)
		return
	}

	if preprocess {
		if !labs.CanPreprocess(semester.LabEnrollment) {
			http.Error(w, fmt.Sprintf("cannot preprocess while phase is %q", semester.LabEnrollment.Status), http.StatusConflict)
			return
		}
	} else if !labs.CanAssign(semester.LabEnrollment) {
		http.Error(w, fmt.Sprintf("cannot assign while phase is %q", semester.LabEnrollment.Status), http.StatusConflict)
		return
	}

	// A failed snapshot read aborts the run before any mutation
	input, err := h.loadInput(ctx, semesterID)
	if err != nil {
		h.log.Error("assignment snapshot load failed", zap.Error(err))
		http.Error(w, "Failed to load semester data", http.StatusInternalServerError)
		return
	}

	var summary *labs.RunSummary
	if preprocess {
		summary, err = h.engine.Preprocess(ctx, *input, h.committer)
	} else {
		summary, err = h.engine.Assign(ctx, *input, h.committer)
	}
	if err != nil {
		h.log.Error("assignment run failed", zap.Error(err))
		http.Error(w, "Assignment run failed", http.StatusInternalServerError)
		return
	}

	if !preprocess {
		if err := labs.FinishPhase(&semester.LabEnrollment, time.Now()); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		update := bson.M{"$set": bson.M{"labEnrollment": semester.LabEnrollment}}
		if _, err := h.semesters.UpdateOne(ctx, bson.M{"_id": semesterID}, update); err != nil {
			http.Error(w, "Failed to update semester phase", http.StatusInternalServerError)
			return
		}
		h.notifyAssigned(ctx, semester, summary)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *LabHandler) loadInput(ctx context.Context, semesterID primitive.ObjectID) (*labs.AssignmentInput, error) {
	input := &labs.AssignmentInput{SemesterID: semesterID}

	cursor, err := h.sections.Find(ctx, bson.M{"semester": semesterID})
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	if err := cursor.All(ctx, &input.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}

	cursor, err = h.enrollments.Find(ctx, bson.M{
		"semester": semesterID,
		"status":   bson.M{"$ne": models.StatusDropped},
	})
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	if err := cursor.All(ctx, &input.Enrollments); err != nil {
		return nil, fmt.Errorf("decode enrollments: %w", err)
	}

	cursor, err = h.users.Find(ctx, bson.M{"role": models.RoleStudent})
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	if err := cursor.All(ctx, &input.Students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}

	return input, nil
}

// notifyAssigned emails each assigned student, best effort.
func (h *LabHandler) notifyAssigned(ctx context.Context, semester models.Semester, summary *labs.RunSummary) {
	for _, a := range summary.Assigned {
		var student models.User
		if err := h.users.FindOne(ctx, bson.M{"_id": a.StudentID}).Decode(&student); err != nil {
			continue
		}
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>You have been assigned to lab group <b>%s</b> for semester %s.</p>",
			student.Name, a.Group, semester.Name,
		)
		if err := h.mailer.SendEmail(student.Email, "Lab group assigned", body); err != nil {
			h.log.Warn("assignment notification failed",
				zap.String("student_id", a.StudentID.Hex()), zap.Error(err))
		}
	}
}

// theorySectionIDs returns the ids of the theory sections of a course,
// optionally narrowed to one semester.
func (h *LabHandler) theorySectionIDs(ctx context.Context, courseID, semesterID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"course": courseID, "type": models.KindTheory}
	if !semesterID.IsZero() {
		filter["semester"] = semesterID
	}
	cursor, err := h.sections.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var sections []models.Section
	if err := cursor.All(ctx, &sections); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.ID)
	}
	return ids, nil
}
