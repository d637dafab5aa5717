package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JPostigo48/TI2project-backend/internal/middleware"
	"github.com/JPostigo48/TI2project-backend/internal/models"
)

type StudentHandler struct {
	enrollments *mongo.Collection
	sections    *mongo.Collection
	courses     *mongo.Collection
}

func NewStudentHandler(client *mongo.Client, dbName string) *StudentHandler {
	db := client.Database(dbName)
	return &StudentHandler{
		enrollments: db.Collection("enrollments"),
		sections:    db.Collection("sections"),
		courses:     db.Collection("courses"),
	}
}

type scheduleBlock struct {
	SectionID  primitive.ObjectID `json:"section_id"`
	CourseCode string             `json:"course_code"`
	CourseName string             `json:"course_name"`
	Kind       models.SectionKind `json:"kind"`
	Group      string             `json:"group"`
	Day        string             `json:"day"`
	StartHour  int                `json:"start_hour"`
	Duration   int                `json:"duration"`
}

// GetMySchedule flattens the caller's active enrollments into per-slot
// blocks for the timetable view
func (h *StudentHandler) GetMySchedule(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"student": studentID, "status": models.StatusEnrolled}
	if v := r.URL.Query().Get("semester"); v != "" {
		semesterID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid semester ID", http.StatusBadRequest)
			return
		}
		filter["semester"] = semesterID
	}

	cursor, err := h.enrollments.Find(ctx, filter)
	if err != nil {
		http.Error(w, "Failed to fetch enrollments", http.StatusInternalServerError)
		return
	}
	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		http.Error(w, "Error decoding enrollments", http.StatusInternalServerError)
		return
	}

	blocks := []scheduleBlock{}
	for _, enr := range enrollments {
		var sec models.Section
		if err := h.sections.FindOne(ctx, bson.M{"_id": enr.SectionID}).Decode(&sec); err != nil {
			continue
		}
		var course models.Course
		_ = h.courses.FindOne(ctx, bson.M{"_id": sec.CourseID}).Decode(&course)

		for _, slot := range sec.Schedule {
			blocks = append(blocks, scheduleBlock{
				SectionID:  sec.ID,
				CourseCode: course.Code,
				CourseName: course.Name,
				Kind:       sec.Kind,
				Group:      sec.Group,
				Day:        slot.Day,
				StartHour:  slot.StartHour,
				Duration:   slot.Duration,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(blocks)
}
