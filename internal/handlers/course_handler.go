package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

type CourseHandler struct {
	collection *mongo.Collection
}

func NewCourseHandler(client *mongo.Client, dbName string) *CourseHandler {
	return &CourseHandler{
		collection: client.Database(dbName).Collection("courses"),
	}
}

// CreateCourse handles creating a new catalog course
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var newCourse models.Course
	if err := json.NewDecoder(r.Body).Decode(&newCourse); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if newCourse.Name == "" || newCourse.Code == "" {
		http.Error(w, "Course name and code are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Course codes are unique in the catalog
	err := h.collection.FindOne(ctx, bson.M{"code": newCourse.Code}).Err()
	if err == nil {
		http.Error(w, "A course with that code already exists", http.StatusBadRequest)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Failed to create course", http.StatusInternalServerError)
		return
	}

	newCourse.ID = primitive.NewObjectID()
	newCourse.CreatedAt = time.Now()

	if _, err := h.collection.InsertOne(ctx, newCourse); err != nil {
		http.Error(w, "Failed to create course", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newCourse)
}

// GetCourses retrieves all courses
func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.collection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch courses", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err = cursor.All(ctx, &courses); err != nil {
		http.Error(w, "Error decoding courses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(courses)
}

// UpdateCourse updates catalog course details
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("id")
	if courseID == "" {
		http.Error(w, "Course ID is required", http.StatusBadRequest)
		return
	}
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var updated models.Course
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	update := bson.M{
		"$set": bson.M{
			"name":         updated.Name,
			"credits":      updated.Credits,
			"hoursPerWeek": updated.HoursPerWeek,
			"theoryHours":  updated.TheoryHours,
			"labHours":     updated.LabHours,
			"description":  updated.Description,
			"syllabus":     updated.Syllabus,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.collection.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		http.Error(w, "Failed to update course", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
