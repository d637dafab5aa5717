package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JPostigo48/TI2project-backend/internal/labs"
	"github.com/JPostigo48/TI2project-backend/internal/models"
)

type SemesterHandler struct {
	collection *mongo.Collection
}

func NewSemesterHandler(client *mongo.Client, dbName string) *SemesterHandler {
	return &SemesterHandler{
		collection: client.Database(dbName).Collection("semesters"),
	}
}

// CreateSemester handles creating a new semester
func (h *SemesterHandler) CreateSemester(w http.ResponseWriter, r *http.Request) {
	var newSemester models.Semester
	if err := json.NewDecoder(r.Body).Decode(&newSemester); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if newSemester.Name == "" || newSemester.StartDate.IsZero() || newSemester.EndDate.IsZero() {
		http.Error(w, "Name, start date and end date are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.collection.FindOne(ctx, bson.M{"name": newSemester.Name}).Err()
	if err == nil {
		http.Error(w, "Semester already exists", http.StatusBadRequest)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Failed to create semester", http.StatusInternalServerError)
		return
	}

	newSemester.ID = primitive.NewObjectID()
	newSemester.LabEnrollment = models.LabEnrollmentPhase{Status: models.LabPhaseNotStarted}
	newSemester.CreatedAt = time.Now()

	if _, err := h.collection.InsertOne(ctx, newSemester); err != nil {
		http.Error(w, "Failed to create semester", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newSemester)
}

// GetSemesters retrieves all semesters
func (h *SemesterHandler) GetSemesters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.collection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch semesters", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var semesters []models.Semester
	if err = cursor.All(ctx, &semesters); err != nil {
		http.Error(w, "Error decoding semesters", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(semesters)
}

// OpenLabEnrollment moves the semester's lab phase to open
func (h *SemesterHandler) OpenLabEnrollment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, labs.OpenPhase)
}

// CloseLabEnrollment moves the semester's lab phase to processing
func (h *SemesterHandler) CloseLabEnrollment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, labs.ClosePhase)
}

func (h *SemesterHandler) transition(w http.ResponseWriter, r *http.Request,
	apply func(*models.LabEnrollmentPhase, time.Time) error) {

	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid semester ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var semester models.Semester
	if err := h.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&semester); err != nil {
		http.Error(w, "Semester not found", http.StatusNotFound)
		return
	}

	if err := apply(&semester.LabEnrollment, time.Now()); err != nil {
		if errors.Is(err, labs.ErrInvalidPhaseTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "Failed to update semester", http.StatusInternalServerError)
		return
	}

	update := bson.M{"$set": bson.M{"labEnrollment": semester.LabEnrollment}}
	if _, err := h.collection.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		http.Error(w, "Failed to update semester", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(semester)
}
