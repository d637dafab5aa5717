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

type AttendanceHandler struct {
	collection *mongo.Collection
}

func NewAttendanceHandler(client *mongo.Client, dbName string) *AttendanceHandler {
	return &AttendanceHandler{
		collection: client.Database(dbName).Collection("attendanceSessions"),
	}
}

// CreateSession records one class meeting with its attendance entries
func (h *AttendanceHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var session models.AttendanceSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if session.SectionID.IsZero() || session.Date.IsZero() || session.Week < 1 {
		http.Error(w, "section_id, date and week are required", http.StatusBadRequest)
		return
	}
	for _, entry := range session.Entries {
		switch entry.Status {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
		default:
			http.Error(w, "Invalid attendance status", http.StatusBadRequest)
			return
		}
	}

	createdBy, err := primitive.ObjectIDFromHex(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session.ID = primitive.NewObjectID()
	session.CreatedBy = createdBy
	session.CreatedAt = time.Now()

	if _, err := h.collection.InsertOne(ctx, session); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

// GetSessions lists attendance sessions for a section
func (h *AttendanceHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sectionID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("section"))
	if err != nil {
		http.Error(w, "Invalid section ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.collection.Find(ctx, bson.M{"section": sectionID})
	if err != nil {
		http.Error(w, "Failed to fetch sessions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var sessions []models.AttendanceSession
	if err = cursor.All(ctx, &sessions); err != nil {
		http.Error(w, "Error decoding sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}
