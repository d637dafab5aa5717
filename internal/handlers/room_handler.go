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
	"github.com/JPostigo48/TI2project-backend/internal/schedule"
)

type RoomHandler struct {
	rooms        *mongo.Collection
	reservations *mongo.Collection
}

func NewRoomHandler(client *mongo.Client, dbName string) *RoomHandler {
	db := client.Database(dbName)
	return &RoomHandler{
		rooms:        db.Collection("rooms"),
		reservations: db.Collection("roomReservations"),
	}
}

// CreateRoom handles creating a new room
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var newRoom models.Room
	if err := json.NewDecoder(r.Body).Decode(&newRoom); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if newRoom.Code == "" || newRoom.Name == "" {
		http.Error(w, "Room code and name are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	newRoom.ID = primitive.NewObjectID()
	if _, err := h.rooms.InsertOne(ctx, newRoom); err != nil {
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newRoom)
}

// GetRooms retrieves all rooms
func (h *RoomHandler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.rooms.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch rooms", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var rooms []models.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		http.Error(w, "Error decoding rooms", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rooms)
}

// CreateReservation books a room for specific hour blocks on one date. The
// clash check runs on the same day/hour cells as section schedules.
func (h *RoomHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var res models.RoomReservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if res.RoomID.IsZero() || res.Date.IsZero() || res.Day == "" || len(res.Blocks) == 0 {
		http.Error(w, "room_id, date, day and blocks are required", http.StatusBadRequest)
		return
	}

	requested, err := blocksToCells(res.Day, res.Blocks)
	if err != nil {
		http.Error(w, "Invalid reservation blocks", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Overlapping approved reservation for the same room and date?
	cursor, err := h.reservations.Find(ctx, bson.M{
		"room":   res.RoomID,
		"date":   res.Date,
		"status": bson.M{"$ne": models.ReservationCancelled},
	})
	if err != nil {
		http.Error(w, "Failed to check reservations", http.StatusInternalServerError)
		return
	}
	var existing []models.RoomReservation
	if err := cursor.All(ctx, &existing); err != nil {
		http.Error(w, "Error decoding reservations", http.StatusInternalServerError)
		return
	}
	for _, other := range existing {
		cells, err := blocksToCells(other.Day, other.Blocks)
		if err != nil {
			continue
		}
		if schedule.Conflicts(requested, cells) {
			http.Error(w, "The room is already reserved for one of those blocks", http.StatusConflict)
			return
		}
	}

	res.ID = primitive.NewObjectID()
	if res.Status == "" {
		res.Status = models.ReservationApproved
	}
	res.CreatedAt = time.Now()

	if _, err := h.reservations.InsertOne(ctx, res); err != nil {
		http.Error(w, "Failed to create reservation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(res)
}

// GetReservations lists reservations for a room
func (h *RoomHandler) GetReservations(w http.ResponseWriter, r *http.Request) {
	roomID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("room"))
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.reservations.Find(ctx, bson.M{"room": roomID})
	if err != nil {
		http.Error(w, "Failed to fetch reservations", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var reservations []models.RoomReservation
	if err = cursor.All(ctx, &reservations); err != nil {
		http.Error(w, "Error decoding reservations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reservations)
}

// blocksToCells reuses the weekly grid for a reservation's hour blocks.
func blocksToCells(day string, blocks []int) (schedule.CellSet, error) {
	slots := make([]models.TimeSlot, 0, len(blocks))
	for _, b := range blocks {
		slots = append(slots, models.TimeSlot{Day: day, StartHour: b, Duration: 1})
	}
	return schedule.OccupiedCells(slots)
}
