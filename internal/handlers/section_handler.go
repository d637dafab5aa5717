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

type SectionHandler struct {
	collection *mongo.Collection
}

func NewSectionHandler(client *mongo.Client, dbName string) *SectionHandler {
	return &SectionHandler{
		collection: client.Database(dbName).Collection("sections"),
	}
}

// CreateSection handles creating a theory or lab section
func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	h.createSection(w, r, "")
}

// CreateLabGroup is the lab-specific wrapper: same as CreateSection with the
// kind forced to lab, kept so the existing API contract stays intact.
func (h *SectionHandler) CreateLabGroup(w http.ResponseWriter, r *http.Request) {
	h.createSection(w, r, models.KindLab)
}

func (h *SectionHandler) createSection(w http.ResponseWriter, r *http.Request, forceKind models.SectionKind) {
	var newSection models.Section
	if err := json.NewDecoder(r.Body).Decode(&newSection); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if forceKind != "" {
		newSection.Kind = forceKind
	} else if newSection.Kind == "" {
		newSection.Kind = models.KindTheory
	}

	if newSection.CourseID.IsZero() || newSection.SemesterID.IsZero() || newSection.Group == "" {
		http.Error(w, "course, semester and group are required", http.StatusBadRequest)
		return
	}
	if newSection.Kind != models.KindTheory && newSection.Kind != models.KindLab {
		http.Error(w, "Invalid section kind", http.StatusBadRequest)
		return
	}
	if newSection.Capacity < 0 {
		http.Error(w, "Capacity must not be negative", http.StatusBadRequest)
		return
	}
	// Validate the schedule before it enters the catalog; the grid bounds
	// are enforced here, not inside the engine.
	for _, slot := range newSection.Schedule {
		if slot.StartHour < schedule.MinHour || slot.StartHour+slot.Duration-1 > schedule.MaxHour {
			http.Error(w, "Schedule slot out of the 1-15 hour grid", http.StatusBadRequest)
			return
		}
	}
	if _, err := schedule.OccupiedCells(newSection.Schedule); err != nil {
		http.Error(w, "Invalid schedule slot", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// One group per course/semester/kind
	err := h.collection.FindOne(ctx, bson.M{
		"course":   newSection.CourseID,
		"semester": newSection.SemesterID,
		"type":     newSection.Kind,
		"group":    newSection.Group,
	}).Err()
	if err == nil {
		http.Error(w, "A section with that course/semester/kind/group already exists", http.StatusBadRequest)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Failed to create section", http.StatusInternalServerError)
		return
	}

	newSection.ID = primitive.NewObjectID()
	newSection.EnrolledCount = 0
	newSection.CreatedAt = time.Now()

	if _, err := h.collection.InsertOne(ctx, newSection); err != nil {
		http.Error(w, "Failed to create section", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newSection)
}

// GetSections lists sections with optional course/semester/kind/teacher filters
func (h *SectionHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	q := r.URL.Query()
	if v := q.Get("course"); v != "" {
		objID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid course ID", http.StatusBadRequest)
			return
		}
		filter["course"] = objID
	}
	if v := q.Get("semester"); v != "" {
		objID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid semester ID", http.StatusBadRequest)
			return
		}
		filter["semester"] = objID
	}
	if v := q.Get("kind"); v != "" {
		filter["type"] = v
	}
	if v := q.Get("teacher"); v != "" {
		objID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
			return
		}
		filter["teacher"] = objID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.collection.Find(ctx, filter)
	if err != nil {
		http.Error(w, "Failed to fetch sections", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var sections []models.Section
	if err = cursor.All(ctx, &sections); err != nil {
		http.Error(w, "Error decoding sections", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sections)
}

// GetLabGroups lists lab sections for a course in a semester
func (h *SectionHandler) GetLabGroups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("kind", string(models.KindLab))
	r.URL.RawQuery = q.Encode()
	h.GetSections(w, r)
}
