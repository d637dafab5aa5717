package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

type GradeHandler struct {
	collection *mongo.Collection
}

func NewGradeHandler(client *mongo.Client, dbName string) *GradeHandler {
	return &GradeHandler{
		collection: client.Database(dbName).Collection("grades"),
	}
}

func clampScore(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	if n < 0 {
		n = 0
	}
	if n > 20 {
		n = 20
	}
	return &n
}

// SetPartialGrades upserts the continuous and exam scores of one partial
func (h *GradeHandler) SetPartialGrades(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionID  primitive.ObjectID `json:"section_id"`
		StudentID  primitive.ObjectID `json:"student_id"`
		Partial    string             `json:"partial"` // P1, P2 or P3
		Continuous *float64           `json:"continuous"`
		Exam       *float64           `json:"exam"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.SectionID.IsZero() || req.StudentID.IsZero() {
		http.Error(w, "section_id and student_id are required", http.StatusBadRequest)
		return
	}
	if req.Partial != "P1" && req.Partial != "P2" && req.Partial != "P3" {
		http.Error(w, "partial must be P1, P2 or P3", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"partials." + req.Partial + ".continuous.score": clampScore(req.Continuous),
			"partials." + req.Partial + ".exam.score":       clampScore(req.Exam),
			"updated_at": time.Now(),
		},
		"$setOnInsert": bson.M{"weights": models.DefaultGradeWeights()},
	}

	var updated models.Grade
	err := h.collection.FindOneAndUpdate(ctx,
		bson.M{"section": req.SectionID, "student": req.StudentID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		http.Error(w, "Failed to save partial", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"grade":    updated,
		"computed": updated.Final(),
	})
}

// SetWeights replaces the grade weights for every sheet of a section.
// Weights must sum exactly 100.
func (h *GradeHandler) SetWeights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionID primitive.ObjectID  `json:"section_id"`
		Weights   models.GradeWeights `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.SectionID.IsZero() {
		http.Error(w, "section_id is required", http.StatusBadRequest)
		return
	}
	if req.Weights.Sum() != 100 {
		http.Error(w, "Weights must sum 100", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err := h.collection.UpdateMany(ctx,
		bson.M{"section": req.SectionID},
		bson.M{"$set": bson.M{"weights": req.Weights, "updated_at": time.Now()}},
	)
	if err != nil {
		http.Error(w, "Failed to update weights", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetSubstitutive records the substitutive exam mark
func (h *GradeHandler) SetSubstitutive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionID primitive.ObjectID `json:"section_id"`
		StudentID primitive.ObjectID `json:"student_id"`
		Value     *float64           `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.SectionID.IsZero() || req.StudentID.IsZero() {
		http.Error(w, "section_id and student_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var updated models.Grade
	err := h.collection.FindOneAndUpdate(ctx,
		bson.M{"section": req.SectionID, "student": req.StudentID},
		bson.M{
			"$set":         bson.M{"substitutive": clampScore(req.Value), "updated_at": time.Now()},
			"$setOnInsert": bson.M{"weights": models.DefaultGradeWeights()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		http.Error(w, "Failed to save substitutive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"grade":    updated,
		"computed": updated.Final(),
	})
}

// GetSectionGrades lists a section's grade sheets with computed finals
func (h *GradeHandler) GetSectionGrades(w http.ResponseWriter, r *http.Request) {
	sectionID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("section"))
	if err != nil {
		http.Error(w, "Invalid section ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := h.collection.Find(ctx, bson.M{"section": sectionID})
	if err != nil {
		http.Error(w, "Failed to fetch grades", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var grades []models.Grade
	if err = cursor.All(ctx, &grades); err != nil {
		http.Error(w, "Error decoding grades", http.StatusInternalServerError)
		return
	}

	type row struct {
		Grade    models.Grade      `json:"grade"`
		Computed models.FinalGrade `json:"computed"`
	}
	out := make([]row, 0, len(grades))
	for _, g := range grades {
		out = append(out, row{Grade: g, Computed: g.Final()})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
