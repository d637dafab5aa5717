package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Code         string             `json:"code" bson:"code"` // unique catalog code
	Credits      int                `json:"credits" bson:"credits"`
	Year         int                `json:"year,omitempty" bson:"year,omitempty"`
	HoursPerWeek int                `json:"hours_per_week" bson:"hoursPerWeek"`
	TheoryHours  int                `json:"theory_hours" bson:"theoryHours"`
	LabHours     int                `json:"lab_hours" bson:"labHours"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Syllabus     string             `json:"syllabus,omitempty" bson:"syllabus,omitempty"` // path or link
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
