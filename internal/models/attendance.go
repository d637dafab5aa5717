package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

type AttendanceEntry struct {
	StudentID primitive.ObjectID `json:"student_id" bson:"student"`
	Status    AttendanceStatus   `json:"status" bson:"status"`
}

// AttendanceSession records one class meeting of a section.
type AttendanceSession struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SectionID primitive.ObjectID `json:"section_id" bson:"section"`
	Date      time.Time          `json:"date" bson:"date"`
	Week      int                `json:"week" bson:"week"`
	CreatedBy primitive.ObjectID `json:"created_by" bson:"createdBy"`
	Entries   []AttendanceEntry  `json:"entries" bson:"entries"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
