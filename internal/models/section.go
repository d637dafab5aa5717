package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SectionKind string

const (
	KindTheory SectionKind = "theory"
	KindLab    SectionKind = "lab"
)

// TimeSlot is one contiguous block of academic hours on a single day.
// Hours are academic blocks 1..15, not wall-clock times.
type TimeSlot struct {
	Day       string             `json:"day" bson:"day"`              // Monday..Saturday
	StartHour int                `json:"start_hour" bson:"startHour"` // 1-15
	Duration  int                `json:"duration" bson:"duration"`    // consecutive hours
	RoomID    primitive.ObjectID `json:"room_id,omitempty" bson:"room,omitempty"`
}

type Section struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CourseID      primitive.ObjectID `json:"course_id" bson:"course"`
	SemesterID    primitive.ObjectID `json:"semester_id" bson:"semester"`
	Kind          SectionKind        `json:"kind" bson:"type"`
	Group         string             `json:"group" bson:"group"` // e.g. "A", "B", "01"
	TeacherID     primitive.ObjectID `json:"teacher_id,omitempty" bson:"teacher,omitempty"`
	Capacity      int                `json:"capacity" bson:"capacity"`
	EnrolledCount int                `json:"enrolled_count" bson:"enrolledCount"`
	Schedule      []TimeSlot         `json:"schedule" bson:"schedule"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// Code is the stable sort key used everywhere sections need a reproducible
// order: course, then kind, then group.
func (s Section) Code() string {
	return s.CourseID.Hex() + "/" + string(s.Kind) + "/" + s.Group
}
