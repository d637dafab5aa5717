package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EnrollmentStatus string

const (
	StatusEnrolled EnrollmentStatus = "enrolled"
	StatusPending  EnrollmentStatus = "pending"
	StatusDropped  EnrollmentStatus = "dropped"
)

type Enrollment struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID  primitive.ObjectID `json:"student_id" bson:"student"`
	SectionID  primitive.ObjectID `json:"section_id" bson:"section"`
	SemesterID primitive.ObjectID `json:"semester_id" bson:"semester"`
	Status     EnrollmentStatus   `json:"status" bson:"status"`
	// LabPreferences holds lab section ids in the student's order of choice.
	// Only meaningful on theory enrollments, and only writable while the
	// semester's lab phase is open.
	LabPreferences []primitive.ObjectID `json:"lab_preferences" bson:"labPreferences"`
	EnrolledAt     time.Time            `json:"enrolled_at" bson:"enrolled_at"`
}
