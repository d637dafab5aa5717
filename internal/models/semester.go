package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LabPhaseStatus string

const (
	LabPhaseNotStarted LabPhaseStatus = "not_started"
	LabPhaseOpen       LabPhaseStatus = "open"
	LabPhaseProcessing LabPhaseStatus = "processing"
	LabPhaseProcessed  LabPhaseStatus = "processed"
)

// LabEnrollmentPhase gates the lab preference/assignment cycle for one
// semester. Progression is strictly forward.
type LabEnrollmentPhase struct {
	Status      LabPhaseStatus `json:"status" bson:"status"`
	OpenedAt    *time.Time     `json:"opened_at,omitempty" bson:"openedAt,omitempty"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty" bson:"closedAt,omitempty"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty" bson:"processedAt,omitempty"`
}

type Semester struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"` // e.g. "2025-B"
	StartDate     time.Time          `json:"start_date" bson:"startDate"`
	EndDate       time.Time          `json:"end_date" bson:"endDate"`
	IsActive      bool               `json:"is_active" bson:"isActive"`
	LabEnrollment LabEnrollmentPhase `json:"lab_enrollment" bson:"labEnrollment"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
