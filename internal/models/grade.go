package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Score is a 0-20 mark; nil means not yet recorded.
type Score struct {
	Score *float64 `json:"score" bson:"score"`
}

type PartialGrade struct {
	Continuous Score `json:"continuous" bson:"continuous"` // Cx
	Exam       Score `json:"exam" bson:"exam"`             // Exx
}

type PartialWeight struct {
	Continuous float64 `json:"continuous" bson:"continuous"`
	Exam       float64 `json:"exam" bson:"exam"`
}

type GradeWeights struct {
	P1 PartialWeight `json:"p1" bson:"P1"`
	P2 PartialWeight `json:"p2" bson:"P2"`
	P3 PartialWeight `json:"p3" bson:"P3"`
}

// DefaultGradeWeights is the 15/15/15/15/20/20 split; weights always sum 100.
func DefaultGradeWeights() GradeWeights {
	return GradeWeights{
		P1: PartialWeight{Continuous: 15, Exam: 15},
		P2: PartialWeight{Continuous: 15, Exam: 15},
		P3: PartialWeight{Continuous: 20, Exam: 20},
	}
}

func (w GradeWeights) Sum() float64 {
	return w.P1.Continuous + w.P1.Exam + w.P2.Continuous + w.P2.Exam + w.P3.Continuous + w.P3.Exam
}

type GradePartials struct {
	P1 PartialGrade `json:"p1" bson:"P1"`
	P2 PartialGrade `json:"p2" bson:"P2"`
	P3 PartialGrade `json:"p3" bson:"P3"`
}

type Grade struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SectionID primitive.ObjectID `json:"section_id" bson:"section"`
	StudentID primitive.ObjectID `json:"student_id" bson:"student"`
	Partials  GradePartials      `json:"partials" bson:"partials"`
	Weights   GradeWeights       `json:"weights" bson:"weights"`
	// Substitutive replaces the lower of Ex1/Ex2 when present.
	Substitutive *float64  `json:"substitutive" bson:"substitutive"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
