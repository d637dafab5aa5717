package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func sheet() Grade {
	return Grade{
		Partials: GradePartials{
			P1: PartialGrade{Continuous: Score{ptr(12)}, Exam: Score{ptr(10)}},
			P2: PartialGrade{Continuous: Score{ptr(14)}, Exam: Score{ptr(16)}},
			P3: PartialGrade{Continuous: Score{ptr(15)}, Exam: Score{ptr(13)}},
		},
		Weights: DefaultGradeWeights(),
	}
}

func TestDefaultWeightsSum100(t *testing.T) {
	assert.Equal(t, 100.0, DefaultGradeWeights().Sum())
}

func TestFinalWeightedAverage(t *testing.T) {
	g := sheet()
	final := g.Final()

	// 12*15 + 10*15 + 14*15 + 16*15 + 15*20 + 13*20 = 1340
	assert.InDelta(t, 13.4, final.Score, 1e-9)
	assert.Equal(t, 100.0, final.WeightSum)
	assert.Empty(t, final.ReplacedExam)
}

func TestFinalMissingScoresCountAsZero(t *testing.T) {
	g := Grade{Weights: DefaultGradeWeights()}
	assert.Equal(t, 0.0, g.Final().Score)
}

func TestSubstitutiveReplacesLowerExam(t *testing.T) {
	g := sheet()
	g.Substitutive = ptr(18)

	final := g.Final()
	// Ex1 (10) is the lower exam and gets replaced by 18.
	assert.Equal(t, "Ex1", final.ReplacedExam)
	assert.InDelta(t, 14.6, final.Score, 1e-9)
}

func TestSubstitutiveWithSingleExamPresent(t *testing.T) {
	g := sheet()
	g.Partials.P1.Exam = Score{}
	g.Substitutive = ptr(18)

	final := g.Final()
	assert.Equal(t, "Ex2", final.ReplacedExam)
}

func TestSubstitutiveTieReplacesFirstExam(t *testing.T) {
	g := sheet()
	g.Partials.P1.Exam = Score{ptr(16)} // equal to Ex2
	g.Substitutive = ptr(18)

	assert.Equal(t, "Ex1", g.Final().ReplacedExam)
}

func TestFinalUsesActualWeightSumWhenNot100(t *testing.T) {
	g := sheet()
	g.Weights = GradeWeights{
		P1: PartialWeight{Continuous: 10, Exam: 10},
		P2: PartialWeight{Continuous: 10, Exam: 10},
		P3: PartialWeight{Continuous: 5, Exam: 5},
	}
	final := g.Final()
	assert.Equal(t, 50.0, final.WeightSum)
	// 12*10+10*10+14*10+16*10+15*5+13*5 = 660 over 50
	assert.InDelta(t, 13.2, final.Score, 1e-9)
}
