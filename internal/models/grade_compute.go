package models

// FinalGrade is the computed result of one grade sheet.
type FinalGrade struct {
	Score        float64 `json:"score"`
	WeightSum    float64 `json:"weight_sum"`
	ReplacedExam string  `json:"replaced_exam,omitempty"` // "Ex1" or "Ex2" when the substitutive applied
}

func scoreOrZero(s Score) float64 {
	if s.Score == nil {
		return 0
	}
	return *s.Score
}

// applySubstitutive replaces the lower of the first two exams with the
// substitutive mark. With only one exam present that one is replaced; a tie
// replaces Ex1.
func applySubstitutive(ex1, ex2 Score, sub *float64) (Score, Score, string) {
	if sub == nil || (ex1.Score == nil && ex2.Score == nil) {
		return ex1, ex2, ""
	}
	replacement := Score{Score: sub}
	switch {
	case ex2.Score == nil:
		return replacement, ex2, "Ex1"
	case ex1.Score == nil:
		return ex1, replacement, "Ex2"
	case *ex1.Score <= *ex2.Score:
		return replacement, ex2, "Ex1"
	default:
		return ex1, replacement, "Ex2"
	}
}

// Final computes the weighted final mark. Missing scores count as zero.
// Weights are expected to sum 100; if they do not, the actual sum is used
// as the denominator so the result stays on the 0-20 scale.
func (g Grade) Final() FinalGrade {
	ex1, ex2, replaced := applySubstitutive(g.Partials.P1.Exam, g.Partials.P2.Exam, g.Substitutive)

	total := scoreOrZero(g.Partials.P1.Continuous)*g.Weights.P1.Continuous +
		scoreOrZero(ex1)*g.Weights.P1.Exam +
		scoreOrZero(g.Partials.P2.Continuous)*g.Weights.P2.Continuous +
		scoreOrZero(ex2)*g.Weights.P2.Exam +
		scoreOrZero(g.Partials.P3.Continuous)*g.Weights.P3.Continuous +
		scoreOrZero(g.Partials.P3.Exam)*g.Weights.P3.Exam

	weightSum := g.Weights.Sum()
	denom := weightSum
	if denom <= 0 {
		denom = 100
	}

	return FinalGrade{
		Score:        total / denom,
		WeightSum:    weightSum,
		ReplacedExam: replaced,
	}
}
