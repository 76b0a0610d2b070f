package audit

import (
	"math"
	"time"

	"gradeaudit/internal/canvas"
)

// Facts are the submission attributes the classifier looks at.
type Facts struct {
	Delivered    bool
	Graded       bool
	Score        canvas.Score
	GradeMatches *bool
}

// FactsOf extracts Facts from a submission; nil means no submission.
func FactsOf(sub *canvas.Submission) Facts {
	if sub == nil {
		return Facts{}
	}
	return Facts{
		Delivered:    Delivered(sub),
		Graded:       sub.GradedAt != nil && *sub.GradedAt != "",
		Score:        sub.Score,
		GradeMatches: sub.GradeMatchesCurrentSubmission,
	}
}

// Delivered reports whether the student actually handed something in.
func Delivered(sub *canvas.Submission) bool {
	if sub == nil {
		return false
	}
	return sub.WorkflowState == "submitted" || sub.SubmittedAt != nil
}

// Classify assigns the status of one cell. Rules are checked in order and
// the first match wins.
func Classify(now, due, deadline time.Time, f Facts, policy ScorePolicy) Cell {
	if now.Before(due) {
		return Cell{Status: StatusNotStarted}
	}

	if f.Graded {
		if !f.Score.Valid && policy == ScoreNoScore {
			return Cell{Status: StatusGradedNoScore}
		}
		if f.GradeMatches != nil && !*f.GradeMatches {
			return Cell{Status: StatusGradeMismatch}
		}
		// Under ScoreZero a missing score lands here as Value 0.
		return Cell{Status: StatusGraded, Score: truncScore(f.Score.Value)}
	}

	if !now.After(deadline) {
		if f.Delivered {
			return Cell{Status: StatusDeliveredOnTime}
		}
		return Cell{Status: StatusPendingOnTime}
	}
	if f.Delivered {
		return Cell{Status: StatusUngradedLate}
	}
	return Cell{Status: StatusNotSubmitted}
}

// ClassifyTimeline places the assignment window relative to now.
func ClassifyTimeline(now, due, deadline time.Time) TimelineStatus {
	switch {
	case now.Before(due):
		return TimelineNotStarted
	case now.After(deadline):
		return TimelineOverdue
	default:
		return TimelineInProgress
	}
}

func truncScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Trunc(v))
}
