package audit

import (
	"fmt"
	"strconv"
)

// Status is the verdict for one (student, assignment) cell.
type Status int

const (
	StatusNotStarted Status = iota
	StatusGraded
	StatusGradedNoScore
	StatusGradeMismatch
	StatusDeliveredOnTime
	StatusPendingOnTime
	StatusUngradedLate
	StatusNotSubmitted
)

// Statuses lists every cell status in declaration order.
var Statuses = []Status{
	StatusNotStarted,
	StatusGraded,
	StatusGradedNoScore,
	StatusGradeMismatch,
	StatusDeliveredOnTime,
	StatusPendingOnTime,
	StatusUngradedLate,
	StatusNotSubmitted,
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "NOT_STARTED"
	case StatusGraded:
		return "GRADED"
	case StatusGradedNoScore:
		return "GRADED_NO_SCORE"
	case StatusGradeMismatch:
		return "GRADE_MISMATCH"
	case StatusDeliveredOnTime:
		return "DELIVERED_ON_TIME"
	case StatusPendingOnTime:
		return "PENDING_ON_TIME"
	case StatusUngradedLate:
		return "UNGRADED_LATE"
	case StatusNotSubmitted:
		return "NOT_SUBMITTED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NonCompliant reports whether the status counts against the instructor.
func (s Status) NonCompliant() bool {
	switch s {
	case StatusUngradedLate, StatusNotSubmitted, StatusGradeMismatch, StatusGradedNoScore:
		return true
	default:
		return false
	}
}

// Cell is one entry of the status matrix. Score is set only for StatusGraded.
type Cell struct {
	Status Status `json:"status"`
	Score  int    `json:"score"`
}

// Label is the human-facing text of the cell.
func (c Cell) Label() string {
	switch c.Status {
	case StatusNotStarted:
		return "Not yet applicable"
	case StatusGraded:
		return strconv.Itoa(c.Score)
	case StatusGradedNoScore:
		return "Graded without score"
	case StatusGradeMismatch:
		return "Grade outdated"
	case StatusDeliveredOnTime:
		return "Delivered, in time"
	case StatusPendingOnTime:
		return "Not delivered, in time"
	case StatusUngradedLate:
		return "Not graded in time"
	case StatusNotSubmitted:
		return "Nothing delivered"
	default:
		return c.Status.String()
	}
}

// TimelineStatus places an assignment itself, independent of any student.
type TimelineStatus int

const (
	TimelineNotStarted TimelineStatus = iota
	TimelineInProgress
	TimelineOverdue
)

func (s TimelineStatus) String() string {
	switch s {
	case TimelineNotStarted:
		return "NOT_STARTED"
	case TimelineInProgress:
		return "IN_PROGRESS"
	case TimelineOverdue:
		return "OVERDUE"
	default:
		return fmt.Sprintf("TimelineStatus(%d)", int(s))
	}
}

func (s TimelineStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RollupStatus is the single verdict for a course.
type RollupStatus string

const (
	RollupCompliant     RollupStatus = "COMPLIANT"
	RollupNonCompliant  RollupStatus = "NON_COMPLIANT"
	RollupNotConfigured RollupStatus = "NOT_CONFIGURED"
	RollupNotFound      RollupStatus = "NOT_FOUND"
	RollupError         RollupStatus = "ERROR"
)

// Color is the display color attached to the rollup.
func (r RollupStatus) Color() string {
	switch r {
	case RollupCompliant:
		return "lightgreen"
	case RollupNonCompliant:
		return "red"
	case RollupNotConfigured:
		return "yellow"
	case RollupNotFound:
		return "gray"
	default:
		return "orange"
	}
}

// Severity orders rollups from fine (0) to worst.
func (r RollupStatus) Severity() int {
	switch r {
	case RollupCompliant:
		return 0
	case RollupNotConfigured:
		return 1
	case RollupNonCompliant:
		return 2
	case RollupNotFound:
		return 3
	default:
		return 4
	}
}

// ScorePolicy decides what a graded submission without a score becomes.
type ScorePolicy int

const (
	// ScoreNoScore reports it as StatusGradedNoScore.
	ScoreNoScore ScorePolicy = iota
	// ScoreZero reports it as StatusGraded with score 0.
	ScoreZero
)

// NowPolicy decides how often the current instant is sampled during a batch.
type NowPolicy int

const (
	NowFrozen NowPolicy = iota
	NowPerAssignment
)
