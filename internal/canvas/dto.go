package canvas

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
	AccountID  int64  `json:"account_id"`
}

type Account struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	LoginID string `json:"login_id"`
	Email   string `json:"email"`
}

type Enrollment struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	Role   string `json:"role"`
	User   User   `json:"user"`
}

type Assignment struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	DueAt *string `json:"due_at"`
}

type Submission struct {
	UserID                        int64   `json:"user_id"`
	WorkflowState                 string  `json:"workflow_state"`
	SubmittedAt                   *string `json:"submitted_at"`
	GradedAt                      *string `json:"graded_at"`
	Score                         Score   `json:"score"`
	GradeMatchesCurrentSubmission *bool   `json:"grade_matches_current_submission"`
}

// Score is a nullable submission score. A value that is present but not
// numeric decodes as a valid zero.
type Score struct {
	Value float64
	Valid bool
}

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*s = Score{Valid: true}
			return nil
		}
		raw = str
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*s = Score{Valid: true}
		return nil
	}
	*s = Score{Value: v, Valid: true}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func ScoreOf(v float64) Score {
	return Score{Value: v, Valid: true}
}

// EnrollmentFilter narrows an enrollment listing by type and/or role.
type EnrollmentFilter struct {
	Types []string
	Roles []string
}
