package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradeaudit/internal/canvas"
	"gradeaudit/internal/logger"
)

// fakeSource serves canned upstream data keyed by course id.
type fakeSource struct {
	courses     map[string]canvas.Course
	accounts    map[int64]canvas.Account
	students    map[string][]canvas.Enrollment
	staff       map[string]map[string][]canvas.Enrollment
	assignments map[string][]canvas.Assignment
	submissions map[int64][]canvas.Submission
	failOn      map[string]error

	submissionCalls map[int64]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		courses:         map[string]canvas.Course{},
		accounts:        map[int64]canvas.Account{},
		students:        map[string][]canvas.Enrollment{},
		staff:           map[string]map[string][]canvas.Enrollment{},
		assignments:     map[string][]canvas.Assignment{},
		submissions:     map[int64][]canvas.Submission{},
		failOn:          map[string]error{},
		submissionCalls: map[int64]int{},
	}
}

func (f *fakeSource) Course(_ context.Context, courseID string) (*canvas.Course, error) {
	if err := f.failOn["course:"+courseID]; err != nil {
		return nil, err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, fmt.Errorf("get course %s: %w", courseID, canvas.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeSource) Account(_ context.Context, accountID int64) (*canvas.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("get account %d: %w", accountID, canvas.ErrNotFound)
	}
	return &a, nil
}

func (f *fakeSource) Enrollments(_ context.Context, courseID string, filter canvas.EnrollmentFilter) ([]canvas.Enrollment, error) {
	if len(filter.Roles) > 0 {
		return f.staff[courseID][filter.Roles[0]], nil
	}
	return f.students[courseID], nil
}

func (f *fakeSource) Assignments(_ context.Context, courseID string) ([]canvas.Assignment, error) {
	if err := f.failOn["assignments:"+courseID]; err != nil {
		return nil, err
	}
	return f.assignments[courseID], nil
}

func (f *fakeSource) Submissions(_ context.Context, _ string, assignmentID int64) ([]canvas.Submission, error) {
	f.submissionCalls[assignmentID]++
	return f.submissions[assignmentID], nil
}

func (f *fakeSource) addCourse(id string, students ...canvas.Enrollment) {
	f.courses[id] = canvas.Course{ID: 1, Name: "Course " + id, CourseCode: "C-" + id, AccountID: 7}
	f.accounts[7] = canvas.Account{ID: 7, Name: "Diploma in Data"}
	f.students[id] = students
}

func student(id int64, name string) canvas.Enrollment {
	return canvas.Enrollment{UserID: id, Type: studentEnrollmentType, User: canvas.User{ID: id, Name: name}}
}

func staffMember(name, login string) canvas.Enrollment {
	return canvas.Enrollment{User: canvas.User{Name: name, LoginID: login}}
}

func testSettings() Settings {
	return Settings{
		Location:    time.UTC,
		GracePeriod: DefaultGracePeriod,
		ScorePolicy: ScoreNoScore,
		Roles:       RoleNames{Teacher: "TeacherEnrollment", Tutor: "Tutor social", Director: "Director"},
	}
}

func newTestProcessor(src Source) *Processor {
	return NewProcessor(src, testSettings(), logger.Discard())
}

func TestProcessBuildsMatrix(t *testing.T) {
	src := newFakeSource()
	src.addCourse("111", student(1, "Ana"), student(2, "Bruno"), student(3, ""))
	src.assignments["111"] = []canvas.Assignment{
		{ID: 10, Name: "Essay", DueAt: strPtr("2024-01-01T00:00:00Z")},
		{ID: 11, Name: "Draft"},
		{ID: 12, Name: "Quiz", DueAt: strPtr("2024-02-01T00:00:00Z")},
		{ID: 13, Name: "Broken", DueAt: strPtr("not a date")},
	}
	src.submissions[10] = []canvas.Submission{
		{UserID: 1, WorkflowState: "graded", SubmittedAt: strPtr("2024-01-01T00:00:00Z"), GradedAt: strPtr("2024-01-04T00:00:00Z"), Score: canvas.ScoreOf(17.9)},
		{UserID: 2, WorkflowState: "submitted"},
	}
	src.staff["111"] = map[string][]canvas.Enrollment{
		"TeacherEnrollment": {staffMember("Prof. Rojas", "rojas@example.test"), staffMember("Prof. Diaz", "diaz@example.test")},
		"Director":          {staffMember("Dr. Soto", "")},
	}

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	report, err := newTestProcessor(src).Process(context.Background(), "111", FrozenClock(now))
	require.NoError(t, err)

	assert.Equal(t, "Course 111", report.Course.Name)
	assert.Equal(t, "Diploma in Data", report.Account.Name)

	require.Len(t, report.Columns, 2)
	assert.Equal(t, "Essay", report.Columns[0].Name)
	assert.Equal(t, "01/01/2024", report.Columns[0].DueLocal)
	assert.Equal(t, "10/01/2024", report.Columns[0].DeadlineLocal)
	assert.Equal(t, TimelineOverdue, report.Columns[0].Timeline)
	assert.Equal(t, 5, report.Columns[0].DaysLate)
	assert.Equal(t, TimelineNotStarted, report.Columns[1].Timeline)
	assert.Equal(t, -1, report.Columns[1].DaysLate)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "User 3", report.Rows[2].Student.Name)
	assert.Equal(t, []Cell{{Status: StatusGraded, Score: 17}, {Status: StatusNotStarted}}, report.Rows[0].Cells)
	assert.Equal(t, []Cell{{Status: StatusUngradedLate}, {Status: StatusNotStarted}}, report.Rows[1].Cells)
	assert.Equal(t, []Cell{{Status: StatusNotSubmitted}, {Status: StatusNotStarted}}, report.Rows[2].Cells)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, WarnMissingDueDate, report.Skipped[0].Reason)
	assert.Equal(t, WarnMalformedDueDate, report.Skipped[1].Reason)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, int64(11), report.Warnings[0].AssignmentID)

	assert.Equal(t, "Prof. Rojas, Prof. Diaz", report.Roles.TeacherNames)
	assert.Equal(t, "rojas@example.test, diaz@example.test", report.Roles.TeacherEmails)
	assert.Equal(t, NotFoundLabel, report.Roles.TutorNames)
	assert.Equal(t, NotFoundLabel, report.Roles.TutorEmails)
	assert.Equal(t, "Dr. Soto", report.Roles.DirectorNames)
	assert.Equal(t, NotFoundLabel, report.Roles.DirectorEmails)

	assert.Equal(t, 1, src.submissionCalls[10])
	assert.Equal(t, 1, src.submissionCalls[12])
	assert.Zero(t, src.submissionCalls[11])
}

func TestProcessLastSubmissionWins(t *testing.T) {
	src := newFakeSource()
	src.addCourse("1", student(1, "Ana"))
	src.assignments["1"] = []canvas.Assignment{{ID: 10, Name: "Essay", DueAt: strPtr("2024-01-01T00:00:00Z")}}
	src.submissions[10] = []canvas.Submission{
		{UserID: 1, WorkflowState: "submitted"},
		{UserID: 1, WorkflowState: "unsubmitted"},
	}

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	report, err := newTestProcessor(src).Process(context.Background(), "1", FrozenClock(now))
	require.NoError(t, err)
	assert.Equal(t, StatusNotSubmitted, report.Rows[0].Cells[0].Status)
}

func TestProcessDuplicateStudentKeepsOneRow(t *testing.T) {
	src := newFakeSource()
	src.addCourse("1", student(1, "Ana"), student(2, "Bruno"), student(1, "Ana Maria"))

	report, err := newTestProcessor(src).Process(context.Background(), "1", FrozenClock(time.Now()))
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Ana Maria", report.Rows[0].Student.Name)
	assert.Equal(t, "Bruno", report.Rows[1].Student.Name)
}

func TestProcessEmptyRoster(t *testing.T) {
	src := newFakeSource()
	src.addCourse("222")
	src.assignments["222"] = []canvas.Assignment{{ID: 10, Name: "Essay", DueAt: strPtr("2024-01-01T00:00:00Z")}}

	report, err := newTestProcessor(src).Process(context.Background(), "222", FrozenClock(time.Now()))
	require.NoError(t, err)
	assert.Empty(t, report.Columns)
	assert.Empty(t, report.Rows)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarnEmptyRoster, report.Warnings[0].Kind)
	assert.Equal(t, NotFoundLabel, report.Roles.TeacherNames)
	assert.Zero(t, src.submissionCalls[10])
}

func TestProcessNotFound(t *testing.T) {
	src := newFakeSource()

	_, err := newTestProcessor(src).Process(context.Background(), "bad", FrozenClock(time.Now()))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "course", nf.Resource)
	assert.Equal(t, "bad", nf.ID)
}

func TestProcessMissingAccountIsNotFound(t *testing.T) {
	src := newFakeSource()
	src.courses["5"] = canvas.Course{ID: 5, AccountID: 99}

	_, err := newTestProcessor(src).Process(context.Background(), "5", FrozenClock(time.Now()))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "account", nf.Resource)
}

func TestProcessPropagatesTransportErrors(t *testing.T) {
	src := newFakeSource()
	src.addCourse("3", student(1, "Ana"))
	boom := &canvas.StatusError{Method: "GET", URL: "/courses/3/assignments", StatusCode: 502}
	src.failOn["assignments:3"] = boom

	_, err := newTestProcessor(src).Process(context.Background(), "3", FrozenClock(time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
}

func TestProcessSamplesClockPerAssignment(t *testing.T) {
	src := newFakeSource()
	src.addCourse("4", student(1, "Ana"))
	src.assignments["4"] = []canvas.Assignment{
		{ID: 1, Name: "A", DueAt: strPtr("2024-01-01T00:00:00Z")},
		{ID: 2, Name: "B", DueAt: strPtr("2024-01-01T00:00:00Z")},
		{ID: 3, Name: "C"},
	}

	samples := []time.Time{
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 1, 0, time.UTC),
	}
	calls := 0
	clock := func() time.Time {
		s := samples[calls]
		calls++
		return s
	}

	report, err := newTestProcessor(src).Process(context.Background(), "4", clock)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, StatusPendingOnTime, report.Rows[0].Cells[0].Status)
	assert.Equal(t, StatusNotSubmitted, report.Rows[0].Cells[1].Status)
}
