package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gradeaudit/internal/canvas"
)

// NotFoundLabel stands in for a role nobody holds.
const NotFoundLabel = "not found"

const studentEnrollmentType = "StudentEnrollment"

// Source is the upstream collaborator. List methods must return every page.
type Source interface {
	Course(ctx context.Context, courseID string) (*canvas.Course, error)
	Account(ctx context.Context, accountID int64) (*canvas.Account, error)
	Enrollments(ctx context.Context, courseID string, filter canvas.EnrollmentFilter) ([]canvas.Enrollment, error)
	Assignments(ctx context.Context, courseID string) ([]canvas.Assignment, error)
	Submissions(ctx context.Context, courseID string, assignmentID int64) ([]canvas.Submission, error)
}

// RoleNames are the enrollment roles queried for course staff.
type RoleNames struct {
	Teacher  string
	Tutor    string
	Director string
}

type Settings struct {
	Location    *time.Location
	GracePeriod time.Duration
	ScorePolicy ScorePolicy
	Roles       RoleNames
}

type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Column is an assignment that has a due date, with its timeline.
type Column struct {
	AssignmentID  int64          `json:"assignment_id"`
	Name          string         `json:"name"`
	Due           time.Time      `json:"due"`
	Deadline      time.Time      `json:"deadline"`
	DueLocal      string         `json:"due_local"`
	DeadlineLocal string         `json:"deadline_local"`
	Timeline      TimelineStatus `json:"timeline"`
	// DaysLate is -1 unless Timeline is TimelineOverdue.
	DaysLate int `json:"days_late"`
}

type Row struct {
	Student Student `json:"student"`
	Cells   []Cell  `json:"cells"`
}

type SkippedAssignment struct {
	AssignmentID int64       `json:"assignment_id"`
	Name         string      `json:"name"`
	Reason       WarningKind `json:"reason"`
}

// RoleHolders carries comma-joined staff names and emails.
type RoleHolders struct {
	TeacherNames   string `json:"teacher_names"`
	TeacherEmails  string `json:"teacher_emails"`
	TutorNames     string `json:"tutor_names"`
	TutorEmails    string `json:"tutor_emails"`
	DirectorNames  string `json:"director_names"`
	DirectorEmails string `json:"director_emails"`
}

type CourseReport struct {
	CourseID string              `json:"course_id"`
	Course   canvas.Course       `json:"course"`
	Account  canvas.Account      `json:"account"`
	Columns  []Column            `json:"columns"`
	Rows     []Row               `json:"rows"`
	Skipped  []SkippedAssignment `json:"skipped,omitempty"`
	Roles    RoleHolders         `json:"roles"`
	Warnings []Warning           `json:"warnings,omitempty"`
}

type Processor struct {
	src      Source
	settings Settings
	log      *slog.Logger
}

func NewProcessor(src Source, settings Settings, log *slog.Logger) *Processor {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		src:      src,
		settings: settings,
		log:      log,
	}
}

// Process builds the report of one course. clock is sampled once per
// assignment with a due date.
func (p *Processor) Process(ctx context.Context, courseID string, clock Clock) (*CourseReport, error) {
	log := p.log.With("course_id", courseID)

	course, err := p.src.Course(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	account, err := p.src.Account(ctx, course.AccountID)
	if err != nil {
		return nil, notFoundOr(err, "account", strconv.FormatInt(course.AccountID, 10))
	}

	report := &CourseReport{
		CourseID: courseID,
		Course:   *course,
		Account:  *account,
	}

	students, err := p.students(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		p.warn(log, report, Warning{
			Kind:    WarnEmptyRoster,
			Message: fmt.Sprintf("no students found for course %s", courseID),
		})
	} else if err := p.fillMatrix(ctx, log, report, students, clock); err != nil {
		return nil, err
	}

	roles, err := p.roleHolders(ctx, courseID)
	if err != nil {
		return nil, err
	}
	report.Roles = roles

	log.Info("course processed",
		"assignments", len(report.Columns),
		"skipped", len(report.Skipped),
		"students", len(report.Rows),
	)
	return report, nil
}

func (p *Processor) fillMatrix(ctx context.Context, log *slog.Logger, report *CourseReport, students []Student, clock Clock) error {
	assignments, err := p.src.Assignments(ctx, report.CourseID)
	if err != nil {
		return err
	}

	report.Rows = make([]Row, len(students))
	for i, s := range students {
		report.Rows[i] = Row{Student: s}
	}

	for _, a := range assignments {
		if a.DueAt == nil || *a.DueAt == "" {
			report.Skipped = append(report.Skipped, SkippedAssignment{AssignmentID: a.ID, Name: a.Name, Reason: WarnMissingDueDate})
			p.warn(log, report, Warning{
				Kind:         WarnMissingDueDate,
				Message:      fmt.Sprintf("assignment %q (ID: %d) has no due date and was skipped", a.Name, a.ID),
				AssignmentID: a.ID,
			})
			continue
		}
		due, err := ParseTimestamp(*a.DueAt)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedAssignment{AssignmentID: a.ID, Name: a.Name, Reason: WarnMalformedDueDate})
			p.warn(log, report, Warning{
				Kind:         WarnMalformedDueDate,
				Message:      fmt.Sprintf("assignment %q (ID: %d) was skipped: %v", a.Name, a.ID, err),
				AssignmentID: a.ID,
			})
			continue
		}

		now := clock()
		col := p.column(a, due, now)

		submissions, err := p.src.Submissions(ctx, report.CourseID, a.ID)
		if err != nil {
			return err
		}
		byStudent := make(map[int64]*canvas.Submission, len(submissions))
		for i := range submissions {
			// Later entries overwrite earlier ones.
			byStudent[submissions[i].UserID] = &submissions[i]
		}

		for i := range report.Rows {
			facts := FactsOf(byStudent[report.Rows[i].Student.ID])
			cell := Classify(now, col.Due, col.Deadline, facts, p.settings.ScorePolicy)
			report.Rows[i].Cells = append(report.Rows[i].Cells, cell)
		}
		report.Columns = append(report.Columns, col)

		log.Debug("assignment classified",
			"assignment_id", a.ID,
			"due", col.DueLocal,
			"deadline", col.DeadlineLocal,
			"timeline", col.Timeline.String(),
		)
	}
	return nil
}

func (p *Processor) column(a canvas.Assignment, due, now time.Time) Column {
	deadline := Deadline(due, p.settings.GracePeriod)
	col := Column{
		AssignmentID:  a.ID,
		Name:          a.Name,
		Due:           due,
		Deadline:      deadline,
		DueLocal:      FormatLocal(due, p.settings.Location),
		DeadlineLocal: FormatLocal(deadline, p.settings.Location),
		Timeline:      ClassifyTimeline(now, due, deadline),
		DaysLate:      -1,
	}
	if col.Timeline == TimelineOverdue {
		col.DaysLate = DaysLate(now, deadline, p.settings.Location)
	}
	return col
}

// students returns the roster in first-seen order; a repeated id keeps its
// position and takes the last name.
func (p *Processor) students(ctx context.Context, courseID string) ([]Student, error) {
	enrollments, err := p.src.Enrollments(ctx, courseID, canvas.EnrollmentFilter{Types: []string{studentEnrollmentType}})
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(enrollments))
	var students []Student
	for _, e := range enrollments {
		name := e.User.Name
		if name == "" {
			name = fmt.Sprintf("User %d", e.UserID)
		}
		if i, ok := index[e.UserID]; ok {
			students[i].Name = name
			continue
		}
		index[e.UserID] = len(students)
		students = append(students, Student{ID: e.UserID, Name: name})
	}
	return students, nil
}

func (p *Processor) roleHolders(ctx context.Context, courseID string) (RoleHolders, error) {
	var holders RoleHolders
	var err error
	if holders.TeacherNames, holders.TeacherEmails, err = p.holdersOf(ctx, courseID, p.settings.Roles.Teacher); err != nil {
		return RoleHolders{}, err
	}
	if holders.TutorNames, holders.TutorEmails, err = p.holdersOf(ctx, courseID, p.settings.Roles.Tutor); err != nil {
		return RoleHolders{}, err
	}
	if holders.DirectorNames, holders.DirectorEmails, err = p.holdersOf(ctx, courseID, p.settings.Roles.Director); err != nil {
		return RoleHolders{}, err
	}
	return holders, nil
}

func (p *Processor) holdersOf(ctx context.Context, courseID, role string) (names, emails string, err error) {
	if role == "" {
		return NotFoundLabel, NotFoundLabel, nil
	}
	enrollments, err := p.src.Enrollments(ctx, courseID, canvas.EnrollmentFilter{Roles: []string{role}})
	if err != nil {
		return "", "", err
	}

	var nameList, emailList []string
	for _, e := range enrollments {
		if n := strings.TrimSpace(e.User.Name); n != "" {
			nameList = append(nameList, n)
		}
		email := e.User.LoginID
		if email == "" {
			email = e.User.Email
		}
		if email = strings.TrimSpace(email); email != "" {
			emailList = append(emailList, email)
		}
	}
	return joinOrNotFound(nameList), joinOrNotFound(emailList), nil
}

func (p *Processor) warn(log *slog.Logger, report *CourseReport, w Warning) {
	log.Warn(w.Message, "kind", string(w.Kind))
	report.Warnings = append(report.Warnings, w)
}

func joinOrNotFound(values []string) string {
	if len(values) == 0 {
		return NotFoundLabel
	}
	return strings.Join(values, ", ")
}

func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, canvas.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return err
}
