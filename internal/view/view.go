package view

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gradeaudit/internal/audit"
)

// Renderer writes audit results to a terminal.
type Renderer struct {
	w      io.Writer
	lg     *lipgloss.Renderer
	webURL string

	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

// New returns a Renderer on w. webURL prefixes the course and account links.
func New(w io.Writer, webURL string) *Renderer {
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		w:       w,
		lg:      lg,
		webURL:  webURL,
		title:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		heading: lg.NewStyle().Bold(true),
		label:   lg.NewStyle().Bold(true),
		muted:   lg.NewStyle().Foreground(lipgloss.Color("#888888")),
		warning: lg.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
		failure: lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		header:  lg.NewStyle().Bold(true).Padding(0, 1),
		cell:    lg.NewStyle(),
		border:  lg.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}

// Batch writes every course, the summary table and the elapsed time.
func (r *Renderer) Batch(b audit.BatchResult) {
	for _, res := range b.Results {
		r.Course(res)
	}
	r.Summary(b)
}

func (r *Renderer) Course(res audit.CourseResult) {
	fmt.Fprintln(r.w, r.muted.Render("────────────────────────────────────────"))

	if res.Report == nil {
		fmt.Fprintln(r.w, r.title.Render("Course "+res.Summary.CourseID))
		fmt.Fprintln(r.w, r.failure.Render(fmt.Sprintf("Error processing course %s: %s", res.Summary.CourseID, res.Summary.Error)))
		fmt.Fprintln(r.w)
		return
	}

	rep := res.Report
	fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf("%s - (%d)", rep.Account.Name, rep.Account.ID)),
		r.muted.Render(fmt.Sprintf("%s/accounts/%d", r.webURL, rep.Account.ID)))
	fmt.Fprintln(r.w, r.heading.Render(fmt.Sprintf("%s - (%d) - %s", rep.Course.Name, rep.Course.ID, rep.Course.CourseCode)),
		r.muted.Render(fmt.Sprintf("%s/courses/%s/gradebook", r.webURL, rep.CourseID)))

	fmt.Fprintf(r.w, "%s %s | %s %s\n",
		r.label.Render("Teacher:"), rep.Roles.TeacherNames,
		r.label.Render("Email:"), rep.Roles.TeacherEmails)
	fmt.Fprintf(r.w, "%s %s | %s %s\n",
		r.label.Render("Tutor:"), rep.Roles.TutorEmails,
		r.label.Render("Director:"), rep.Roles.DirectorNames)

	for _, w := range rep.Warnings {
		fmt.Fprintln(r.w, r.warning.Render("! "+w.Message))
	}

	if len(rep.Columns) == 0 {
		fmt.Fprintln(r.w, r.muted.Render("No assignments with a due date were processed."))
		fmt.Fprintln(r.w)
		return
	}

	fmt.Fprintln(r.w, r.timeline(rep.Columns))
	if len(rep.Rows) > 0 {
		fmt.Fprintln(r.w, r.matrix(rep))
	}
	fmt.Fprintf(r.w, "%s %d\n\n", r.label.Render("Not graded in time (non-compliant):"), res.Summary.NonCompliant)
}

// Summary writes one row per input course and the total elapsed time.
func (r *Renderer) Summary(b audit.BatchResult) {
	if len(b.Results) > 0 {
		fmt.Fprintln(r.w, r.title.Render("Course summary"))

		rows := make([][]string, 0, len(b.Results))
		for _, res := range b.Results {
			s := res.Summary
			name := s.Name
			if s.Error != "" {
				name = s.Error
			}
			rows = append(rows, []string{
				s.CourseID,
				name,
				s.AccountName,
				s.Roles.TeacherNames,
				s.Roles.TeacherEmails,
				s.Roles.TutorEmails,
				s.Roles.DirectorNames,
				strconv.Itoa(s.NonCompliant),
				RollupPalette(s.Rollup).style(r.lg).Render(string(s.Rollup)),
			})
		}
		fmt.Fprintln(r.w, r.table(
			[]string{"Course", "Name", "Account", "Teacher", "Teacher email", "Tutor", "Director", "Non-compliant", "Status"},
			rows,
		))
	}
	fmt.Fprintf(r.w, "%s %.2f seconds\n", r.label.Render("Total time:"), b.Elapsed.Seconds())
}

func (r *Renderer) timeline(cols []audit.Column) string {
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		st := TimelinePalette(c.Timeline).style(r.lg)
		late := "n/a"
		if c.DaysLate >= 0 {
			late = strconv.Itoa(c.DaysLate)
		}
		rows = append(rows, []string{
			st.Render(c.Name),
			st.Render(c.DueLocal),
			st.Render(c.DeadlineLocal),
			st.Render(c.Timeline.String()),
			st.Render(late),
		})
	}
	return r.table([]string{"Assignment", "Due", "Grading deadline", "Status", "Days late"}, rows)
}

func (r *Renderer) matrix(rep *audit.CourseReport) string {
	headers := make([]string, 0, len(rep.Columns)+1)
	headers = append(headers, "Student")
	for _, c := range rep.Columns {
		headers = append(headers, c.Name)
	}

	rows := make([][]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		line := make([]string, 0, len(row.Cells)+1)
		line = append(line, row.Student.Name)
		for _, cell := range row.Cells {
			line = append(line, StatusPalette(cell.Status).style(r.lg).Render(cell.Label()))
		}
		rows = append(rows, line)
	}
	return r.table(headers, rows)
}

func (r *Renderer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.cell
		})
	return t.String()
}
