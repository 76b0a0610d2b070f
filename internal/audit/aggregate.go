package audit

// CourseSummary is one row of the cross-course summary.
type CourseSummary struct {
	CourseID     string       `json:"course_id"`
	Name         string       `json:"name"`
	CourseCode   string       `json:"course_code"`
	AccountName  string       `json:"account_name"`
	Roles        RoleHolders  `json:"roles"`
	NonCompliant int          `json:"non_compliant"`
	Rollup       RollupStatus `json:"rollup"`
	Color        string       `json:"color"`
	Error        string       `json:"error,omitempty"`
}

// CountNonCompliant counts the cells that count against the instructor.
func CountNonCompliant(r *CourseReport) int {
	n := 0
	for _, row := range r.Rows {
		for _, c := range row.Cells {
			if c.Status.NonCompliant() {
				n++
			}
		}
	}
	return n
}

// Rollup reduces the report to a single verdict.
func Rollup(r *CourseReport) RollupStatus {
	switch {
	case len(r.Columns) == 0:
		return RollupNotConfigured
	case CountNonCompliant(r) > 0:
		return RollupNonCompliant
	default:
		return RollupCompliant
	}
}

func Summarize(r *CourseReport) CourseSummary {
	rollup := Rollup(r)
	return CourseSummary{
		CourseID:     r.CourseID,
		Name:         r.Course.Name,
		CourseCode:   r.Course.CourseCode,
		AccountName:  r.Account.Name,
		Roles:        r.Roles,
		NonCompliant: CountNonCompliant(r),
		Rollup:       rollup,
		Color:        rollup.Color(),
	}
}
