package audit

import "regexp"

var courseIDSeparators = regexp.MustCompile(`[\s,]+`)

// ParseCourseIDs splits free text on commas and whitespace. Order and
// duplicates are kept.
func ParseCourseIDs(text string) []string {
	var ids []string
	for _, tok := range courseIDSeparators.Split(text, -1) {
		if tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids
}
