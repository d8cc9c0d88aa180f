package index

import (
	"fmt"
	"strings"

	"github.com/jonathan/employee-cv/internal/types"
)

// Mode selects how a record is flattened to text before embedding
type Mode string

// Serialization modes
const (
	ModeSummary  Mode = "summary"
	ModeDetailed Mode = "detailed"
)

// ParseMode maps a mode name to a Mode. The empty string selects ModeSummary.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSummary:
		return ModeSummary, nil
	case ModeDetailed:
		return ModeDetailed, nil
	}
	return "", &UnknownModeError{Mode: Mode(s)}
}

// Serialize flattens rec into lower-cased text for embedding
func Serialize(rec types.UnifiedRecord, mode Mode) (string, error) {
	switch mode {
	case ModeSummary:
		return summarize(rec), nil
	case ModeDetailed:
		return detail(rec), nil
	}
	return "", &UnknownModeError{Mode: mode}
}

func summarize(rec types.UnifiedRecord) string {
	var s []string
	if rec.CurrentRole != "" {
		s = append(s, fmt.Sprintf("%s experienced in %s.", rec.CurrentRole, rec.BusinessContext))
	}
	for _, w := range rec.WorkExperience {
		if w.Project == nil {
			continue
		}
		s = append(s, fmt.Sprintf("worked on '%s' project. %s", w.Project.ProjectName, strings.Join(w.Project.Responsibilities, " ")))
	}
	for _, w := range rec.WorkExperience {
		if w.Employment == nil {
			continue
		}
		s = append(s, fmt.Sprintf("previously held role as %s at %s. %s", w.Employment.Role, w.Employment.Organization, strings.Join(w.Employment.Responsibilities, " ")))
	}
	if len(rec.Education) > 0 {
		s = append(s, fmt.Sprintf("holds degree: %s.", strings.Join(rec.Education, ", ")))
	}
	return strings.ToLower(strings.TrimSpace(strings.Join(s, " ")))
}

func detail(rec types.UnifiedRecord) string {
	roles := make([]string, 0, len(rec.WorkExperience))
	for _, w := range rec.WorkExperience {
		roles = append(roles, w.Role())
	}
	projects := make([]string, 0, len(rec.WorkExperience))
	for _, p := range rec.Projects() {
		projects = append(projects, p.ProjectName)
	}

	parts := []string{
		"name: " + rec.FullName,
		"role: " + rec.CurrentRole,
		"business context: " + rec.BusinessContext,
		"endorsements: " + strings.Join(rec.Endorsements, ", "),
		"skills: " + strings.Join(rec.Skills, ", "),
		"roles: " + strings.Join(roles, ", "),
		"projects: " + strings.Join(projects, ", "),
		"education: " + strings.Join(rec.Education, ", "),
	}
	return strings.ToLower(strings.Join(parts, " | "))
}
