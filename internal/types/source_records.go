// Package types provides type definitions for structured data used throughout the employee-cv system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list of strings that also accepts a bare JSON string.
// Source feeds disagree on whether fields like education are scalars or lists.
type StringList []string

// UnmarshalJSON accepts null, a string, or an array of strings
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = items
	return nil
}

// Join returns the items joined with sep
func (l StringList) Join(sep string) string {
	return strings.Join(l, sep)
}

// Identity holds the fields every source feed may carry to identify a person
type Identity struct {
	EmployeeID string `json:"employee_id,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// EmploymentHistoryItem is one job from the HRM feed
type EmploymentHistoryItem struct {
	Role             string     `json:"role,omitempty"`
	Organization     string     `json:"organization,omitempty"`
	StartDate        string     `json:"start_date,omitempty"`
	EndDate          string     `json:"end_date,omitempty"`
	Responsibilities StringList `json:"responsibilities,omitempty"`
}

// HRMRecord is the HR management feed shape: identity, employment history and education
type HRMRecord struct {
	Identity
	CurrentRole       string                  `json:"current_role,omitempty"`
	EmploymentHistory []EmploymentHistoryItem `json:"employment_history,omitempty"`
	Education         StringList              `json:"education,omitempty"`
}

// ProjectItem is one project assignment from the xOPS feed
type ProjectItem struct {
	ProjectID          string          `json:"project_id,omitempty"`
	ProjectName        string          `json:"project_name,omitempty"`
	Role               string          `json:"role,omitempty"`
	StartDate          string          `json:"start_date,omitempty"`
	EndDate            string          `json:"end_date,omitempty"`
	Responsibilities   StringList      `json:"responsibilities,omitempty"`
	PerformanceMetrics json.RawMessage `json:"performance_metrics,omitempty"`
}

// isZero reports whether no project field is set
func (p ProjectItem) isZero() bool {
	return p.ProjectID == "" && p.ProjectName == "" && p.Role == "" &&
		p.StartDate == "" && p.EndDate == "" && len(p.Responsibilities) == 0 &&
		len(p.PerformanceMetrics) == 0
}

// XOPSRecord is the project operations feed shape: identity plus projects.
// Some exports flatten a single project into the record itself; those inline
// fields are decoded into Inline.
type XOPSRecord struct {
	Identity
	Projects []ProjectItem `json:"projects,omitempty"`
	Inline   ProjectItem   `json:"-"`
}

// UnmarshalJSON decodes both the nested and the flattened xOPS shapes
func (r *XOPSRecord) UnmarshalJSON(data []byte) error {
	type nested struct {
		Identity
		Projects []ProjectItem `json:"projects,omitempty"`
	}
	var n nested
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	var inline ProjectItem
	if err := json.Unmarshal(data, &inline); err != nil {
		return err
	}

	r.Identity = n.Identity
	r.Projects = n.Projects
	r.Inline = inline
	return nil
}

// AllProjects returns the nested projects followed by the inline project, if any
func (r XOPSRecord) AllProjects() []ProjectItem {
	projects := make([]ProjectItem, 0, len(r.Projects)+1)
	projects = append(projects, r.Projects...)
	if !r.Inline.isZero() {
		projects = append(projects, r.Inline)
	}
	return projects
}

// CustomRecord is the custom profile feed shape: business context, endorsements and skills
type CustomRecord struct {
	Identity
	BusinessContext   string     `json:"business_context,omitempty"`
	Skills            StringList `json:"skills,omitempty"`
	Endorsements      StringList `json:"endorsements,omitempty"`
	TeamContributions StringList `json:"team_contributions,omitempty"`
}

// AllEndorsements returns endorsements followed by team contributions
func (r CustomRecord) AllEndorsements() []string {
	out := make([]string, 0, len(r.Endorsements)+len(r.TeamContributions))
	out = append(out, r.Endorsements...)
	out = append(out, r.TeamContributions...)
	return out
}
