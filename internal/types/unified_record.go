package types

import (
	"encoding/json"
	"fmt"
)

// ExperienceType discriminates the WorkExperience union
type ExperienceType string

// Experience types
const (
	ExperienceEmployment ExperienceType = "employment"
	ExperienceProject    ExperienceType = "project"
)

// Contact holds the reachable identity fields of a person
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EmploymentEntry is a job held at an organization
type EmploymentEntry struct {
	Role             string   `json:"role"`
	Organization     string   `json:"organization"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities"`
}

// ProjectEntry is a project assignment
type ProjectEntry struct {
	ProjectID          string          `json:"project_id"`
	ProjectName        string          `json:"project_name"`
	Role               string          `json:"role"`
	StartDate          string          `json:"start_date,omitempty"`
	EndDate            string          `json:"end_date,omitempty"`
	Responsibilities   []string        `json:"responsibilities"`
	PerformanceMetrics json.RawMessage `json:"performance_metrics"`
}

// WorkExperience is a closed union: exactly one of Employment or Project is set.
type WorkExperience struct {
	Employment *EmploymentEntry
	Project    *ProjectEntry
}

// NewEmploymentExperience wraps an employment entry
func NewEmploymentExperience(e EmploymentEntry) WorkExperience {
	return WorkExperience{Employment: &e}
}

// NewProjectExperience wraps a project entry
func NewProjectExperience(p ProjectEntry) WorkExperience {
	return WorkExperience{Project: &p}
}

// Type returns the discriminator of the entry
func (w WorkExperience) Type() ExperienceType {
	if w.Project != nil {
		return ExperienceProject
	}
	return ExperienceEmployment
}

// StartDate returns the entry's start date, or "" when undated
func (w WorkExperience) StartDate() string {
	switch {
	case w.Employment != nil:
		return w.Employment.StartDate
	case w.Project != nil:
		return w.Project.StartDate
	}
	return ""
}

// Role returns the role held in the entry
func (w WorkExperience) Role() string {
	switch {
	case w.Employment != nil:
		return w.Employment.Role
	case w.Project != nil:
		return w.Project.Role
	}
	return ""
}

// Responsibilities returns the responsibilities of the entry
func (w WorkExperience) Responsibilities() []string {
	switch {
	case w.Employment != nil:
		return w.Employment.Responsibilities
	case w.Project != nil:
		return w.Project.Responsibilities
	}
	return nil
}

// MarshalJSON flattens the entry and adds a "type" discriminator
func (w WorkExperience) MarshalJSON() ([]byte, error) {
	switch {
	case w.Project != nil:
		return json.Marshal(struct {
			Type ExperienceType `json:"type"`
			*ProjectEntry
		}{ExperienceProject, w.Project})
	case w.Employment != nil:
		return json.Marshal(struct {
			Type ExperienceType `json:"type"`
			*EmploymentEntry
		}{ExperienceEmployment, w.Employment})
	}
	return nil, fmt.Errorf("work experience has no variant set")
}

// UnmarshalJSON dispatches on the "type" discriminator
func (w *WorkExperience) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ExperienceType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ExperienceProject:
		var p ProjectEntry
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*w = WorkExperience{Project: &p}
	case ExperienceEmployment:
		var e EmploymentEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		*w = WorkExperience{Employment: &e}
	default:
		return fmt.Errorf("unknown work experience type %q", head.Type)
	}
	return nil
}

// Clone returns a deep copy of the entry
func (w WorkExperience) Clone() WorkExperience {
	switch {
	case w.Employment != nil:
		e := *w.Employment
		e.Responsibilities = cloneStrings(e.Responsibilities)
		return WorkExperience{Employment: &e}
	case w.Project != nil:
		p := *w.Project
		p.Responsibilities = cloneStrings(p.Responsibilities)
		if p.PerformanceMetrics != nil {
			p.PerformanceMetrics = append(json.RawMessage(nil), p.PerformanceMetrics...)
		}
		return WorkExperience{Project: &p}
	}
	return WorkExperience{}
}

// UnifiedRecord is the reconciled view of one person across all source feeds
type UnifiedRecord struct {
	EmployeeID      string           `json:"employee_id"`
	FullName        string           `json:"full_name"`
	Contact         Contact          `json:"contact"`
	CurrentRole     string           `json:"current_role"`
	Education       []string         `json:"education"`
	WorkExperience  []WorkExperience `json:"work_experience"`
	Skills          []string         `json:"skills"`
	Endorsements    []string         `json:"endorsements"`
	BusinessContext string           `json:"business_context"`
	Issues          []string         `json:"issues"`
}

// Clone returns a deep copy of the record
func (r UnifiedRecord) Clone() UnifiedRecord {
	out := r
	out.Education = cloneStrings(r.Education)
	out.Skills = cloneStrings(r.Skills)
	out.Endorsements = cloneStrings(r.Endorsements)
	out.Issues = cloneStrings(r.Issues)
	if r.WorkExperience != nil {
		out.WorkExperience = make([]WorkExperience, len(r.WorkExperience))
		for i, w := range r.WorkExperience {
			out.WorkExperience[i] = w.Clone()
		}
	}
	return out
}

// Projects returns the project entries in work-experience order
func (r UnifiedRecord) Projects() []ProjectEntry {
	var out []ProjectEntry
	for _, w := range r.WorkExperience {
		if w.Project != nil {
			out = append(out, *w.Project)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
