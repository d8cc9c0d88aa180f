// Package aggregate folds the HRM, xOPS and custom source feeds into one
// identity-keyed set of unified records.
package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jonathan/employee-cv/internal/identity"
	"github.com/jonathan/employee-cv/internal/types"
)

// Data-quality flags recorded on entries with provenance gaps
const (
	IssueMissingHRM        = "Missing HRM data"
	IssueMissingHRMAndXOPS = "Missing HRM and xOPS data"
	defaultUnknown         = "Unknown"
	defaultUnknownRole     = "Unknown role"
	defaultUnnamedProject  = "Unnamed Project"
	placeholderKeyPrefix   = "new_"
)

// entry accumulates one person's data across the merge passes
type entry struct {
	types.Identity
	currentRole       string
	education         []string
	employmentHistory []types.EmploymentHistoryItem
	projects          []types.ProjectItem
	skills            []string
	endorsements      []string
	businessContext   string
	issues            []string
}

// Result is the outcome of a merge: one unified record per identity key,
// kept in the order keys were first created.
type Result struct {
	order   []string
	records map[string]*types.UnifiedRecord
}

// Keys returns identity keys in creation order
func (r *Result) Keys() []string {
	return append([]string(nil), r.order...)
}

// Get returns the record for key
func (r *Result) Get(key string) (types.UnifiedRecord, bool) {
	rec, ok := r.records[key]
	if !ok {
		return types.UnifiedRecord{}, false
	}
	return *rec, true
}

// Records returns unified records in creation order
func (r *Result) Records() []types.UnifiedRecord {
	out := make([]types.UnifiedRecord, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.records[key])
	}
	return out
}

// Len returns the number of unified records
func (r *Result) Len() int {
	return len(r.order)
}

// builder is the working state of a single merge pass. It implements
// identity.Index over the entries created so far.
type builder struct {
	order   []string
	entries map[string]*entry
}

func newBuilder() *builder {
	return &builder{entries: make(map[string]*entry)}
}

func (b *builder) Has(key string) bool {
	_, ok := b.entries[key]
	return ok
}

func (b *builder) Candidates() []identity.Candidate {
	out := make([]identity.Candidate, 0, len(b.order))
	for _, key := range b.order {
		e := b.entries[key]
		out = append(out, identity.Candidate{
			Key:      key,
			FullName: e.FullName,
			Email:    e.Email,
			Phone:    e.Phone,
		})
	}
	return out
}

// mintKey derives a key for a record that resolved to nothing. Placeholders
// contain an underscore, which Normalize never produces, so they cannot clash
// with a real id within one pass.
func (b *builder) mintKey(id types.Identity) string {
	if key := identity.Normalize(id.EmployeeID); key != "" {
		return key
	}
	for n := len(b.order) + 1; ; n++ {
		key := fmt.Sprintf("%s%d", placeholderKeyPrefix, n)
		if !b.Has(key) {
			return key
		}
	}
}

func (b *builder) create(key string, id types.Identity) *entry {
	e := &entry{Identity: id}
	b.entries[key] = e
	b.order = append(b.order, key)
	return e
}

// resolveOrCreate finds the entry id belongs to, creating one flagged with
// issue when no existing identity matches.
func (b *builder) resolveOrCreate(id types.Identity, issue string) *entry {
	if key, ok := identity.Resolve(id, b); ok {
		return b.entries[key]
	}
	key := b.mintKey(id)
	if e, ok := b.entries[key]; ok {
		return e
	}
	e := b.create(key, id)
	e.issues = append(e.issues, issue)
	return e
}

// Merge reconciles the three feeds in four passes: HRM seeds entries, xOPS
// projects and custom profiles are resolved onto them, then every entry is
// finalized. Merge never fails on partial or conflicting data; provenance gaps
// are recorded in the record's issues. Identical inputs always produce
// identical output.
func Merge(hrm []types.HRMRecord, xops []types.XOPSRecord, custom []types.CustomRecord) *Result {
	b := newBuilder()

	for _, rec := range hrm {
		b.addHRM(rec)
	}
	for _, rec := range xops {
		e := b.resolveOrCreate(rec.Identity, IssueMissingHRM)
		for _, p := range rec.AllProjects() {
			e.projects = append(e.projects, projectWithDefaults(p))
		}
	}
	for _, rec := range custom {
		e := b.resolveOrCreate(rec.Identity, IssueMissingHRMAndXOPS)
		if rec.BusinessContext != "" {
			e.businessContext = rec.BusinessContext
		}
		e.skills = append(e.skills, rec.Skills...)
		e.endorsements = append(e.endorsements, rec.AllEndorsements()...)
	}

	result := &Result{
		order:   b.order,
		records: make(map[string]*types.UnifiedRecord, len(b.order)),
	}
	for _, key := range b.order {
		rec := finalize(key, b.entries[key])
		result.records[key] = &rec
	}
	return result
}

// addHRM seeds or updates the entry keyed by the record's own normalized id.
// Fields the record carries overwrite earlier values for the same key.
func (b *builder) addHRM(rec types.HRMRecord) {
	key := identity.Normalize(rec.EmployeeID)
	if key == "" {
		key = b.mintKey(rec.Identity)
	}

	e, ok := b.entries[key]
	if !ok {
		e = b.create(key, rec.Identity)
	} else {
		overwrite(&e.EmployeeID, rec.EmployeeID)
		overwrite(&e.FullName, rec.FullName)
		overwrite(&e.Email, rec.Email)
		overwrite(&e.Phone, rec.Phone)
	}

	overwrite(&e.currentRole, rec.CurrentRole)
	if rec.Education != nil {
		e.education = append([]string(nil), rec.Education...)
	}
	if rec.EmploymentHistory != nil {
		e.employmentHistory = append([]types.EmploymentHistoryItem(nil), rec.EmploymentHistory...)
	}
}

func overwrite(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func projectWithDefaults(p types.ProjectItem) types.ProjectItem {
	if p.ProjectName == "" {
		p.ProjectName = defaultUnnamedProject
	}
	if p.Role == "" {
		p.Role = defaultUnknownRole
	}
	return p
}

// finalize back-fills defaults and assembles the ordered work experience
func finalize(key string, e *entry) types.UnifiedRecord {
	rec := types.UnifiedRecord{
		EmployeeID:      e.EmployeeID,
		FullName:        orDefault(e.FullName, defaultUnknown),
		Contact:         types.Contact{Email: e.Email, Phone: e.Phone},
		CurrentRole:     orDefault(e.currentRole, defaultUnknown),
		Education:       nonNil(e.education),
		Skills:          nonNil(e.skills),
		Endorsements:    nonNil(e.endorsements),
		BusinessContext: e.businessContext,
		Issues:          nonNil(e.issues),
	}
	if rec.EmployeeID == "" {
		rec.EmployeeID = key
	}

	work := make([]types.WorkExperience, 0, len(e.employmentHistory)+len(e.projects))
	for _, job := range e.employmentHistory {
		work = append(work, types.NewEmploymentExperience(types.EmploymentEntry{
			Role:             orDefault(job.Role, defaultUnknownRole),
			Organization:     orDefault(job.Organization, defaultUnknown),
			StartDate:        job.StartDate,
			EndDate:          job.EndDate,
			Responsibilities: nonNil([]string(job.Responsibilities)),
		}))
	}
	for _, p := range e.projects {
		metrics := p.PerformanceMetrics
		if len(metrics) == 0 {
			metrics = json.RawMessage(`{}`)
		}
		work = append(work, types.NewProjectExperience(types.ProjectEntry{
			ProjectID:          p.ProjectID,
			ProjectName:        p.ProjectName,
			Role:               p.Role,
			StartDate:          p.StartDate,
			EndDate:            p.EndDate,
			Responsibilities:   nonNil([]string(p.Responsibilities)),
			PerformanceMetrics: append(json.RawMessage(nil), metrics...),
		}))
	}
	SortWorkExperience(work)
	rec.WorkExperience = work

	return rec
}

// SortWorkExperience orders entries by start date ascending. Undated entries
// sort strictly after every dated entry; equal dates keep their input order.
func SortWorkExperience(work []types.WorkExperience) {
	sort.SliceStable(work, func(i, j int) bool {
		a, b := work[i].StartDate(), work[j].StartDate()
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
