package types

// PersonalInfo is the header block of a generated CV
type PersonalInfo struct {
	FullName    string `json:"full_name"`
	CurrentRole string `json:"current_role"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// SkillCategory groups related skills under one heading
type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Language is a spoken language and proficiency level
type Language struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// CVProject is one project line of a generated CV
type CVProject struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Period           string   `json:"period"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Technologies     []string `json:"technologies"`
}

// CV is the structured payload produced by the drafting and refinement steps
type CV struct {
	PersonalInfo PersonalInfo    `json:"personal_info"`
	Brief        string          `json:"brief"`
	Skills       []SkillCategory `json:"skills"`
	Languages    []Language      `json:"languages"`
	Hobbies      []string        `json:"hobbies"`
	Projects     []CVProject     `json:"projects"`
}

// EmptyCV returns a CV with every list present and empty
func EmptyCV() *CV {
	cv := &CV{}
	cv.FillDefaults()
	return cv
}

// FillDefaults replaces nil lists with empty ones so the CV always serializes
// with arrays rather than nulls.
func (c *CV) FillDefaults() {
	if c.Skills == nil {
		c.Skills = []SkillCategory{}
	}
	for i := range c.Skills {
		if c.Skills[i].Skills == nil {
			c.Skills[i].Skills = []string{}
		}
	}
	if c.Languages == nil {
		c.Languages = []Language{}
	}
	if c.Hobbies == nil {
		c.Hobbies = []string{}
	}
	if c.Projects == nil {
		c.Projects = []CVProject{}
	}
	for i := range c.Projects {
		if c.Projects[i].Responsibilities == nil {
			c.Projects[i].Responsibilities = []string{}
		}
		if c.Projects[i].Technologies == nil {
			c.Projects[i].Technologies = []string{}
		}
	}
}

// Clone returns a deep copy of the CV
func (c *CV) Clone() *CV {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = make([]SkillCategory, len(c.Skills))
	for i, s := range c.Skills {
		out.Skills[i] = SkillCategory{Category: s.Category, Skills: cloneStrings(s.Skills)}
	}
	out.Languages = append([]Language{}, c.Languages...)
	out.Hobbies = cloneStrings(c.Hobbies)
	if out.Hobbies == nil {
		out.Hobbies = []string{}
	}
	out.Projects = make([]CVProject, len(c.Projects))
	for i, p := range c.Projects {
		p.Responsibilities = cloneStrings(p.Responsibilities)
		p.Technologies = cloneStrings(p.Technologies)
		out.Projects[i] = p
	}
	out.FillDefaults()
	return &out
}

// ReviewIssue is a single finding from the review step
type ReviewIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}
