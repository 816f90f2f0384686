package model

// ResumeRecord is the structured output of the external extraction step.
// Every field is optional; absent scalars are empty strings, absent numbers
// are nil pointers and absent lists are nil slices. The chunker checks
// presence explicitly and never substitutes placeholder text.
type ResumeRecord struct {
	Name            string            `json:"name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Location        string            `json:"location,omitempty"`
	CurrentRole     string            `json:"current_role,omitempty"`
	YearsExperience *float64          `json:"years_experience,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Skills          []string          `json:"skills,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
	Experience      []ExperienceEntry `json:"experience,omitempty"`
	Certifications  []string          `json:"certifications,omitempty"`
	Languages       []string          `json:"languages,omitempty"`
	// LanguageSkills carries proficiency levels. When both lists are present
	// this one wins; the plain Languages list is ignored, never merged in.
	LanguageSkills []LanguageSkill `json:"language_skills,omitempty"`
}

type EducationEntry struct {
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Honors      string `json:"honors,omitempty"`
}

type ExperienceEntry struct {
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	Location         string   `json:"location,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Description      string   `json:"description,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
}

type LanguageSkill struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}
