// Package chunker splits an extracted resume record into an ordered list
// of semantically labeled sections. It is a pure function of its input:
// no I/O, no clock, no randomness.
package chunker

import (
	"fmt"
	"strings"

	"github.com/talentvec/talentvec/internal/model"
)

// Section is one emitted chunk before persistence: what to embed, how to
// label it and the side data carried for display/filtering.
type Section struct {
	Type     model.SectionType
	Title    string
	Text     string
	Metadata map[string]interface{}
}

// Chunk emits sections in a fixed order: personal info, summary, one per
// experience entry, education, skills, certifications, languages, then an
// optional trailing full-document section concatenating everything above.
// A record with no usable fields yields an empty slice, not an error.
func Chunk(rec *model.ResumeRecord, includeFullDocument bool) []Section {
	if rec == nil {
		return nil
	}
	var sections []Section
	if s, ok := personalInfo(rec); ok {
		sections = append(sections, s)
	}
	if summary := strings.TrimSpace(rec.Summary); summary != "" {
		sections = append(sections, Section{
			Type:     model.SectionSummary,
			Title:    "Professional Summary",
			Text:     flattenMarkdown(summary),
			Metadata: map[string]interface{}{},
		})
	}
	for i, entry := range rec.Experience {
		if s := experience(entry, i); s.Text != "" {
			sections = append(sections, s)
		}
	}
	if s, ok := education(rec.Education); ok {
		sections = append(sections, s)
	}
	if s, ok := bulletSection(model.SectionSkills, "Skills", rec.Skills); ok {
		sections = append(sections, s)
	}
	if s, ok := bulletSection(model.SectionCertifications, "Certifications", rec.Certifications); ok {
		sections = append(sections, s)
	}
	if s, ok := languages(rec); ok {
		sections = append(sections, s)
	}
	if includeFullDocument && len(sections) > 0 {
		sections = append(sections, fullDocument(rec, sections))
	}
	return sections
}

func personalInfo(rec *model.ResumeRecord) (Section, bool) {
	var lines []string
	if rec.Name != "" {
		lines = append(lines, "Name: "+rec.Name)
	}
	if rec.Email != "" {
		lines = append(lines, "Email: "+rec.Email)
	}
	if rec.Phone != "" {
		lines = append(lines, "Phone: "+rec.Phone)
	}
	if rec.Location != "" {
		lines = append(lines, "Location: "+rec.Location)
	}
	if rec.CurrentRole != "" {
		lines = append(lines, "Current Role: "+rec.CurrentRole)
	}
	if rec.YearsExperience != nil {
		lines = append(lines, fmt.Sprintf("Years of Experience: %g", *rec.YearsExperience))
	}
	if len(lines) == 0 {
		return Section{}, false
	}
	return Section{
		Type:     model.SectionPersonalInfo,
		Title:    "Personal Information",
		Text:     strings.Join(lines, "\n"),
		Metadata: map[string]interface{}{"name": rec.Name},
	}, true
}

func experience(entry model.ExperienceEntry, index int) Section {
	var parts []string
	var title string
	switch {
	case entry.Title != "" && entry.Company != "":
		title = entry.Title + " at " + entry.Company
	case entry.Title != "":
		title = entry.Title
	case entry.Company != "":
		title = entry.Company
	}
	// no invented header when the entry names neither a role nor a company
	if title != "" {
		parts = append(parts, title)
	}
	if dates := dateRange(entry.StartDate, entry.EndDate); dates != "" {
		parts = append(parts, dates)
	}
	if desc := strings.TrimSpace(entry.Description); desc != "" {
		parts = append(parts, flattenMarkdown(desc))
	}
	if len(entry.Responsibilities) > 0 {
		parts = append(parts, "Responsibilities:\n"+bullets(entry.Responsibilities))
	}
	if len(entry.Achievements) > 0 {
		parts = append(parts, "Achievements:\n"+bullets(entry.Achievements))
	}
	// the section label is structural (full-document markers); it is not
	// part of the embedded text
	sectionTitle := title
	if sectionTitle == "" {
		sectionTitle = "Experience"
	}
	return Section{
		Type:  model.SectionExperience,
		Title: sectionTitle,
		Text:  strings.Join(parts, "\n"),
		Metadata: map[string]interface{}{
			"company":  entry.Company,
			"position": entry.Title,
			"index":    index,
		},
	}
}

func dateRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start + " - Present"
	case end != "":
		return "Until " + end
	}
	return ""
}

// Education entries stay in one combined chunk: they are short and rarely
// the target of fine-grained search.
func education(entries []model.EducationEntry) (Section, bool) {
	if len(entries) == 0 {
		return Section{}, false
	}
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		var parts []string
		switch {
		case entry.Degree != "" && entry.Field != "":
			parts = append(parts, entry.Degree+" in "+entry.Field)
		case entry.Degree != "":
			parts = append(parts, entry.Degree)
		case entry.Field != "":
			parts = append(parts, entry.Field)
		}
		if entry.Institution != "" {
			parts = append(parts, entry.Institution)
		}
		if entry.Year != "" {
			parts = append(parts, entry.Year)
		}
		if entry.GPA != "" {
			parts = append(parts, "GPA: "+entry.GPA)
		}
		if entry.Honors != "" {
			parts = append(parts, "Honors: "+entry.Honors)
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.Join(parts, ", ")))
	}
	return Section{
		Type:     model.SectionEducation,
		Title:    "Education",
		Text:     strings.Join(lines, "\n"),
		Metadata: map[string]interface{}{"entry_count": len(entries)},
	}, true
}

func bulletSection(t model.SectionType, title string, items []string) (Section, bool) {
	if len(items) == 0 {
		return Section{}, false
	}
	return Section{
		Type:     t,
		Title:    title,
		Text:     bullets(items),
		Metadata: map[string]interface{}{"count": len(items)},
	}, true
}

func languages(rec *model.ResumeRecord) (Section, bool) {
	// proficiency data, when present, always wins over the plain list
	if len(rec.LanguageSkills) > 0 {
		lines := make([]string, 0, len(rec.LanguageSkills))
		for _, skill := range rec.LanguageSkills {
			if skill.Proficiency != "" {
				lines = append(lines, "- "+skill.Language+" ("+skill.Proficiency+")")
			} else {
				lines = append(lines, "- "+skill.Language)
			}
		}
		return Section{
			Type:     model.SectionLanguages,
			Title:    "Languages",
			Text:     strings.Join(lines, "\n"),
			Metadata: map[string]interface{}{"count": len(rec.LanguageSkills)},
		}, true
	}
	return bulletSection(model.SectionLanguages, "Languages", rec.Languages)
}

func fullDocument(rec *model.ResumeRecord, prior []Section) Section {
	parts := make([]string, 0, len(prior))
	for _, s := range prior {
		parts = append(parts, "["+s.Title+"]\n"+s.Text)
	}
	return Section{
		Type:  model.SectionFullDocument,
		Title: "Complete Resume",
		Text:  strings.Join(parts, "\n\n"),
		Metadata: map[string]interface{}{
			"name":          rec.Name,
			"section_count": len(prior),
		},
	}
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
