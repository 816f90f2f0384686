package model

// SectionType is the closed category a chunk belongs to.
type SectionType string

const (
	SectionPersonalInfo   SectionType = "personal_info"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionFullDocument   SectionType = "full_document"
)

func (t SectionType) IsValid() bool {
	switch t {
	case SectionPersonalInfo, SectionSummary, SectionExperience, SectionEducation,
		SectionSkills, SectionCertifications, SectionLanguages, SectionFullDocument:
		return true
	}
	return false
}

// Chunk is one independently embeddable span of text derived from a resume.
// Chunks are written in a single batch per source and never mutated after
// creation; regeneration deletes the whole batch and re-creates it.
type Chunk struct {
	ID           string                 `json:"id"`
	OwnerID      string                 `json:"owner_id"`
	DocumentID   string                 `json:"document_id,omitempty"`
	ExtractionID string                 `json:"extraction_id,omitempty"`
	SeqIndex     int                    `json:"seq_index"`
	SectionType  SectionType            `json:"section_type"`
	Title        string                 `json:"title"`
	Content      string                 `json:"content"`
	// Embedding is nil when vector generation failed; such chunks stay
	// retrievable by direct lookup but are excluded from similarity search.
	Embedding      []float32              `json:"-"`
	EmbeddingModel string                 `json:"embedding_model,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Ctime          int64                  `json:"ctime"`
}

// ChunkMatch is a chunk paired with its cosine similarity to a query vector.
type ChunkMatch struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}
