package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/pkg/timeutil"
)

const (
	defaultAnswerTopK = 5
	answerTopKCap     = 10
	noMatchAnswer     = "No matching resumes were found for this question. Try rephrasing it or lowering the similarity threshold."
)

// AnswerService answers questions about the stored resumes by retrieving
// the closest records and handing their text to a generation model.
type AnswerService struct {
	search    *SearchService
	generator Generator
}

func NewAnswerService(search *SearchService, generator Generator) *AnswerService {
	return &AnswerService{search: search, generator: generator}
}

type AnswerSource struct {
	RecordID   string  `json:"record_id"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity"`
}

type Answer struct {
	AnswerText string         `json:"answer"`
	Sources    []AnswerSource `json:"sources"`
	Usage      ai.Usage       `json:"usage"`
	LatencyMs  int64          `json:"latency_ms"`
}

// Answer retrieves topK records above minSimilarity and generates a cited
// answer from their text. Zero retrieved sources is a valid outcome, not
// an error: the caller gets an explicit no-match answer with empty sources
// and the latency of the retrieval that did run.
func (s *AnswerService) Answer(ctx context.Context, ownerID, question string, topK int, minSimilarity float64) (*Answer, error) {
	start := timeutil.NowMilli()
	if topK <= 0 {
		topK = defaultAnswerTopK
	}
	if topK > answerTopKCap {
		topK = answerTopKCap
	}
	matches, searchUsage, err := s.search.SearchRecords(ctx, ownerID, question, topK, minSimilarity)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &Answer{
			AnswerText: noMatchAnswer,
			Sources:    []AnswerSource{},
			Usage:      searchUsage,
			LatencyMs:  timeutil.NowMilli() - start,
		}, nil
	}

	text, usage, err := s.generator.Generate(ctx, buildAnswerPrompt(question, matches))
	if err != nil {
		return nil, err
	}
	usage = searchUsage.Add(usage)
	sources := make([]AnswerSource, len(matches))
	for i, match := range matches {
		sources[i] = AnswerSource{
			RecordID:   recordID(match.Chunk),
			Name:       metadataName(match.Chunk),
			Similarity: match.Similarity,
		}
	}
	logutil.GetLogger(ctx).Info("answer generated",
		zap.String("owner_id", ownerID),
		zap.Int("sources", len(sources)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return &Answer{
		AnswerText: text,
		Sources:    sources,
		Usage:      usage,
		LatencyMs:  timeutil.NowMilli() - start,
	}, nil
}

// buildAnswerPrompt passes only the retrieved sources' text as context,
// never vectors and never rows outside the caller's scope.
func buildAnswerPrompt(question string, matches []model.ChunkMatch) string {
	var sb strings.Builder
	sb.WriteString(`You are a recruiting assistant. Answer the question using ONLY the resume excerpts below.
- Cite candidates by their source number, e.g. [1].
- If the excerpts do not contain the answer, say so.
- Be concise and factual.

`)
	for i, match := range matches {
		name := metadataName(match.Chunk)
		if name == "" {
			name = "Unknown candidate"
		}
		sb.WriteString(fmt.Sprintf("[%d] %s\n%s\n\n", i+1, name, match.Chunk.Content))
	}
	sb.WriteString("QUESTION:\n")
	sb.WriteString(question)
	return sb.String()
}

func recordID(chunk model.Chunk) string {
	if chunk.DocumentID != "" {
		return chunk.DocumentID
	}
	if chunk.ExtractionID != "" {
		return chunk.ExtractionID
	}
	return chunk.ID
}

func metadataName(chunk model.Chunk) string {
	if chunk.Metadata == nil {
		return ""
	}
	name, _ := chunk.Metadata["name"].(string)
	return name
}
