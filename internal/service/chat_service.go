package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/versedb/versed/internal/ai"
	"github.com/versedb/versed/internal/model"
	appErr "github.com/versedb/versed/internal/pkg/errors"
	"github.com/versedb/versed/internal/prompt"
)

// CitationLimit caps how many unique songs an answer cites.
const CitationLimit = 5

type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]model.SearchResult, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// ChatService sequences retrieval, context assembly, generation and citation
// extraction for one chat turn. It is the only layer that turns typed
// failures into user-facing strings.
type ChatService struct {
	retriever   Searcher
	assembler   *prompt.Assembler
	completer   Completer
	topK        int
	suggestions []string
}

func NewChatService(retriever Searcher, assembler *prompt.Assembler, completer Completer, topK int, suggestions []string) *ChatService {
	if topK <= 0 {
		topK = 15
	}
	if len(suggestions) == 0 {
		suggestions = defaultSuggestions
	}
	return &ChatService{
		retriever:   retriever,
		assembler:   assembler,
		completer:   completer,
		topK:        topK,
		suggestions: suggestions,
	}
}

func (s *ChatService) Chat(ctx context.Context, query string, history []model.ConversationTurn) (*model.ChatAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))

	results, err := s.retriever.Search(ctx, query, s.topK)
	if err != nil {
		if errors.Is(err, ai.ErrNoCredential) {
			return nil, fmt.Errorf("%w: %v", appErr.ErrMisconfigured, err)
		}
		logger.Error("retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrNoEvidence, err)
	}
	if len(results) == 0 {
		logger.Info("no evidence for query")
		return nil, appErr.ErrNoEvidence
	}

	messages := s.assembler.Assemble(query, results, history)
	text, err := s.completer.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, ai.ErrNoCredential) {
			return nil, fmt.Errorf("%w: %v", appErr.ErrMisconfigured, err)
		}
		logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", appErr.ErrGenerationUnavailable, err)
	}

	answer := &model.ChatAnswer{
		Response:  text,
		Citations: extractCitations(results),
		Query:     query,
	}
	logger.Info("chat turn done", zap.Int("citations", len(answer.Citations)))
	return answer, nil
}

// extractCitations walks the ranked result list, keeping the first occurrence
// per (title, artist). Citations are grounded in retrieved evidence, never in
// the generated text, so provenance holds even when generation omits or
// garbles references.
func extractCitations(results []model.SearchResult) []model.Citation {
	citations := make([]model.Citation, 0, CitationLimit)
	seen := make(map[string]struct{}, CitationLimit)
	for _, result := range results {
		key := result.SongKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, model.Citation{
			Title:     result.Title,
			Artist:    result.Artist,
			URL:       result.URL,
			LineRange: result.LineRange,
		})
		if len(citations) >= CitationLimit {
			break
		}
	}
	return citations
}

func (s *ChatService) Suggestions() []string {
	return s.suggestions
}

// UserMessage maps a pipeline failure onto the string shown to the caller.
// Transport detail never leaks; the wording only distinguishes the stages
// and, for generation, the failure class.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, appErr.ErrMisconfigured):
		return "The chat service is not configured. Please set an inference API key."
	case errors.Is(err, appErr.ErrNoEvidence):
		return "Could not find relevant lyrics for this question. Try rephrasing it."
	case errors.Is(err, appErr.ErrGenerationUnavailable):
		var completionErr *ai.CompletionError
		if errors.As(err, &completionErr) {
			switch completionErr.Class {
			case ai.FailureTimeout:
				return "The answer took too long to generate. Please try again."
			case ai.FailureConnection:
				return "Could not reach the inference service. Please try again shortly."
			}
		}
		return "Answer generation is currently unavailable. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

var defaultSuggestions = []string{
	"When does the artist mention their mother?",
	"How is their hometown described across the catalog?",
	"What are the recurring thoughts on fame and success?",
	"Find references to relationships and trust issues",
	"How has the writing style evolved over the years?",
	"What do the lyrics say about rivals and competition?",
	"What are the recurring themes across albums?",
	"How is the rise to fame described?",
	"Find mentions of specific cities and places",
}
