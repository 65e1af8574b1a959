package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versedb/versed/internal/ai"
	"github.com/versedb/versed/internal/model"
	appErr "github.com/versedb/versed/internal/pkg/errors"
	"github.com/versedb/versed/internal/prompt"
	"github.com/versedb/versed/internal/service"
)

type fakeSearcher struct {
	results []model.SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCompleter struct {
	text     string
	err      error
	messages []ai.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func searchHit(title, artist, text string, distance float64, dup bool) model.SearchResult {
	return model.SearchResult{
		Title:         title,
		Artist:        artist,
		FullName:      title + " - " + artist,
		Text:          text,
		LineRange:     "1-4",
		URL:           "https://example.com/" + title,
		Distance:      distance,
		DuplicateSong: dup,
	}
}

func newChatService(searcher *fakeSearcher, completer *fakeCompleter) *service.ChatService {
	return service.NewChatService(searcher, prompt.NewAssembler(), completer, 15, nil)
}

func TestChatCitesFirstChunkPerSong(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		searchHit("Song A", "X", "chunk a1", 0.1, false),
		searchHit("Song B", "X", "chunk b", 0.2, false),
		searchHit("Song A", "X", "chunk a2", 0.3, true),
	}}
	completer := &fakeCompleter{text: "grounded answer"}
	chat := newChatService(searcher, completer)

	answer, err := chat.Chat(context.Background(), "when is the mother mentioned?", nil)
	require.NoError(t, err)
	require.Equal(t, "grounded answer", answer.Response)
	require.Len(t, answer.Citations, 2)
	require.Equal(t, "Song A", answer.Citations[0].Title)
	require.Equal(t, "Song B", answer.Citations[1].Title)
	require.Equal(t, "1-4", answer.Citations[0].LineRange)

	// The generation prompt carried the evidence for both songs.
	require.NotEmpty(t, completer.messages)
	require.Contains(t, completer.messages[1].Content, "chunk a1")
	require.Contains(t, completer.messages[1].Content, "chunk b")
}

func TestChatCitationCap(t *testing.T) {
	var results []model.SearchResult
	titles := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, title := range titles {
		results = append(results, searchHit("Song "+title, "X", "chunk", float64(i)/10, false))
	}
	chat := newChatService(&fakeSearcher{results: results}, &fakeCompleter{text: "ok"})

	answer, err := chat.Chat(context.Background(), "themes?", nil)
	require.NoError(t, err)
	require.Len(t, answer.Citations, service.CitationLimit)
	require.Equal(t, "Song A", answer.Citations[0].Title)
	require.Equal(t, "Song E", answer.Citations[4].Title)
}

func TestChatEmptyQuery(t *testing.T) {
	chat := newChatService(&fakeSearcher{}, &fakeCompleter{})
	_, err := chat.Chat(context.Background(), "   ", nil)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestChatNoEvidence(t *testing.T) {
	chat := newChatService(&fakeSearcher{results: nil}, &fakeCompleter{text: "unused"})
	_, err := chat.Chat(context.Background(), "anything", nil)
	require.ErrorIs(t, err, appErr.ErrNoEvidence)
}

func TestChatRetrievalFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("vector index down")}
	chat := newChatService(searcher, &fakeCompleter{text: "unused"})
	_, err := chat.Chat(context.Background(), "anything", nil)
	require.ErrorIs(t, err, appErr.ErrNoEvidence)
}

func TestChatMissingCredential(t *testing.T) {
	searcher := &fakeSearcher{err: ai.ErrNoCredential}
	chat := newChatService(searcher, &fakeCompleter{})
	_, err := chat.Chat(context.Background(), "anything", nil)
	require.ErrorIs(t, err, appErr.ErrMisconfigured)
}

func TestChatGenerationFailure(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{searchHit("Song A", "X", "chunk", 0.1, false)}}
	completer := &fakeCompleter{err: &ai.CompletionError{Class: ai.FailureTimeout, Last: context.DeadlineExceeded}}
	chat := newChatService(searcher, completer)

	_, err := chat.Chat(context.Background(), "anything", nil)
	require.ErrorIs(t, err, appErr.ErrGenerationUnavailable)
}

func TestUserMessageMapping(t *testing.T) {
	require.Contains(t, service.UserMessage(appErr.ErrMisconfigured), "API key")
	require.Contains(t, service.UserMessage(appErr.ErrNoEvidence), "rephrasing")
	require.Contains(t, service.UserMessage(appErr.ErrGenerationUnavailable), "unavailable")
	require.Contains(t, service.UserMessage(errors.New("anything else")), "Something went wrong")

	timedOut := fmt.Errorf("%w: %w", appErr.ErrGenerationUnavailable,
		&ai.CompletionError{Class: ai.FailureTimeout, Last: context.DeadlineExceeded})
	require.Contains(t, service.UserMessage(timedOut), "too long")

	refused := fmt.Errorf("%w: %w", appErr.ErrGenerationUnavailable,
		&ai.CompletionError{Class: ai.FailureConnection, Last: errors.New("connection refused")})
	require.Contains(t, service.UserMessage(refused), "reach")
}

func TestSuggestionsNotEmpty(t *testing.T) {
	chat := newChatService(&fakeSearcher{}, &fakeCompleter{})
	require.NotEmpty(t, chat.Suggestions())
}
