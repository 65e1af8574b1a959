package prompt_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/prompt"
)

func result(title, text string) model.SearchResult {
	return model.SearchResult{
		Title:     title,
		Artist:    "X",
		FullName:  title + " - X",
		LineRange: "1-4",
		Text:      text,
	}
}

func TestAssembleMessageShape(t *testing.T) {
	a := prompt.NewAssembler()
	messages := a.Assemble("what about home?", []model.SearchResult{result("Song A", "some lyric lines")}, nil)

	require.Len(t, messages, 2)
	require.Equal(t, model.RoleSystem, messages[0].Role)
	require.Equal(t, model.RoleUser, messages[1].Role)
	require.Contains(t, messages[1].Content, "[Song A - X - Lines 1-4]:\nsome lyric lines")
	require.Contains(t, messages[1].Content, "User question: what about home?")
}

func TestAssembleSkipsDuplicateSongs(t *testing.T) {
	dup := result("Song A", "second chunk")
	dup.DuplicateSong = true
	a := prompt.NewAssembler()
	messages := a.Assemble("q", []model.SearchResult{
		result("Song A", "first chunk"),
		dup,
		result("Song B", "other song"),
	}, nil)

	content := messages[1].Content
	require.Contains(t, content, "first chunk")
	require.NotContains(t, content, "second chunk")
	require.Contains(t, content, "other song")
}

func TestAssembleCapsBlocks(t *testing.T) {
	var results []model.SearchResult
	for i := 0; i < 12; i++ {
		results = append(results, result(fmt.Sprintf("Song %d", i), fmt.Sprintf("lyric %d", i)))
	}
	a := prompt.NewAssembler()
	messages := a.Assemble("q", results, nil)

	content := messages[1].Content
	require.Contains(t, content, "lyric 7")
	require.NotContains(t, content, "lyric 8")
}

func TestAssembleTokenBudgetTruncation(t *testing.T) {
	var results []model.SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, result(fmt.Sprintf("Song %d", i), fmt.Sprintf("lyric %d %s", i, strings.Repeat("word ", 20))))
	}
	a := prompt.NewAssembler(prompt.WithBudgets(100, 12000))
	messages := a.Assemble("q", results, nil)

	content := messages[1].Content
	require.Contains(t, content, "lyric 4")
	require.NotContains(t, content, "lyric 5")
}

func TestAssembleCharBudgetFallback(t *testing.T) {
	var results []model.SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, result(fmt.Sprintf("Song %d", i), fmt.Sprintf("lyric %d %s", i, strings.Repeat("x", 50))))
	}
	failing := func(string) (int, error) { return 0, errors.New("counter offline") }
	a := prompt.NewAssembler(
		prompt.WithTokenCounter(failing),
		prompt.WithBudgets(3000, 400),
	)
	messages := a.Assemble("q", results, nil)

	content := messages[1].Content
	require.Contains(t, content, "lyric 4")
	require.NotContains(t, content, "lyric 5")
}

func TestAssembleKeepsLastHistoryTurns(t *testing.T) {
	var history []model.ConversationTurn
	for i := 0; i < 6; i++ {
		history = append(history, model.ConversationTurn{Role: model.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}
	a := prompt.NewAssembler()
	messages := a.Assemble("q", []model.SearchResult{result("Song A", "lyric")}, history)

	require.Len(t, messages, 6)
	require.Equal(t, "turn 2", messages[2].Content)
	require.Equal(t, "turn 5", messages[5].Content)
}

func TestEstimateTokens(t *testing.T) {
	count, err := prompt.EstimateTokens("one two three")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = prompt.EstimateTokens("")
	require.NoError(t, err)
	require.Zero(t, count)
}
