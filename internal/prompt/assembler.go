package prompt

import (
	"fmt"
	"strings"

	"github.com/versedb/versed/internal/ai"
	"github.com/versedb/versed/internal/model"
)

const (
	// DefaultMaxBlocks caps how many unique-song context blocks are included.
	DefaultMaxBlocks = 8
	// TruncatedBlocks is what the context shrinks to when over budget.
	TruncatedBlocks = 5
	// DefaultTokenBudget bounds the assembled context block.
	DefaultTokenBudget = 3000
	// DefaultCharBudget is the fallback ceiling when token counting fails.
	DefaultCharBudget = 12000
	// DefaultHistoryLimit is how many trailing history turns are kept.
	DefaultHistoryLimit = 4

	blockSeparator = "\n\n---\n\n"
)

const systemPrompt = `You are an expert on this artist's discography with access to a comprehensive database of their lyrics.
Your role is to answer questions about the music, themes, lyrics, and artistic evolution based ONLY on the lyrics provided to you.

Key instructions:
1. Always cite specific songs when referencing lyrics
2. Use exact quotes when possible, but be careful not to reproduce entire songs
3. Focus on analysis, themes, and insights rather than just repeating lyrics
4. If asked about something not in the provided context, say you don't have that information
5. Be concise but thorough in your analysis
6. When multiple songs address the same theme, compare and contrast them

Format your citations as: [Song Title - Artist] at the end of relevant sentences.`

// TokenCounter reports the token count of a text, or an error when counting
// is unavailable (the assembler then falls back to a character budget).
type TokenCounter func(text string) (int, error)

// EstimateTokens is the default counter: a word count for ASCII text plus one
// token per non-ASCII rune.
func EstimateTokens(text string) (int, error) {
	count := 0
	for _, r := range text {
		if r > 127 {
			count++
		}
	}
	count += len(strings.Fields(text))
	if count == 0 && len(text) > 0 {
		return 1, nil
	}
	return count, nil
}

type Assembler struct {
	counter      TokenCounter
	maxBlocks    int
	tokenBudget  int
	charBudget   int
	historyLimit int
}

type Option func(*Assembler)

func WithTokenCounter(counter TokenCounter) Option {
	return func(a *Assembler) { a.counter = counter }
}

func WithMaxBlocks(n int) Option {
	return func(a *Assembler) { a.maxBlocks = n }
}

func WithBudgets(tokens, chars int) Option {
	return func(a *Assembler) {
		a.tokenBudget = tokens
		a.charBudget = chars
	}
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		counter:      EstimateTokens,
		maxBlocks:    DefaultMaxBlocks,
		tokenBudget:  DefaultTokenBudget,
		charBudget:   DefaultCharBudget,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the completion message list: system instructions, then one
// user message holding the evidence block and the question, then up to the
// last historyLimit turns of caller-supplied history verbatim.
//
// Duplicate-flagged results are skipped so each song contributes its
// first-seen chunk only. If the evidence block exceeds the token budget it is
// rebuilt from the first TruncatedBlocks blocks in rank order; when token
// counting fails the character budget applies with the same truncation.
func (a *Assembler) Assemble(query string, results []model.SearchResult, history []model.ConversationTurn) []ai.Message {
	blocks := make([]string, 0, a.maxBlocks)
	for _, result := range results {
		if result.DuplicateSong {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[%s - Lines %s]:\n%s", result.FullName, result.LineRange, result.Text))
		if len(blocks) >= a.maxBlocks {
			break
		}
	}
	contextStr := strings.Join(blocks, blockSeparator)

	if tokens, err := a.counter(contextStr); err == nil {
		if tokens > a.tokenBudget {
			contextStr = strings.Join(truncate(blocks, TruncatedBlocks), blockSeparator)
		}
	} else if len(contextStr) > a.charBudget {
		contextStr = strings.Join(truncate(blocks, TruncatedBlocks), blockSeparator)
	}

	messages := []ai.Message{
		{Role: model.RoleSystem, Content: systemPrompt},
		{Role: model.RoleUser, Content: fmt.Sprintf("Context lyrics:\n\n%s\n\n---\n\nUser question: %s", contextStr, query)},
	}
	start := len(history) - a.historyLimit
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

func truncate(blocks []string, n int) []string {
	if len(blocks) <= n {
		return blocks
	}
	return blocks[:n]
}
