// Package engine implements the condense-plus-context chat loop: a
// follow-up question is first rewritten into a standalone question,
// which drives retrieval, and the retrieved context is injected into
// the system prompt for the final answer.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"drive-rag/internal/embedding"
	"drive-rag/internal/models"
	"drive-rag/internal/vectorstore"
)

const (
	// DefaultTopK is how many chunks are retrieved per question.
	DefaultTopK = 8

	// memoryTokenBudget bounds the chat history carried between turns.
	// Oldest exchanges are dropped first.
	memoryTokenBudget = 3000

	answerTemperature = 0.1
	answerMaxTokens   = 4096
)

// Retriever fetches context chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]vectorstore.Match, error)
}

// VectorRetriever retrieves by embedding the question and querying the
// vector store.
type VectorRetriever struct {
	embedder embedding.QueryEmbedder
	store    vectorstore.Store
	topK     int
}

// NewVectorRetriever builds a retriever over the given store. A topK
// of zero or less falls back to DefaultTopK.
func NewVectorRetriever(embedder embedding.QueryEmbedder, store vectorstore.Store, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &VectorRetriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve embeds the question and returns the nearest chunks.
func (r *VectorRetriever) Retrieve(ctx context.Context, question string) ([]vectorstore.Match, error) {
	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	matches, err := r.store.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}
	return matches, nil
}

// exchange is one completed user/assistant turn.
type exchange struct {
	user      string
	assistant string
}

// Engine answers questions over the ingested documents, keeping a
// token-bounded conversation memory.
type Engine struct {
	llm       llms.Model
	retriever Retriever
	company   string
	history   []exchange
	log       zerolog.Logger
}

// New builds an Engine. The company name is interpolated into the
// system prompt.
func New(llm llms.Model, retriever Retriever, company string, log zerolog.Logger) *Engine {
	return &Engine{
		llm:       llm,
		retriever: retriever,
		company:   company,
		log:       log.With().Str("component", "engine").Logger(),
	}
}

// NewOpenRouterLLM builds a chat model against the OpenRouter
// OpenAI-compatible API.
func NewOpenRouterLLM(apiKey, baseURL, model string) (llms.Model, error) {
	return openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
}

// Ask answers one question. On the second and later turns the question
// is first condensed against the chat history into a standalone
// question before retrieval.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	standalone := question
	if len(e.history) > 0 {
		condensed, err := e.condense(ctx, question)
		if err != nil {
			e.log.Warn().Err(err).Msg("condense failed, retrieving with raw question")
		} else if condensed != "" {
			standalone = condensed
		}
	}

	matches, err := e.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return "", err
	}
	e.log.Debug().Int("chunks", len(matches)).Str("question", standalone).Msg("context retrieved")

	answer, err := e.answer(ctx, question, matches)
	if err != nil {
		return "", err
	}

	e.history = append(e.history, exchange{user: question, assistant: answer})
	e.trimHistory()
	return answer, nil
}

// Reset drops the conversation memory.
func (e *Engine) Reset() {
	e.history = nil
}

func (e *Engine) condense(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(models.CondensePromptTemplate, e.historyTranscript(), question)
	out, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("condense question: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (e *Engine) answer(ctx context.Context, question string, matches []vectorstore.Match) (string, error) {
	system := fmt.Sprintf(models.SystemPromptTemplate, e.company) +
		"\n\n" + fmt.Sprintf(models.ContextPromptTemplate, contextBlock(matches))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
	}
	for _, x := range e.history {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, x.user),
			llms.TextParts(llms.ChatMessageTypeAI, x.assistant),
		)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))

	resp, err := e.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(answerTemperature),
		llms.WithMaxTokens(answerMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (e *Engine) historyTranscript() string {
	var b strings.Builder
	for _, x := range e.history {
		b.WriteString("User: ")
		b.WriteString(x.user)
		b.WriteString("\nAssistant: ")
		b.WriteString(x.assistant)
		b.WriteString("\n")
	}
	return b.String()
}

// trimHistory drops oldest exchanges until the transcript fits the
// memory budget.
func (e *Engine) trimHistory() {
	for len(e.history) > 1 && approxTokens(e.historyTranscript()) > memoryTokenBudget {
		e.history = e.history[1:]
	}
}

// contextBlock joins retrieved chunk texts, skipping matches without a
// stored text payload.
func contextBlock(matches []vectorstore.Match) string {
	if len(matches) == 0 {
		return "No relevant documents were found."
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := m.Metadata[models.MetaText]; text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "No relevant documents were found."
	}
	return strings.Join(parts, "\n\n")
}

// approxTokens estimates token count at roughly four characters per
// token, close enough for a memory bound.
func approxTokens(s string) int {
	return len(s) / 4
}
