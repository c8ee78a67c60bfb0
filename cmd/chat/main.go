package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"drive-rag/internal/chatlog"
	"drive-rag/internal/config"
	"drive-rag/internal/embedding"
	"drive-rag/internal/engine"
	"drive-rag/internal/vectorstore"
	"drive-rag/internal/vectorstore/local"
	"drive-rag/internal/vectorstore/pinecone"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.ValidateChat(); err != nil {
		var missing *config.MissingKeysError
		if errors.As(err, &missing) {
			log.Fatal().Strs("keys", missing.Keys).Msg("missing required configuration")
		}
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create vector store")
	}
	if err := store.EnsureIndex(ctx, cfg.RAG.EmbeddingDim); err != nil {
		log.Fatal().Err(err).Msg("failed to open vector index")
	}

	embedder, err := embedding.NewOpenAI(cfg.OpenAIKey, cfg.RAG.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create embedder")
	}

	llm, err := engine.NewOpenRouterLLM(cfg.OpenRouterKey, cfg.OpenRouterBase, cfg.RAG.InferenceModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat model")
	}

	retriever := engine.NewVectorRetriever(embedder, store, cfg.RAG.TopK)
	eng := engine.New(llm, retriever, cfg.CompanyName, log.Logger)

	// Chat logging is optional; without Drive credentials the chat
	// simply runs unlogged.
	var logger *chatlog.Logger
	if cfg.GoogleCredentials != "" {
		logger, err = chatlog.New(ctx, cfg.GoogleCredentials, cfg.CompanyName, cfg.DriveFolderID, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("chat logging disabled")
			logger = nil
		}
	}

	sessionID := uuid.NewString()[:8]
	fmt.Printf("%s assistant ready (session %s). Type 'exit' or 'quit' to leave.\n\n", cfg.CompanyName, sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		start := time.Now()
		answer, err := eng.Ask(ctx, question)
		elapsed := time.Since(start)
		if err != nil {
			log.Error().Err(err).Msg("failed to answer question")
			continue
		}

		fmt.Printf("\n%s\n\n", answer)
		logger.Append(ctx, sessionID, question, answer, elapsed)
	}

	fmt.Println("Goodbye.")
}

func newStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.RAG.Store {
	case config.StoreLocal:
		return local.New(cfg.RAG.LocalStorePath, cfg.IndexName)
	default:
		return pinecone.New(cfg.PineconeKey, cfg.IndexName, log.Logger)
	}
}
