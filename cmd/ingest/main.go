package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"drive-rag/internal/chunker"
	"drive-rag/internal/config"
	"drive-rag/internal/embedding"
	"drive-rag/internal/gdrive"
	"drive-rag/internal/parser"
	"drive-rag/internal/pipeline"
	"drive-rag/internal/vectorstore"
	"drive-rag/internal/vectorstore/local"
	"drive-rag/internal/vectorstore/pinecone"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.ValidateIngest(); err != nil {
		var missing *config.MissingKeysError
		if errors.As(err, &missing) {
			log.Fatal().Strs("keys", missing.Keys).Msg("missing required configuration")
		}
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	report, err := run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	log.Info().
		Int("discovered", report.Discovered).
		Int("skipped_by_type", report.SkippedByType).
		Int("unknown_types", report.Unknown).
		Int("failed_folders", report.FailedFolders).
		Int("parsed_files", report.Parsed).
		Int("failed_files", report.FailedFiles).
		Int("documents", report.Documents).
		Int("chunks", report.Chunks).
		Int("failed_batches", report.FailedBatches).
		Msg("ingestion complete")

	if report.Documents == 0 {
		log.Warn().Msg("no documents were loaded from the folder")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) (pipeline.Report, error) {
	svc, err := gdrive.NewService(ctx, cfg.GoogleCredentials)
	if err != nil {
		return pipeline.Report{}, err
	}
	limiter := gdrive.NewRateLimiter(cfg.RAG.DriveRPS, cfg.RAG.DriveBurst)

	workDir, err := os.MkdirTemp("", "drive-rag-*")
	if err != nil {
		return pipeline.Report{}, err
	}
	defer os.RemoveAll(workDir)

	lister := gdrive.NewLister(svc, limiter, log.Logger)
	materializer := gdrive.NewMaterializer(svc, limiter, workDir, log.Logger)

	tok, err := chunker.NewTiktoken()
	if err != nil {
		return pipeline.Report{}, err
	}
	splitter := chunker.New(tok,
		chunker.WithChunkSize(cfg.RAG.ChunkSize),
		chunker.WithOverlap(cfg.RAG.ChunkOverlap),
	)

	embedder, err := embedding.NewOpenAI(cfg.OpenAIKey, cfg.RAG.EmbeddingModel)
	if err != nil {
		return pipeline.Report{}, err
	}

	store, err := newStore(cfg)
	if err != nil {
		return pipeline.Report{}, err
	}

	p := pipeline.New(lister, materializer, parser.Extract, splitter, embedder, store, pipeline.Options{
		Dimension: cfg.RAG.EmbeddingDim,
		BatchSize: cfg.RAG.BatchSize,
	}, log.Logger)

	return p.Run(ctx, cfg.DriveFolderID)
}

func newStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.RAG.Store {
	case config.StoreLocal:
		return local.New(cfg.RAG.LocalStorePath, cfg.IndexName)
	default:
		return pinecone.New(cfg.PineconeKey, cfg.IndexName, log.Logger)
	}
}
