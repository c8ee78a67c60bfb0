// Package pipeline orchestrates the ingestion run: discover files in
// Drive, materialize and parse them, then chunk, embed and upsert the
// result in batches.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"drive-rag/internal/chunker"
	"drive-rag/internal/embedding"
	"drive-rag/internal/gdrive"
	"drive-rag/internal/models"
	"drive-rag/internal/vectorstore"
)

// DefaultBatchSize is how many documents are chunked, embedded and
// upserted per batch.
const DefaultBatchSize = 50

// Lister discovers files under a Drive folder tree.
type Lister interface {
	ListAll(ctx context.Context, rootID string) ([]models.RemoteFile, int)
}

// Fetcher materializes a remote file into a local artifact path.
type Fetcher interface {
	Fetch(ctx context.Context, f models.RemoteFile) (string, error)
}

// Extractor turns a local artifact into text documents.
type Extractor func(path string, meta map[string]string) ([]models.Document, error)

// Splitter cuts a document into token-window chunks.
type Splitter interface {
	Split(doc models.Document) []models.Chunk
}

// Report summarises one ingestion run.
type Report struct {
	Discovered    int
	SkippedByType int
	Unknown       int
	FailedFolders int
	Parsed        int
	FailedFiles   int
	Documents     int
	Chunks        int
	FailedBatches int
}

// Pipeline runs end-to-end ingestion for one Drive folder.
type Pipeline struct {
	lister    Lister
	fetcher   Fetcher
	extract   Extractor
	splitter  Splitter
	embedder  embedding.Embedder
	store     vectorstore.Store
	dimension int
	batchSize int
	log       zerolog.Logger
}

// Options tune a Pipeline beyond its required collaborators.
type Options struct {
	// Dimension is the embedding dimension the index must carry.
	Dimension int
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int
}

// New wires a Pipeline from its collaborators.
func New(lister Lister, fetcher Fetcher, extract Extractor, splitter Splitter, embedder embedding.Embedder, store vectorstore.Store, opts Options, log zerolog.Logger) *Pipeline {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if extract == nil {
		extract = func(path string, meta map[string]string) ([]models.Document, error) {
			return nil, fmt.Errorf("no extractor configured")
		}
	}
	return &Pipeline{
		lister:    lister,
		fetcher:   fetcher,
		extract:   extract,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		dimension: opts.Dimension,
		batchSize: batch,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one ingestion pass over the folder tree rooted at
// folderID and returns a run report. Individual file, folder and batch
// failures are counted and logged but do not abort the run; only a
// store that cannot be prepared does.
func (p *Pipeline) Run(ctx context.Context, folderID string) (Report, error) {
	var report Report

	if err := p.store.EnsureIndex(ctx, p.dimension); err != nil {
		return report, fmt.Errorf("prepare vector index: %w", err)
	}

	files, failedFolders := p.lister.ListAll(ctx, folderID)
	report.Discovered = len(files)
	report.FailedFolders = failedFolders
	p.log.Info().Int("files", len(files)).Int("failed_folders", failedFolders).Msg("drive traversal complete")

	docs := p.loadDocuments(ctx, files, &report)
	report.Documents = len(docs)
	if len(docs) == 0 {
		return report, nil
	}

	for start := 0; start < len(docs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		n, err := p.processBatch(ctx, docs[start:end])
		if err != nil {
			report.FailedBatches++
			p.log.Error().Err(err).Int("batch_start", start).Int("batch_size", end-start).Msg("batch failed, continuing")
			continue
		}
		report.Chunks += n
	}

	return report, nil
}

// loadDocuments materializes and parses every ingestible file. Each
// artifact is removed after parsing, whether parsing succeeded or not.
func (p *Pipeline) loadDocuments(ctx context.Context, files []models.RemoteFile, report *Report) []models.Document {
	var docs []models.Document

	for _, f := range files {
		switch gdrive.Classify(f.MimeType).Class {
		case gdrive.ClassSkip:
			report.SkippedByType++
			continue
		case gdrive.ClassUnknown:
			report.Unknown++
			p.log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("unknown mime type, skipping")
			continue
		}

		fileDocs, err := p.loadFile(ctx, f)
		if err != nil {
			report.FailedFiles++
			p.log.Warn().Err(err).Str("file", f.Name).Str("id", f.ID).Msg("file skipped")
			continue
		}
		report.Parsed++
		docs = append(docs, fileDocs...)
	}

	return docs
}

func (p *Pipeline) loadFile(ctx context.Context, f models.RemoteFile) ([]models.Document, error) {
	path, err := p.fetcher.Fetch(ctx, f)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	meta := map[string]string{
		models.MetaFileName: f.Name,
		models.MetaFilePath: f.Path,
		models.MetaSource:   f.Source(),
	}
	docs, err := p.extract(path, meta)
	if err != nil {
		return nil, err
	}

	// Segment index distinguishes multiple documents from one file
	// (pages, slides, sheets) so chunk identity stays stable.
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]string{}
		}
		docs[i].Metadata[models.MetaSegment] = strconv.Itoa(i)
	}
	return docs, nil
}

// processBatch chunks, embeds and upserts one slice of documents,
// returning the number of chunks written.
func (p *Pipeline) processBatch(ctx context.Context, docs []models.Document) (int, error) {
	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, p.splitter.Split(doc)...)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i, c := range chunks {
		meta := make(map[string]string, len(c.Metadata)+1)
		for k, v := range c.Metadata {
			meta[k] = v
		}
		meta[models.MetaText] = c.Text
		entries[i] = vectorstore.Entry{
			ID:       chunkID(c),
			Values:   vectors[i],
			Metadata: meta,
		}
	}

	if err := p.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("upsert %d entries: %w", len(entries), err)
	}
	return len(entries), nil
}

// chunkID derives a stable identifier from the chunk's position within
// its source, so re-ingesting the same content overwrites rather than
// duplicates.
func chunkID(c models.Chunk) string {
	key := c.Metadata[models.MetaSource] + "|" + c.Metadata[models.MetaSegment] + "|" + strconv.Itoa(c.Index)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

var _ Splitter = (*chunker.Splitter)(nil)
