package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names for secrets and identifiers. Values are
// supplied externally; only tunables live in the yaml file.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvOpenRouterKey     = "OPENROUTER_API_KEY"
	EnvPineconeKey       = "PINECONE_API_KEY"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvDriveFolderID     = "GOOGLE_DRIVE_FOLDER_ID"
	EnvIndexName         = "PINECONE_INDEX_NAME"
	EnvCompanyName       = "COMPANY_NAME"
	EnvOpenRouterBase    = "OPENROUTER_BASE_URL"
)

const (
	defaultIndexName      = "rag-index"
	defaultOpenRouterBase = "https://openrouter.ai/api/v1"
	defaultCompanyName    = "the company"
)

// StoreKind selects the vector store backend.
const (
	StorePinecone = "pinecone"
	StoreLocal    = "local"
)

// RAGConfig holds the ingestion and retrieval tunables.
type RAGConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	BatchSize      int     `yaml:"batch_size"`
	TopK           int     `yaml:"top_k"`
	EmbeddingModel string  `yaml:"embedding_model"`
	EmbeddingDim   int     `yaml:"embedding_dim"`
	InferenceModel string  `yaml:"inference_model"`
	Store          string  `yaml:"store"`
	LocalStorePath string  `yaml:"local_store_path"`
	DriveRPS       float64 `yaml:"drive_rps"`
	DriveBurst     int     `yaml:"drive_burst"`
}

// Config is the explicit configuration for one process, constructed once
// at startup and passed by reference to every component.
type Config struct {
	OpenAIKey         string `yaml:"-"`
	OpenRouterKey     string `yaml:"-"`
	PineconeKey       string `yaml:"-"`
	GoogleCredentials string `yaml:"-"`
	DriveFolderID     string `yaml:"-"`
	IndexName         string `yaml:"-"`
	CompanyName       string `yaml:"-"`
	OpenRouterBase    string `yaml:"-"`

	RAG RAGConfig `yaml:"rag"`
}

// MissingKeysError reports which required environment values are unset.
// It is the only error kind that aborts a run before any remote call.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// Load reads the optional yaml file at path (defaults apply when it does
// not exist), loads a .env file if present, and fills secrets from the
// environment. Validation is per command, see ValidateIngest/ValidateChat.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.OpenAIKey = getEnv(EnvOpenAIKey, "")
	cfg.OpenRouterKey = getEnv(EnvOpenRouterKey, "")
	cfg.PineconeKey = getEnv(EnvPineconeKey, "")
	cfg.GoogleCredentials = getEnv(EnvGoogleCredentials, "")
	cfg.DriveFolderID = getEnv(EnvDriveFolderID, "")
	cfg.IndexName = getEnv(EnvIndexName, defaultIndexName)
	cfg.CompanyName = getEnv(EnvCompanyName, defaultCompanyName)
	cfg.OpenRouterBase = getEnv(EnvOpenRouterBase, defaultOpenRouterBase)

	applyDefaults(&cfg.RAG)
	return cfg, nil
}

// ValidateIngest checks the values the ingestion run needs. The Pinecone
// key is only required when the pinecone store is selected.
func (c *Config) ValidateIngest() error {
	var missing []string
	if c.OpenAIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.RAG.Store == StorePinecone && c.PineconeKey == "" {
		missing = append(missing, EnvPineconeKey)
	}
	if c.GoogleCredentials == "" {
		missing = append(missing, EnvGoogleCredentials)
	}
	if c.DriveFolderID == "" {
		missing = append(missing, EnvDriveFolderID)
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

// ValidateChat checks the values the chat run needs.
func (c *Config) ValidateChat() error {
	var missing []string
	if c.OpenRouterKey == "" {
		missing = append(missing, EnvOpenRouterKey)
	}
	if c.OpenAIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.RAG.Store == StorePinecone && c.PineconeKey == "" {
		missing = append(missing, EnvPineconeKey)
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

func applyDefaults(r *RAGConfig) {
	if r.ChunkSize == 0 {
		r.ChunkSize = 1024
	}
	if r.ChunkOverlap == 0 {
		r.ChunkOverlap = 200
	}
	if r.BatchSize == 0 {
		r.BatchSize = 50
	}
	if r.TopK == 0 {
		r.TopK = 8
	}
	if r.EmbeddingModel == "" {
		r.EmbeddingModel = "text-embedding-3-small"
	}
	if r.EmbeddingDim == 0 {
		r.EmbeddingDim = 1536
	}
	if r.InferenceModel == "" {
		r.InferenceModel = "google/gemini-2.0-flash-001"
	}
	if r.Store == "" {
		r.Store = StorePinecone
	}
	if r.LocalStorePath == "" {
		r.LocalStorePath = "./ragdb"
	}
	if r.DriveRPS == 0 {
		r.DriveRPS = 8.0
	}
	if r.DriveBurst == 0 {
		r.DriveBurst = 10
	}
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
