package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Ai         AIConfig
	Knowledge  KnowledgeConfig
	Workflow   WorkflowConfig
	Checkpoint CheckpointConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "mock"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL     string
	EmbeddingProvider string // "local" or "ollama"
	OllamaEmbedModel  string
}

type KnowledgeConfig struct {
	DocumentsDir string
	Namespace    string
	ChunkSize    int
	ChunkOverlap int
	MaxDocuments int
	MinScore     float64
}

type WorkflowConfig struct {
	TicketTopic string
	// AllowAutoApprove lets decisions above the auto-approve threshold skip the
	// human checkpoint. Off by default: every action needs an operator sign-off.
	AllowAutoApprove     bool
	AutoApproveThreshold float64
}

type CheckpointConfig struct {
	Backend     string // "memory", "file", "redis" or "postgres"
	FileDir     string
	PostgresDSN string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/copilot.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Knowledge: KnowledgeConfig{
			DocumentsDir: getEnv("KNOWLEDGE_DOCUMENTS_DIR", "data/documents"),
			Namespace:    getEnv("KNOWLEDGE_NAMESPACE", "default"),
			ChunkSize:    getEnvAsInt("KNOWLEDGE_CHUNK_SIZE", 512),
			ChunkOverlap: getEnvAsInt("KNOWLEDGE_CHUNK_OVERLAP", 64),
			MaxDocuments: getEnvAsInt("KNOWLEDGE_MAX_DOCUMENTS", 5),
			MinScore:     getEnvAsFloat("KNOWLEDGE_MIN_SCORE", 0.1),
		},
		Workflow: WorkflowConfig{
			TicketTopic:          getEnv("TICKET_PROCESS_TOPIC_NAME", "PROCESS_TICKET"),
			AllowAutoApprove:     getEnvAsBool("WORKFLOW_ALLOW_AUTO_APPROVE", false),
			AutoApproveThreshold: getEnvAsFloat("WORKFLOW_AUTO_APPROVE_THRESHOLD", 0.85),
		},
		Checkpoint: CheckpointConfig{
			Backend:     getEnv("CHECKPOINT_BACKEND", "memory"),
			FileDir:     getEnv("CHECKPOINT_FILE_DIR", "data/checkpoints"),
			PostgresDSN: getEnv("CHECKPOINT_POSTGRES_DSN", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
