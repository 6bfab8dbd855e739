package config

import (
	"os"
	"strconv"
	"sync"
)

// Config holds configuration for database and embedding operations
type Config struct {
	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Embeddings
	EmbeddingProvider   string // "vertex", "custom" or "local"
	EmbeddingServiceURL string // For custom provider
	EmbeddingDimensions int

	// Vertex AI (when EmbeddingProvider = "vertex")
	GCPProjectID string
	GCPLocation  string
	VertexModel  string

	// Local ONNX model (when EmbeddingProvider = "local")
	OnnxLibraryPath string
	OnnxModelPath   string
	TokenizerPath   string
	MaxSequenceLen  int
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() *Config {
	return &Config{
		// MongoDB
		MongoURI:      getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "parole_du_moment_db"),

		// Embeddings
		EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "local"),
		EmbeddingServiceURL: getEnv("EMBEDDING_SERVICE_URL", "http://localhost:8001"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),

		// Vertex AI
		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		GCPLocation:  getEnv("GCP_LOCATION", "us-central1"),
		VertexModel:  getEnv("VERTEX_MODEL", "gemini-embedding-001"),

		// Local ONNX model
		OnnxLibraryPath: getEnv("ONNX_LIBRARY_PATH", "/usr/lib/libonnxruntime.so"),
		OnnxModelPath:   getEnv("EMBEDDING_MODEL_PATH", "./models/paraphrase-multilingual-MiniLM-L12-v2/model.onnx"),
		TokenizerPath:   getEnv("TOKENIZER_PATH", "./models/paraphrase-multilingual-MiniLM-L12-v2/tokenizer.json"),
		MaxSequenceLen:  getEnvInt("EMBEDDING_MAX_SEQ_LEN", 128),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}
