package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Retriever tuning
	Retriever RetrieverConfig
}

// RetrieverConfig carries the retrieval engine's tuning knobs. The scoring
// constants are empirically chosen defaults, not invariants, so they are
// overridable from the environment.
type RetrieverConfig struct {
	// Candidate limits
	VectorTopK       int
	LinkedVerseLimit int
	LexicalLimit     int

	// Per-stage datastore timeout; a timed-out stage counts as empty
	StageTimeout time.Duration

	// Combined score split between vector similarity and semantic score
	VectorWeight   float64
	SemanticWeight float64

	// Semantic score split between graph membership and keyword overlap
	LinkWeight    float64
	KeywordWeight float64

	// Lexical selection heuristic points
	WordBoundaryPoints    int
	SubstringPoints       int
	KeywordAffinityPoints int

	// Content length bonus/penalty boundaries (strict comparisons)
	ShortContentLimit int
	LongContentLimit  int

	// Fuzzy taxonomy name matching
	FuzzyThreshold  float64
	FuzzyMatchLimit int
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
		APITitle:    getEnv("API_TITLE", "Parole du Moment API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		Port:        getEnv("PORT", "8081"),
		CORSOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		Retriever: RetrieverConfig{
			VectorTopK:       getEnvInt("RETRIEVER_VECTOR_TOP_K", 20),
			LinkedVerseLimit: getEnvInt("RETRIEVER_LINKED_VERSE_LIMIT", 20),
			LexicalLimit:     getEnvInt("RETRIEVER_LEXICAL_LIMIT", 10),
			StageTimeout:     getEnvDuration("RETRIEVER_STAGE_TIMEOUT", 3*time.Second),

			VectorWeight:   getEnvFloat("RETRIEVER_VECTOR_WEIGHT", 0.7),
			SemanticWeight: getEnvFloat("RETRIEVER_SEMANTIC_WEIGHT", 0.3),
			LinkWeight:     getEnvFloat("RETRIEVER_LINK_WEIGHT", 0.6),
			KeywordWeight:  getEnvFloat("RETRIEVER_KEYWORD_WEIGHT", 0.4),

			WordBoundaryPoints:    getEnvInt("RETRIEVER_WORD_BOUNDARY_POINTS", 2),
			SubstringPoints:       getEnvInt("RETRIEVER_SUBSTRING_POINTS", 1),
			KeywordAffinityPoints: getEnvInt("RETRIEVER_KEYWORD_AFFINITY_POINTS", 3),

			ShortContentLimit: getEnvInt("RETRIEVER_SHORT_CONTENT_LIMIT", 100),
			LongContentLimit:  getEnvInt("RETRIEVER_LONG_CONTENT_LIMIT", 300),

			FuzzyThreshold:  getEnvFloat("RETRIEVER_FUZZY_THRESHOLD", 0.4),
			FuzzyMatchLimit: getEnvInt("RETRIEVER_FUZZY_MATCH_LIMIT", 5),
		},
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return f
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseCORSOrigins(value string) []string {
	var origins []string
	if err := json.Unmarshal([]byte(value), &origins); err == nil {
		return origins
	}
	parts := strings.Split(value, ",")
	origins = make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
