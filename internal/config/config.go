package config

import (
	"os"
	"strconv"
	"time"
)

type LLMProvider string

const (
	ProviderGroq   LLMProvider = "groq"
	ProviderGemini LLMProvider = "gemini"
	ProviderMock   LLMProvider = "mock"
)

type RetrieverBackend string

const (
	RetrieverLocal  RetrieverBackend = "local"
	RetrieverVector RetrieverBackend = "vector"
)

// Config собирает все настройки процесса из окружения.
type Config struct {
	Provider  LLMProvider
	ChatModel string

	GroqAPIKey  string
	GroqBaseURL string

	GeminiAPIKey string

	WitAPIKey  string
	WitBaseURL string

	ElevenAPIKey  string
	ElevenBaseURL string
	ElevenVoice   string

	Retriever        RetrieverBackend
	VectorAPIKey     string
	VectorControlURL string
	VectorDataURL    string
	EmbedAPIKey      string
	EmbedBaseURL     string
	EmbedModel       string
	TopK             int

	LocalIndexPath string

	OutputDir string
	DBPath    string
	CRMPath   string

	PollInterval     time.Duration
	HistoryWindow    int
	InputQueueSize   int
	ProvisionTimeout time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load() *Config {
	provider := LLMProvider(getEnv("ESTATE_LLM_PROVIDER", string(ProviderGroq)))
	switch provider {
	case ProviderGroq, ProviderGemini, ProviderMock:
	default:
		provider = ProviderGroq
	}

	retriever := RetrieverBackend(getEnv("ESTATE_RETRIEVER", string(RetrieverLocal)))
	switch retriever {
	case RetrieverLocal, RetrieverVector:
	default:
		retriever = RetrieverLocal
	}

	return &Config{
		Provider:  provider,
		ChatModel: getEnv("ESTATE_CHAT_MODEL", "llama3-8b-8192"),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("ESTATE_GROQ_BASE_URL", "https://api.groq.com"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		WitAPIKey:  getEnv("WIT_API_KEY", ""),
		WitBaseURL: getEnv("ESTATE_WIT_BASE_URL", "https://api.wit.ai"),

		ElevenAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenBaseURL: getEnv("ESTATE_ELEVEN_BASE_URL", "https://api.elevenlabs.io"),
		ElevenVoice:   getEnv("ESTATE_ELEVEN_VOICE", "Nicole"),

		Retriever:        retriever,
		VectorAPIKey:     getEnv("PINECONE_API_KEY", ""),
		VectorControlURL: getEnv("ESTATE_VECTOR_CONTROL_URL", "https://api.pinecone.io"),
		VectorDataURL:    getEnv("ESTATE_VECTOR_DATA_URL", ""),
		EmbedAPIKey:      getEnv("ESTATE_EMBED_API_KEY", ""),
		EmbedBaseURL:     getEnv("ESTATE_EMBED_BASE_URL", "https://api.openai.com"),
		EmbedModel:       getEnv("ESTATE_EMBED_MODEL", "text-embedding-3-small"),
		TopK:             getIntEnv("ESTATE_TOP_K", 10),

		LocalIndexPath: getEnv("ESTATE_LOCAL_INDEX_PATH", ""),

		OutputDir: getEnv("ESTATE_OUTPUT_DIR", "out/transcribe"),
		DBPath:    getEnv("ESTATE_DB_PATH", "out/sessions.db"),
		CRMPath:   getEnv("ESTATE_CRM_PATH", "real_estate_crm_data.csv"),

		PollInterval:     getDurationEnv("ESTATE_POLL_INTERVAL", 100*time.Millisecond),
		HistoryWindow:    getIntEnv("ESTATE_HISTORY_WINDOW", 10),
		InputQueueSize:   getIntEnv("ESTATE_INPUT_QUEUE_SIZE", 32),
		ProvisionTimeout: getDurationEnv("ESTATE_PROVISION_TIMEOUT", 2*time.Minute),
	}
}
