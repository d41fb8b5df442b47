package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	CORSOrigins []string `yaml:"cors_origins"`

	OCR        OCRConfig        `yaml:"ocr"`
	Extraction ExtractionConfig `yaml:"extraction"`
	AI         AIConfig         `yaml:"ai"`
	LandCover  LandCoverConfig  `yaml:"landcover"`
	Storage    StorageConfig    `yaml:"storage"`
	Queue      QueueConfig      `yaml:"queue"`
	Auth       AuthConfig       `yaml:"auth"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine         string  `yaml:"engine"`   // "gosseract" or "tesseract-cli"
	Language       string  `yaml:"language"` // OCR language (default: "eng")
	TessdataPrefix string  `yaml:"tessdata_prefix,omitempty"`
	MinConfidence  float64 `yaml:"min_confidence"` // words at or below are dropped
	UseImageMagick bool    `yaml:"use_imagemagick"`
}

// ExtractionConfig tunes the field extraction passes
type ExtractionConfig struct {
	RowThreshold int    `yaml:"row_threshold"` // px between word tops in one table row
	MergePolicy  string `yaml:"merge_policy"`  // "pattern" (default) or "table"
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`

	DefaultProvider string `yaml:"default_provider"` // "openai", "gemini", "ollama"

	RequestsPerSecond  float64 `yaml:"requests_per_second"`
	Burst              int     `yaml:"burst"`
	FallbackClassifier bool    `yaml:"fallback_classifier"`
}

// OpenAIConfig for OpenAI or any compatible endpoint
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`
}

// LandCoverConfig points at the hosted segmentation model
type LandCoverConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIName        string `yaml:"api_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig holds local directories used by the service
type StorageConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	OutputDir   string `yaml:"output_dir"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// QueueConfig sizes the background processing queue
type QueueConfig struct {
	Workers        int `yaml:"workers"`
	Size           int `yaml:"size"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AuthConfig enables JWT protection of the API
type AuthConfig struct {
	Enabled bool       `yaml:"enabled"`
	Secret  string     `yaml:"secret,omitempty"`
	Users   []AuthUser `yaml:"users"`
}

// AuthUser is an operator allowed to log in. PasswordHash is a bcrypt hash.
type AuthUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// ApplyDefaults fills zero values with the service defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.OCR.Engine == "" {
		c.OCR.Engine = "gosseract"
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}
	if c.OCR.MinConfidence == 0 {
		c.OCR.MinConfidence = 30
	}
	if c.Extraction.RowThreshold == 0 {
		c.Extraction.RowThreshold = 20
	}
	if c.Extraction.MergePolicy == "" {
		c.Extraction.MergePolicy = "pattern"
	}
	if c.AI.DefaultProvider == "" {
		c.AI.DefaultProvider = "gemini"
	}
	if c.AI.Gemini.Model == "" {
		c.AI.Gemini.Model = "gemini-2.5-flash"
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = "gpt-4o-mini"
	}
	if c.AI.Ollama.BaseURL == "" {
		c.AI.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.AI.Ollama.Model == "" {
		c.AI.Ollama.Model = "llama3.1"
	}
	if c.AI.RequestsPerSecond == 0 {
		c.AI.RequestsPerSecond = 1
	}
	if c.AI.Burst == 0 {
		c.AI.Burst = 2
	}
	if c.LandCover.APIName == "" {
		c.LandCover.APIName = "predict_image"
	}
	if c.LandCover.TimeoutSeconds == 0 {
		c.LandCover.TimeoutSeconds = 120
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "output"
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 20
	}
	if c.Queue.Workers == 0 {
		c.Queue.Workers = 4
	}
	if c.Queue.Size == 0 {
		c.Queue.Size = 64
	}
	if c.Queue.TimeoutSeconds == 0 {
		c.Queue.TimeoutSeconds = 300
	}
}
