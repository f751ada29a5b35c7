package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port           int      `json:"port"`
	Environment    string   `json:"environment"`
	AllowedOrigins []string `json:"allowed_origins"`
	FrontendDir    string   `json:"frontend_dir"`

	// Upload handling
	UploadDir     string `json:"upload_dir"`
	MaxUploadSize int64  `json:"max_upload_size"`

	// Mapping table location
	MappingFile string `json:"mapping_file"`

	// SICAP API configuration
	SICAPBaseURL       string        `json:"sicap_base_url"`
	SICAPLoginTimeout  time.Duration `json:"sicap_login_timeout"`
	SICAPSubmitTimeout time.Duration `json:"sicap_submit_timeout"`
	CompanyID          int           `json:"sicap_empresa_id"`
	PartnershipID      int           `json:"sicap_parceria_id"`

	// Credentials used by the command line client only
	SICAPUsername string `json:"-"`
	SICAPPassword string `json:"-"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present
func LoadConfig() error {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8000"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	loginTimeout, err := time.ParseDuration(getEnvOrDefault("SICAP_LOGIN_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid SICAP_LOGIN_TIMEOUT: %w", err)
	}

	submitTimeout, err := time.ParseDuration(getEnvOrDefault("SICAP_SUBMIT_TIMEOUT", "120s"))
	if err != nil {
		return fmt.Errorf("invalid SICAP_SUBMIT_TIMEOUT: %w", err)
	}

	baseURL := strings.TrimRight(getEnvOrDefault("SICAP_BASE_URL", "https://sicap.prefeitura.sp.gov.br/v1"), "/")
	if baseURL == "" {
		return fmt.Errorf("SICAP_BASE_URL must not be empty")
	}

	AppConfig = &Config{
		// Server configuration
		Port:           port,
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		AllowedOrigins: parseCommaSeparatedList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		FrontendDir:    getEnvOrDefault("FRONTEND_DIR", "frontend"),

		// Upload handling
		UploadDir:     getEnvOrDefault("UPLOAD_DIR", os.TempDir()+"/sicap_uploads"),
		MaxUploadSize: int64(getEnvAsIntOrDefault("MAX_UPLOAD_SIZE_MB", 32)) << 20,

		MappingFile: getEnvOrDefault("MAPPING_FILE", "Utils/mapeamentos.json"),

		// SICAP API configuration
		SICAPBaseURL:       baseURL,
		SICAPLoginTimeout:  loginTimeout,
		SICAPSubmitTimeout: submitTimeout,
		CompanyID:          getEnvAsIntOrDefault("SICAP_EMPRESA_ID", 4623),
		PartnershipID:      getEnvAsIntOrDefault("SICAP_PARCERIA_ID", 31),

		SICAPUsername: os.Getenv("SICAP_USUARIO"),
		SICAPPassword: os.Getenv("SICAP_SENHA"),

		// Tracing configuration
		TracingEnabled:  getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the integer value of key, or the default when
// unset or not a number
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// parseCommaSeparatedList splits value on commas, dropping blanks
func parseCommaSeparatedList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
