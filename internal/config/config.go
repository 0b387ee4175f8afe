package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LocalStoreFile   = "file"
	LocalStoreRedis  = "redis"
	LocalStoreMemory = "memory"

	CloudPostgres  = "postgres"
	CloudFirestore = "firestore"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port         int
	JWTSecret    string
	JWTAccessTTL time.Duration
	SessionTTL   time.Duration
	AllowOrigins []string

	LocalStore    string
	LocalStoreDir string
	RedisURL      string

	CloudProvider   string
	DBDSN           string
	Firebase        FirebaseConfig
	CloudCollection string
	CloudDocument   string
	CloudRequired   bool

	SyncDebounce         time.Duration
	ConnectivityInterval time.Duration
	SuccessBannerTTL     time.Duration
	StaleDemandDays      int

	SlackWebhookURL string
	BasePath        string
	StaticDir       string

	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// FirebaseConfig reúne as variáveis públicas do projeto Firebase.
type FirebaseConfig struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	AppID             string
	StorageBucket     string
	MessagingSenderID string
}

// Complete indica se os campos obrigatórios estão presentes.
func (f FirebaseConfig) Complete() bool {
	return f.APIKey != "" && f.AuthDomain != "" && f.ProjectID != "" && f.AppID != ""
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// CloudEnabled indica se há provedor remoto com configuração completa. Sem
// ela o aplicativo roda apenas localmente.
func (c *Config) CloudEnabled() bool {
	switch c.CloudProvider {
	case CloudPostgres:
		return c.DBDSN != ""
	case CloudFirestore:
		return c.Firebase.Complete()
	}
	return false
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cfg.loadServer(); err != nil {
		return nil, err
	}
	if err := cfg.loadStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage carrega apenas armazenamento local, nuvem e tempos de
// sincronização. Usado pelas ferramentas de linha de comando, que não
// emitem tokens.
func LoadStorage() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cfg.loadStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) loadServer() error {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 12*time.Hour); err != nil {
		return err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return err
	}
	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))
	cfg.BasePath = ResolveBasePath(getEnv("BASE_PATH", ""), getEnv("GITHUB_REPOSITORY", ""))
	cfg.StaticDir = strings.TrimSpace(getEnv("STATIC_DIR", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 20, Burst: 40}
	return nil
}

func (cfg *Config) loadStorage() error {
	var err error

	cfg.LocalStore = strings.ToLower(strings.TrimSpace(getEnv("LOCAL_STORE", LocalStoreFile)))
	cfg.LocalStoreDir = strings.TrimSpace(getEnv("LOCAL_STORE_DIR", "./data"))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	switch cfg.LocalStore {
	case LocalStoreFile:
		if cfg.LocalStoreDir == "" {
			return errors.New("LOCAL_STORE_DIR obrigatório para LOCAL_STORE=file")
		}
	case LocalStoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL obrigatório para LOCAL_STORE=redis")
		}
	case LocalStoreMemory:
	default:
		return errors.New("LOCAL_STORE inválido")
	}

	cfg.CloudProvider = strings.ToLower(strings.TrimSpace(getEnv("CLOUD_PROVIDER", "")))
	switch cfg.CloudProvider {
	case "", CloudPostgres, CloudFirestore:
	default:
		return errors.New("CLOUD_PROVIDER inválido")
	}
	cfg.DBDSN = strings.TrimSpace(getEnv("DB_DSN", ""))
	cfg.Firebase = FirebaseConfig{
		APIKey:            strings.TrimSpace(getEnv("FIREBASE_API_KEY", "")),
		AuthDomain:        strings.TrimSpace(getEnv("FIREBASE_AUTH_DOMAIN", "")),
		ProjectID:         strings.TrimSpace(getEnv("FIREBASE_PROJECT_ID", "")),
		AppID:             strings.TrimSpace(getEnv("FIREBASE_APP_ID", "")),
		StorageBucket:     strings.TrimSpace(getEnv("FIREBASE_STORAGE_BUCKET", "")),
		MessagingSenderID: strings.TrimSpace(getEnv("FIREBASE_MESSAGING_SENDER_ID", "")),
	}
	cfg.CloudCollection = strings.TrimSpace(getEnv("CLOUD_COLLECTION", ""))
	cfg.CloudDocument = strings.TrimSpace(getEnv("CLOUD_DOCUMENT", ""))
	if cfg.CloudRequired, err = parseBoolEnv("CLOUD_REQUIRED", false); err != nil {
		return err
	}

	if cfg.SyncDebounce, err = parseDurationEnv("SYNC_DEBOUNCE", 650*time.Millisecond); err != nil {
		return err
	}
	if cfg.ConnectivityInterval, err = parseDurationEnv("CONNECTIVITY_INTERVAL", 15*time.Second); err != nil {
		return err
	}
	if cfg.SuccessBannerTTL, err = parseDurationEnv("SUCCESS_BANNER_TTL", 3*time.Second); err != nil {
		return err
	}
	days, err := strconv.Atoi(getEnv("STALE_DEMAND_DAYS", "14"))
	if err != nil || days <= 0 {
		return errors.New("STALE_DEMAND_DAYS inválido")
	}
	cfg.StaleDemandDays = days
	return nil
}

// ResolveBasePath usa BASE_PATH quando informado; senão /<repositório>/ a
// partir de GITHUB_REPOSITORY (dono/repositório); senão /.
func ResolveBasePath(explicit, repository string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return withSlashes(p)
	}
	repository = strings.TrimSpace(repository)
	if i := strings.LastIndex(repository, "/"); i >= 0 {
		repository = repository[i+1:]
	}
	if repository == "" {
		return "/"
	}
	return withSlashes(repository)
}

func withSlashes(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}
