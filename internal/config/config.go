package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthHMACSecret  string
	EnableLocalAuth bool
	AdminUser       string
	AdminPassHash   string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	LogLevel string
	LogFile  string

	LemmaDictPath   string        // YAML dictionary merged over the embedded one
	LemmaServiceURL string        // optional remote lemmatizer
	LemmaTimeout    time.Duration // per remote lookup
	LemmaCacheSize  int

	MetricsEnabled bool

	SiteID string // stamped on every event-log entry
}

// CORSOrigins returns the origin list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// FromEnv reads the configuration from the environment. When CONFIG_FILE
// names a YAML/JSON/TOML file its values sit between defaults and env.
func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	mode := Mode(strings.ToLower(v.GetString("MODE")))
	if mode != ModeOnline {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DBDSN:              v.GetString("DB_DSN"),
		AuthHMACSecret:     v.GetString("AUTH_HMAC_SECRET"),
		EnableLocalAuth:    v.GetBool("ENABLE_LOCAL_AUTH"),
		AdminUser:          v.GetString("ADMIN_USER"),
		AdminPassHash:      v.GetString("ADMIN_PASS_HASH"),
		CORSOriginsOnline:  csv(v.GetString("CORS_ORIGINS_ONLINE")),
		CORSOriginsOffline: csv(v.GetString("CORS_ORIGINS_OFFLINE")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFile:            v.GetString("LOG_FILE"),
		LemmaDictPath:      v.GetString("LEMMA_DICT_PATH"),
		LemmaServiceURL:    v.GetString("LEMMA_SERVICE_URL"),
		LemmaTimeout:       v.GetDuration("LEMMA_TIMEOUT"),
		LemmaCacheSize:     v.GetInt("LEMMA_CACHE_SIZE"),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		SiteID:             v.GetString("SITE_ID"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODE", string(ModeOffline))
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("AUTH_HMAC_SECRET", "supersecret-dev-key")
	v.SetDefault("ENABLE_LOCAL_AUTH", true)
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji")
	v.SetDefault("CORS_ORIGINS_ONLINE", "https://grading.mindengage.ai")
	v.SetDefault("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LEMMA_DICT_PATH", "")
	v.SetDefault("LEMMA_SERVICE_URL", "")
	v.SetDefault("LEMMA_TIMEOUT", "2s")
	v.SetDefault("LEMMA_CACHE_SIZE", 10000)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SITE_ID", "local")
	v.SetDefault("CONFIG_FILE", "")
}

func csv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
