package global

import (
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the whole runtime configuration, resolved exactly once at startup.
// Precedence: explicit overrides applied by the caller > environment > default.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	NodeID   int64  `env:"NODE_ID" env-default:"1"`

	Mongo struct {
		URI         string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
		Database    string `env:"MONGO_DB" env-default:"snapcap"`
		Username    string `env:"MONGO_USER"`
		Password    string `env:"MONGO_PASSWORD"`
		MaxPoolSize uint64 `env:"MONGO_MAX_POOL" env-default:"20"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
		PoolSize int    `env:"REDIS_POOL" env-default:"10"`
	}

	JWT struct {
		Secret string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
		TTL    time.Duration `env:"JWT_TTL" env-default:"168h"`
	}

	CORS struct {
		Origins []string `env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
	}

	NATS struct {
		URL     string `env:"NATS_URL"` // empty disables cross-instance relay
		Subject string `env:"NATS_NOTIFY_SUBJECT" env-default:"snapcap.notify"`
	}

	S3 struct {
		Region    string `env:"S3_REGION" env-default:"us-east-1"`
		Bucket    string `env:"S3_BUCKET" env-default:"snapcap-media"`
		Endpoint  string `env:"S3_ENDPOINT"`
		AccessKey string `env:"S3_ACCESS_KEY"`
		SecretKey string `env:"S3_SECRET_KEY"`
		PublicURL string `env:"S3_PUBLIC_URL"` // CDN/base URL for stored objects
	}

	OpenAI struct {
		APIKey string `env:"OPENAI_API_KEY"` // empty => canned captions only
		Model  string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	}

	RateLimit struct {
		Window time.Duration `env:"RATE_WINDOW" env-default:"1m"`
		Max    int           `env:"RATE_MAX" env-default:"120"`
	}
}

var (
	cfg     Config
	cfgOnce sync.Once
	cfgErr  error
)

// Load resolves the configuration from the environment once; later calls
// return the same value.
func Load() (*Config, error) {
	cfgOnce.Do(func() {
		cfgErr = cleanenv.ReadEnv(&cfg)
	})
	if cfgErr != nil {
		return nil, cfgErr
	}
	return &cfg, nil
}

// Get returns the loaded config; panics if Load was never called.
func Get() *Config {
	if cfg.HTTPAddr == "" {
		panic("config not loaded: call global.Load first")
	}
	return &cfg
}

func (c *Config) JWTSecret() []byte { return []byte(c.JWT.Secret) }
