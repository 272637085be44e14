package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret          string `env:"JWT_SECRET,required"`
	JWTAccessTTLHours  int    `env:"JWT_ACCESS_TTL_HOURS" envDefault:"24"`
	JWTRefreshTTLHours int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"720"`

	AdminAPIKeyHash string `env:"ADMIN_API_KEY_HASH"`

	LLMAPIKey     string `env:"LLM_API_KEY"`
	LLMBaseURL    string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMEmbedModel string `env:"LLM_EMBED_MODEL" envDefault:"text-embedding-3-small"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
