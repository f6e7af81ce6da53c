package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is loaded once at startup and handed to constructors explicitly;
// nothing reads the environment after Load returns.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"APP_PORT" envDefault:"8080"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"identity_db"`

	JWTSecret    string `env:"JWT" envDefault:"default_secret_key"`
	AccessTTLMin int    `env:"ACCESS_TTL_MIN" envDefault:"60"`

	RedisAddr       string `env:"REDIS_ADDR"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MIN" envDefault:"5"`

	RabbitURL      string `env:"RABBIT_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"identity.events"`

	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	DefaultAvatarURL string `env:"DEFAULT_AVATAR_URL" envDefault:"https://t4.ftcdn.net/jpg/00/64/67/63/360_F_64676383_LdbmhiNM6Ypzb3FM4PPuFP9rHe7ri8Ju.jpg"`
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
