package main

import "time"

type Config struct {
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT,required=true"`
	LogLevel           string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath      string        `env:"BLUGE_FILEPATH,required=true"`
	MediaRoot          string        `env:"MEDIA_ROOT,required=true"`
	JWTSecret          string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	ForbiddenWordsPath string        `env:"FORBIDDEN_WORDS_PATH"`
	LimitMessages      *int          `env:"LIMIT_MESSAGES"`
	SearchLimit        int           `env:"SEARCH_LIMIT"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

func (c Config) searchLimit() int {
	if c.SearchLimit <= 0 {
		return 50
	}
	return c.SearchLimit
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ShutdownTimeout
}
