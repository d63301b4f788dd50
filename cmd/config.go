package main

import "time"

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/badger"`
	SearchFilepath  string        `env:"SEARCH_FILEPATH,default=./data/search"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=10s"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL,default=30s"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=*"`
	CensoredWords   *string       `env:"CENSORED_WORDS_PATH"`
	CensoredChar    string        `env:"CENSORED_CHARACTER,default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}
