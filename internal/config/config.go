package config

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Options carries the tunables the session engine needs at construction.
// These used to live as ambient per-user preferences; passing them in
// explicitly keeps components testable.
type Options struct {
	// SaveDebounce is the quiet period after the last draft edit before the
	// draft is persisted. Each new edit reschedules the pending save.
	SaveDebounce time.Duration
	// ListenAddr is the HTTP bind address.
	ListenAddr string
	// AllowOrigin is the CORS origin permitted to call the API.
	AllowOrigin string
}

func Default() Options {
	return Options{
		SaveDebounce: 10 * time.Second,
		ListenAddr:   ":8080",
		AllowOrigin:  "http://localhost:3000",
	}
}

// FromEnv builds Options from environment variables, falling back to defaults.
func FromEnv() Options {
	opts := Default()
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		opts.ListenAddr = v
	}
	if v := os.Getenv("ALLOW_ORIGIN"); v != "" {
		opts.AllowOrigin = v
	}
	if v := os.Getenv("SAVE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.SaveDebounce = d
		} else {
			log.Printf("invalid SAVE_DEBOUNCE %q, using default: %v", v, err)
		}
	}
	return opts
}

// InitDB opens the Postgres connection from DB_DSN.
func InitDB() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	return db
}
