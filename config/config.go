package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DBPath        string
	SessionSecret string
}

func Load() *Config {
	// A missing .env file is fine; the real environment wins either way
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./mega_platform.db"
	}

	return &Config{
		ServerPort:    ":" + port,
		DBPath:        dbPath,
		SessionSecret: generateSessionSecret(),
	}
}

func generateSessionSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate session secret:", err)
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
