package envHelper

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when one exists.
func LoadEnv(filenames ...string) {
	err := godotenv.Load(filenames...)
	if err != nil {
		// Not fatal, the process environment still applies
		log.Println("Couldn't load .env file:", err)
	}
}

func GetString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func GetInt(key string, fallback int) int {
	value := GetString(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("%s=%q is not an integer, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func GetBool(key string, fallback bool) bool {
	value := GetString(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("%s=%q is not a boolean, using %t", key, value, fallback)
		return fallback
	}
	return b
}

// GetDuration accepts Go durations ("15s", "2m") and bare numbers of seconds.
func GetDuration(key string, fallback time.Duration) time.Duration {
	value := GetString(key, "")
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("%s=%q is not a duration, using %s", key, value, fallback)
		return fallback
	}
	return d
}
