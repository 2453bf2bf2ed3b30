package initializers

import (
	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file when one is present; real environment variables
// always win.
func LoadEnv() {
	_ = godotenv.Load()
}
