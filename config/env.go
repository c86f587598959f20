package config

import (
	"os"
	"strings"

	"NexoraPanel/utils"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files from the working directory. Variables already
// present in the process environment win.
func LoadEnv() {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			utils.Warnf("failed to load %s: %v", file, err)
			continue
		}
		loaded = append(loaded, file)
	}
	if len(loaded) == 0 {
		utils.Debugf("no local env files loaded; relying on process environment")
		return
	}
	utils.Debugf("loaded env files: %s", strings.Join(loaded, ", "))
}
