package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
)

// DefaultEnvFile is loaded when present and no env file was named.
const DefaultEnvFile = ".env"

// loadEnvFiles loads credentials from dotenv files into the process
// environment. Variables already set are kept. Named files must exist;
// the default file is optional.
func loadEnvFiles(ctx context.Context, files []string) error {
	logger := ctxlog.FromContext(ctx)
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
		logger.Debug("Env file loaded.", "path", f)
	}
	return nil
}
