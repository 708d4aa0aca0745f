package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	t.Setenv("LOGS_FOLDER", dir)
	t.Cleanup(func() {
		log.Logger = zerolog.New(os.Stderr)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level in verbose mode, got %s", zerolog.GlobalLevel())
	}

	log.Info().Int("rows", 3).Msg("Users table generated")

	b, err := os.ReadFile(filepath.Join(dir, "subsim.log"))
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(b), `"message":"Users table generated"`) || !strings.Contains(string(b), `"rows":3`) {
		t.Errorf("Unexpected log content: %s", b)
	}
}
