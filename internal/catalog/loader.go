package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"subsim/internal/config"
	"subsim/internal/dataset"

	"github.com/rs/zerolog/log"
)

// ErrEmptyCatalog is returned when no titled rows survive filtering.
var ErrEmptyCatalog = fmt.Errorf("%w: catalog has no titled entries", config.ErrInvalidConfig)

const (
	titleColumn    = "title"
	durationColumn = "duration"
)

// Load reads the enriched catalog CSV at path.
func Load(path string) ([]dataset.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: catalog %s not found", config.ErrInvalidConfig, path)
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	items, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return items, nil
}

// Read parses catalog rows, drops the ones without a title and numbers the
// rest 1..K in input order. Any identifier column in the input is ignored.
func Read(r io.Reader) ([]dataset.CatalogItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	titleIdx, durationIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case titleColumn:
			titleIdx = i
		case durationColumn:
			durationIdx = i
		}
	}
	if titleIdx < 0 || durationIdx < 0 {
		return nil, fmt.Errorf("%w: catalog header must contain %q and %q columns", config.ErrInvalidConfig, titleColumn, durationColumn)
	}

	var (
		items   []dataset.CatalogItem
		dropped int
		unknown int
	)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		title := strings.TrimSpace(field(record, titleIdx))
		if title == "" {
			dropped++
			continue
		}

		text := field(record, durationIdx)
		item := dataset.CatalogItem{
			ID:           len(items) + 1,
			Title:        title,
			DurationText: text,
			Runtime:      ParseRuntime(text),
		}
		if !item.Runtime.Parsed {
			unknown++
			log.Debug().Int("movie_id", item.ID).Str("duration", text).Msg("Unparseable duration, watch events will use the fallback range")
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	log.Info().
		Int("items", len(items)).
		Int("dropped", dropped).
		Int("unknown_duration", unknown).
		Msg("Catalog loaded")
	return items, nil
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

// ParseRuntime recognizes "<positive int> min". Anything else, including
// zero or negative minutes, yields an unknown runtime.
func ParseRuntime(text string) dataset.Runtime {
	t := strings.TrimSpace(text)
	num, ok := strings.CutSuffix(t, "min")
	if !ok {
		return dataset.Runtime{}
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return dataset.Runtime{}
	}
	return dataset.Runtime{Minutes: n, Parsed: true}
}
