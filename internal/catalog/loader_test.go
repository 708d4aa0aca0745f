package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsim/internal/config"
)

func TestParseRuntime(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		parsed  bool
	}{
		{"95 min", 95, true},
		{"  120 min ", 120, true},
		{"7min", 7, true},
		{"1 min", 1, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"2 Seasons", 0, false},
		{"0 min", 0, false},
		{"-5 min", 0, false},
		{"ninety min", 0, false},
		{"95", 0, false},
	}

	for _, c := range cases {
		got := ParseRuntime(c.in)
		if got.Parsed != c.parsed || got.Minutes != c.minutes {
			t.Errorf("ParseRuntime(%q): expected (%d, %v), got (%d, %v)", c.in, c.minutes, c.parsed, got.Minutes, got.Parsed)
		}
	}
}

func TestRead_DropsUntitledAndRenumbers(t *testing.T) {
	input := `show_id,type,title,director,duration,poster_url
s10,Movie,Dick Johnson Is Dead,Kirsten Johnson,90 min,
s11,TV Show,,,2 Seasons,
s15,TV Show,Blood & Water,,"2 Seasons",http://x/p.jpg
s40,Movie,   ,,95 min,
s41,Movie,"Sankofa, Revisited",Haile Gerima,125 min
`
	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	for i, item := range items {
		if item.ID != i+1 {
			t.Errorf("Expected dense id %d, got %d", i+1, item.ID)
		}
	}
	if items[1].Title != "Blood & Water" || items[1].Runtime.Parsed {
		t.Errorf("Unexpected second item: %+v", items[1])
	}
	if items[2].Title != "Sankofa, Revisited" || items[2].Runtime.Minutes != 125 {
		t.Errorf("Unexpected third item: %+v", items[2])
	}
}

func TestRead_EmptyCatalog(t *testing.T) {
	inputs := []string{
		"",
		"title,duration\n",
		"title,duration\n,90 min\n  ,10 min\n",
	}
	for _, in := range inputs {
		_, err := Read(strings.NewReader(in))
		if !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("Read(%q): expected ErrEmptyCatalog, got %v", in, err)
		}
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("Read(%q): expected a configuration error, got %v", in, err)
		}
	}
}

func TestRead_MissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("name,runtime\nFoo,90 min\n"))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte("\ufeffTitle,Duration\nAlpha,88 min\n"), 0644); err != nil {
		t.Fatal(err)
	}

	items, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].Runtime.Minutes != 88 {
		t.Errorf("Unexpected items: %+v", items)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a missing file, got %v", err)
	}
}
