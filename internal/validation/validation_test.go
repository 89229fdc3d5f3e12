package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"valid date", "2019-03-01", time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"leap day", "2020-02-29", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"not a leap year", "2019-02-29", time.Time{}, true},
		{"missing zero padding", "2019-3-1", time.Time{}, true},
		{"wrong separator", "2019/03/01", time.Time{}, true},
		{"timestamp", "20190301000000", time.Time{}, true},
		{"trailing time", "2019-03-01T00:00:00", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("start", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, domain.ErrConfigFormat) {
					t.Errorf("ParseDate(%q) error should wrap ErrConfigFormat, got %v", tt.value, err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateWindow(t *testing.T) {
	day := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		window  domain.Window
		wantErr bool
	}{
		{"one day", domain.NewWindow(day, time.Time{}), false},
		{"one week", domain.NewWindow(day, day.AddDate(0, 0, 7)), false},
		{"empty", domain.NewWindow(day, day), true},
		{"reversed", domain.NewWindow(day, day.AddDate(0, 0, -1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindow(tt.window)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWindow(%s) error = %v, wantErr %v", tt.window, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDBName(t *testing.T) {
	tests := []struct {
		name    string
		dbname  string
		wantErr bool
	}{
		{"simple", "enwiki", false},
		{"with underscore", "be_x_oldwiki", false},
		{"with digits", "wikimania2019wiki", false},
		{"empty", "", true},
		{"uppercase", "Enwiki", true},
		{"starts with digit", "1wiki", true},
		{"hyphen", "en-wiki", true},
		{"dot", "enwiki.dblist", true},
		{"slash", "en/wiki", true},
		{"quote", "enwiki'", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDBName(tt.dbname)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDBName(%q) error = %v, wantErr %v", tt.dbname, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSetName(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		wantErr bool
	}{
		{"simple", "all", false},
		{"section", "s1", false},
		{"hyphen", "large-wikis", false},
		{"underscore", "group_0", false},
		{"mixed case", "wikipedia-DE", false},
		{"empty", "", true},
		{"path traversal", "../closed", true},
		{"extension", "all.dblist", true},
		{"space", "all closed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSetName(tt.set)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSetName(%q) error = %v, wantErr %v", tt.set, err, tt.wantErr)
			}
		})
	}
}
