package table

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/core"
)

func newReader(t *testing.T, files map[string]string) *CSVReader {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return NewCSVReader(artifact.NewFileSource(dir),
		Files{Catalog: "anime.csv", Synopsis: "synopsis.csv", Ratings: "ratings.csv"},
		Columns{})
}

func TestCSVReader_DefaultColumns(t *testing.T) {
	r := newReader(t, map[string]string{
		"anime.csv":    "anime_id,eng_version,Genres,Score\n1,A,\"Action, Drama\",8.1\n2,B,Action,7\n",
		"synopsis.csv": "MAL_ID,Name,Genres,sypnopsis\n1,A,Action,\"A story, with commas\"\n",
		"ratings.csv":  "user_id,anime_id,rating\n5,1,9\n5,2,7.0\n",
	})
	ctx := context.Background()

	items, err := r.Items(ctx)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	want := []core.Item{{ID: 1, DisplayName: "A", Genres: "Action, Drama"}, {ID: 2, DisplayName: "B", Genres: "Action"}}
	if len(items) != len(want) {
		t.Fatalf("Items() = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("Items()[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}

	syn, err := r.Synopses(ctx)
	if err != nil {
		t.Fatalf("Synopses() error = %v", err)
	}
	if len(syn) != 1 || syn[0].Text != "A story, with commas" || syn[0].Name != "A" {
		t.Errorf("Synopses() = %+v", syn)
	}

	ratings, err := r.Ratings(ctx)
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(ratings) != 2 || ratings[1] != (core.Rating{UserID: 5, ItemID: 2, Score: 7}) {
		t.Errorf("Ratings() = %+v", ratings)
	}
}

func TestCSVReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		read  func(*CSVReader) error
	}{
		{
			name:  "missing file",
			files: map[string]string{},
			read:  func(r *CSVReader) error { _, err := r.Items(context.Background()); return err },
		},
		{
			name:  "missing column",
			files: map[string]string{"anime.csv": "id,name\n1,A\n"},
			read:  func(r *CSVReader) error { _, err := r.Items(context.Background()); return err },
		},
		{
			name:  "bad id",
			files: map[string]string{"ratings.csv": "user_id,anime_id,rating\nx,1,9\n"},
			read:  func(r *CSVReader) error { _, err := r.Ratings(context.Background()); return err },
		},
		{
			name:  "empty file",
			files: map[string]string{"synopsis.csv": ""},
			read:  func(r *CSVReader) error { _, err := r.Synopses(context.Background()); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(newReader(t, tt.files))
			if !core.IsArtifactLoad(err) {
				t.Errorf("error = %v, want ARTIFACT_LOAD", err)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{" 7 ", 7, false},
		{"20.0", 20, false},
		{"20.5", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseID(%q) = %d, %v; want %d, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
