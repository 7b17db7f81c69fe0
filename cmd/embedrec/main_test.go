package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/embedrec/core"
)

func writeArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"anime_weights.json":       `[[1, 0], [0.9, 0.1], [0, 1], [-1, 0]]`,
		"anime2anime_encoded.json": `{"1": 0, "2": 1, "3": 2, "4": 3}`,
		"anime2anime_decoded.json": `{"0": 1, "1": 2, "2": 3, "3": 4}`,
		"user_weights.json":        `[[1, 0], [0.9, 0.1], [0.8, 0.2]]`,
		"user2user_encoded.json":   `{"100": 0, "200": 1, "300": 2}`,
		"user2user_decoded.json":   `{"0": 100, "1": 200, "2": 300}`,
		"anime_df.csv":             "anime_id,eng_version,Genres\n1,A,Action\n2,B,Action\n3,C,Drama\n4,D,Drama\n",
		"synopsis_df.csv":          "MAL_ID,Name,sypnopsis\n1,A,a\n2,B,b\n3,C,c\n4,D,d\n",
		"rating_df.csv":            "user_id,anime_id,rating\n100,1,9\n200,3,9\n300,3,8\n300,4,8\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("EMBEDREC_ARTIFACTS__ROOT", dir)
	t.Setenv("EMBEDREC_LOGGING__LEVEL", "disabled")
	return dir
}

func TestRun_SimilarItems(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"similar-items", "-name", "A", "-n", "1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
	}
	var got []core.SimilarItem
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if len(got) != 1 || got[0].Name != "B" {
		t.Errorf("similar-items = %+v, want [B]", got)
	}
}

func TestRun_Recommend(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"recommend", "-user", "100", "-n", "2", "-similar-users", "2"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
	}
	var got struct {
		Entries []core.RecommendationEntry `json:"entries"`
		Dropped int                        `json:"dropped"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 2 || got.Entries[0].ItemName != "C" || got.Entries[0].SupportCount != 2 {
		t.Errorf("recommend = %+v", got)
	}
}

func TestRun_Check(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"check"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(check) = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"ok"`) {
		t.Errorf("check output = %s", stdout.String())
	}
}

func TestRun_UsageErrors(t *testing.T) {
	writeArtifacts(t)
	tests := [][]string{
		{},
		{"bogus"},
		{"prefs"},
		{"similar-items"},
		{"similar-items", "-raw"},
		{"similar-items", "-raw", "-name", "A"},
		{"similar-users", "-user", "1", "-dir", "sideways"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(context.Background(), args, &stdout, &stderr); code != 2 {
			t.Errorf("run(%v) = %d, want 2", args, code)
		}
	}
}

func TestRun_DomainErrorExitCode(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"similar-items", "-id", "99"}, &stdout, &stderr); code != 1 {
		t.Errorf("run(similar-items -id 99) = %d, want 1", code)
	}
}

func TestRun_SimilarItemsRaw(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"similar-items", "-raw", "-id", "1", "-n", "1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
	}
	var got struct {
		Scores  []float64 `json:"scores"`
		Indices []int     `json:"indices"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Scores) != 4 || len(got.Indices) != 2 || got.Indices[0] != 1 || got.Indices[1] != 0 {
		t.Errorf("similar-items -raw = %+v", got)
	}
}

func TestRun_EmptyResultPrintsJSON(t *testing.T) {
	writeArtifacts(t)
	var stdout, stderr bytes.Buffer
	// 未知用户走冷启动，输出空列表而不是空白
	code := run(context.Background(), []string{"similar-users", "-user", "999"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "[]" {
		t.Errorf("similar-users for unknown user = %q, want []", got)
	}
}
