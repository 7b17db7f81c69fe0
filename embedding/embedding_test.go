package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/core"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

var testPaths = Paths{Matrix: "weights.json", Encode: "encode.json", Decode: "decode.json"}

func TestLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"weights.json": `[[1, 0], [0.9, 0.1], [0, 1]]`,
		"encode.json":  `{"10": 0, "20": 1, "30": 2}`,
		"decode.json":  `{"0": 10, "1": 20, "2": 30}`,
	})

	emb, err := Load(context.Background(), artifact.NewFileSource(dir), testPaths)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if emb.Rows() != 3 || emb.Matrix.Dim() != 2 {
		t.Fatalf("Load() shape = %dx%d, want 3x2", emb.Rows(), emb.Matrix.Dim())
	}
	if row, ok := emb.Index.EncodeID(20); !ok || row != 1 {
		t.Errorf("EncodeID(20) = %d, %v", row, ok)
	}
	if err := emb.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestLoad_ArtifactErrors(t *testing.T) {
	good := map[string]string{
		"weights.json": `[[1, 0], [0, 1]]`,
		"encode.json":  `{"1": 0, "2": 1}`,
		"decode.json":  `{"0": 1, "1": 2}`,
	}
	tests := []struct {
		name     string
		override map[string]string
		remove   string
	}{
		{name: "missing matrix", remove: "weights.json"},
		{name: "missing encode", remove: "encode.json"},
		{name: "missing decode", remove: "decode.json"},
		{name: "ragged matrix", override: map[string]string{"weights.json": `[[1, 0], [1]]`}},
		{name: "matrix wrong shape", override: map[string]string{"weights.json": `{"a": 1}`}},
		{name: "encode wrong shape", override: map[string]string{"encode.json": `["x"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := make(map[string]string, len(good))
			for k, v := range good {
				files[k] = v
			}
			for k, v := range tt.override {
				files[k] = v
			}
			delete(files, tt.remove)

			_, err := Load(context.Background(), artifact.NewFileSource(writeFiles(t, files)), testPaths)
			if !core.IsArtifactLoad(err) {
				t.Errorf("Load() error = %v, want ARTIFACT_LOAD", err)
			}
		})
	}
}

func TestIndexMap_Bijection(t *testing.T) {
	ids := []int64{7, 3, 11, 42}
	m := NewIndexMap(ids)
	if err := m.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	for id, row := range m.Encode {
		if back, ok := m.DecodeRow(row); !ok || back != id {
			t.Errorf("decode(encode(%d)) = %d, %v", id, back, ok)
		}
	}
	for row, id := range m.Decode {
		if back, ok := m.EncodeID(id); !ok || back != row {
			t.Errorf("encode(decode(%d)) = %d, %v", row, back, ok)
		}
	}
}

func TestIndexMap_CheckDetectsBrokenMapping(t *testing.T) {
	tests := []struct {
		name string
		m    IndexMap
	}{
		{
			name: "size mismatch",
			m:    IndexMap{Encode: map[int64]int{1: 0, 2: 1}, Decode: map[int]int64{0: 1}},
		},
		{
			name: "not inverse",
			m:    IndexMap{Encode: map[int64]int{1: 0, 2: 1}, Decode: map[int]int64{0: 2, 1: 1}},
		},
		{
			name: "dangling row",
			m:    IndexMap{Encode: map[int64]int{1: 0, 2: 5}, Decode: map[int]int64{0: 1, 1: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.m.Check(); err == nil {
				t.Error("Check() error = nil, want error")
			}
		})
	}
}

func TestEmbedding_CheckRowRange(t *testing.T) {
	emb := &Embedding{
		Matrix: Matrix{{1, 0}},
		Index:  NewIndexMap([]int64{1, 2}),
	}
	if err := emb.Check(); err == nil {
		t.Error("Check() error = nil, want row out of range")
	}
}
