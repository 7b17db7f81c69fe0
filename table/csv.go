package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/core"
)

// CSVReader 通过 artifact.Source 读取 CSV 数据表。
type CSVReader struct {
	Source  artifact.Source
	Files   Files
	Columns Columns
}

// NewCSVReader 创建 CSV 表读取器，空列名使用默认值。
func NewCSVReader(src artifact.Source, files Files, cols Columns) *CSVReader {
	return &CSVReader{Source: src, Files: files, Columns: cols.WithDefaults()}
}

func (r *CSVReader) Items(ctx context.Context) ([]core.Item, error) {
	c := r.Columns
	var out []core.Item
	err := r.scan(ctx, r.Files.Catalog, []string{c.ItemID, c.ItemName, c.ItemGenres}, func(f []string) error {
		id, err := ParseID(f[0])
		if err != nil {
			return err
		}
		out = append(out, core.Item{ID: id, DisplayName: f[1], Genres: f[2]})
		return nil
	})
	return out, err
}

func (r *CSVReader) Synopses(ctx context.Context) ([]core.Synopsis, error) {
	c := r.Columns
	var out []core.Synopsis
	err := r.scan(ctx, r.Files.Synopsis, []string{c.SynopsisID, c.SynopsisName, c.SynopsisText}, func(f []string) error {
		id, err := ParseID(f[0])
		if err != nil {
			return err
		}
		out = append(out, core.Synopsis{ID: id, Name: f[1], Text: f[2]})
		return nil
	})
	return out, err
}

func (r *CSVReader) Ratings(ctx context.Context) ([]core.Rating, error) {
	c := r.Columns
	var out []core.Rating
	err := r.scan(ctx, r.Files.Ratings, []string{c.RatingUser, c.RatingItem, c.RatingScore}, func(f []string) error {
		userID, err := ParseID(f[0])
		if err != nil {
			return err
		}
		itemID, err := ParseID(f[1])
		if err != nil {
			return err
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(f[2]), 64)
		if err != nil {
			return err
		}
		out = append(out, core.Rating{UserID: userID, ItemID: itemID, Score: score})
		return nil
	})
	return out, err
}

// scan 读取表头定位 columns，然后对每一行按 columns 顺序回调 fn。
func (r *CSVReader) scan(ctx context.Context, name string, columns []string, fn func([]string) error) error {
	if r.Source == nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, errors.New("table source is nil"))
	}
	rc, err := r.Source.Open(ctx, name)
	if err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, fmt.Errorf("read header: %w", err))
	}
	pos, err := columnPositions(header, columns)
	if err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}

	fields := make([]string, len(columns))
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
		}
		for i, p := range pos {
			if p < len(rec) {
				fields[i] = rec[p]
			} else {
				fields[i] = ""
			}
		}
		if err := fn(fields); err != nil {
			return core.NewArtifactLoadError(core.ModuleArtifact, name, fmt.Errorf("line %d: %w", line, err))
		}
	}
}

func columnPositions(header, columns []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	pos := make([]int, len(columns))
	for i, c := range columns {
		p, ok := index[c]
		if !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
		pos[i] = p
	}
	return pos, nil
}

// ParseID 解析整数 id，兼容 "20.0" 形式的浮点写法。
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int64(f), nil
}

var _ Reader = (*CSVReader)(nil)
