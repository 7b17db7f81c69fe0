// Package duckdb 用 DuckDB 的 read_csv_auto 读取数据表，适合大评分表。
//
// 与 table.CSVReader 不同，DuckDB 直接读取本地路径，因此只支持本地目录作为来源。
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/table"
)

// Reader 通过内存 DuckDB 连接读取 CSV 表。
type Reader struct {
	db      *sql.DB
	root    string
	files   table.Files
	columns table.Columns
}

// Open 打开内存 DuckDB 连接。root 为表文件所在目录。
func Open(root string, files table.Files, cols table.Columns) (*Reader, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}
	// 单连接保证 read_csv_auto 按文件顺序返回，目录查找依赖首行语义
	db.SetMaxOpenConns(1)
	return &Reader{db: db, root: root, files: files, columns: cols.WithDefaults()}, nil
}

// Close 关闭底层连接。
func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) Items(ctx context.Context) ([]core.Item, error) {
	c := r.columns
	var out []core.Item
	err := r.query(ctx, r.files.Catalog, []string{c.ItemID, c.ItemName, c.ItemGenres}, func(f []string) error {
		id, err := table.ParseID(f[0])
		if err != nil {
			return err
		}
		out = append(out, core.Item{ID: id, DisplayName: f[1], Genres: f[2]})
		return nil
	})
	return out, err
}

func (r *Reader) Synopses(ctx context.Context) ([]core.Synopsis, error) {
	c := r.columns
	var out []core.Synopsis
	err := r.query(ctx, r.files.Synopsis, []string{c.SynopsisID, c.SynopsisName, c.SynopsisText}, func(f []string) error {
		id, err := table.ParseID(f[0])
		if err != nil {
			return err
		}
		out = append(out, core.Synopsis{ID: id, Name: f[1], Text: f[2]})
		return nil
	})
	return out, err
}

func (r *Reader) Ratings(ctx context.Context) ([]core.Rating, error) {
	c := r.columns
	var out []core.Rating
	err := r.query(ctx, r.files.Ratings, []string{c.RatingUser, c.RatingItem, c.RatingScore}, func(f []string) error {
		userID, err := table.ParseID(f[0])
		if err != nil {
			return err
		}
		itemID, err := table.ParseID(f[1])
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

func (r *Reader) path(name string) string {
	if filepath.IsAbs(name) || r.root == "" {
		return name
	}
	return filepath.Join(r.root, name)
}

// query 以全 VARCHAR 方式读取 name 的 columns 列，逐行回调 fn。
func (r *Reader) query(ctx context.Context, name string, columns []string, fn func([]string) error) error {
	q := buildQuery(r.path(name), columns)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	defer rows.Close()

	raw := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	fields := make([]string, len(columns))
	line := 1
	for rows.Next() {
		line++
		if err := rows.Scan(dest...); err != nil {
			return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
		}
		for i, v := range raw {
			fields[i] = v.String
		}
		if err := fn(fields); err != nil {
			return core.NewArtifactLoadError(core.ModuleArtifact, name, fmt.Errorf("line %d: %w", line, err))
		}
	}
	if err := rows.Err(); err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	return nil
}

func buildQuery(path string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
	}
	return fmt.Sprintf("SELECT %s FROM read_csv_auto(%s, header=true, all_varchar=true)",
		strings.Join(cols, ", "), quoteLiteral(path))
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ table.Reader = (*Reader)(nil)
