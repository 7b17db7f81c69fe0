package filter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/embedrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("entry", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译好的 CEL 条目表达式，可并发复用。
//
// 可用字段：
//   - entry.support_count：支持该物品的相似用户数
//   - entry.item_name / entry.genres / entry.synopsis
//   - entry.genre_list：按逗号拆分并去空白的类型列表
//
// 示例：
//   - `entry.support_count >= 2`
//   - `"Action" in entry.genre_list && !entry.synopsis.contains("sequel")`
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式。空表达式匹配所有条目。
func Compile(expr string) (*Expr, error) {
	e := &Expr{source: strings.TrimSpace(expr)}
	if e.source == "" {
		return e, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(e.source)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewInvalidInputError(core.ModuleAggregate, "compile filter %q: %v", e.source, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, core.NewInvalidInputError(core.ModuleAggregate, "filter %q must return bool, got %s", e.source, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel program: %w", err)
	}
	e.prg = prg
	return e, nil
}

func (e *Expr) Name() string { return "filter.expr" }

// String 返回表达式源码。
func (e *Expr) String() string { return e.source }

// Match 判断条目是否满足表达式。
func (e *Expr) Match(entry core.RecommendationEntry) (bool, error) {
	if e == nil || e.prg == nil {
		return true, nil
	}
	out, _, err := e.prg.Eval(map[string]any{"entry": buildInput(entry)})
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", e.source, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q must return bool, got %T", e.source, out.Value())
	}
	return ok, nil
}

// Apply 返回满足表达式的条目，保持原顺序。
func (e *Expr) Apply(entries []core.RecommendationEntry) ([]core.RecommendationEntry, error) {
	if e == nil || e.prg == nil {
		return entries, nil
	}
	out := make([]core.RecommendationEntry, 0, len(entries))
	for _, entry := range entries {
		ok, err := e.Match(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

// ShouldFilter 不满足表达式的条目被过滤。
func (e *Expr) ShouldFilter(_ context.Context, _ int64, entry core.RecommendationEntry) (bool, error) {
	ok, err := e.Match(entry)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func buildInput(entry core.RecommendationEntry) map[string]any {
	return map[string]any{
		"support_count": int64(entry.SupportCount),
		"item_name":     entry.ItemName,
		"genres":        entry.Genres,
		"synopsis":      entry.Synopsis,
		"genre_list":    SplitGenres(entry.Genres),
	}
}

// SplitGenres 把 "Action, Drama" 拆成 ["Action", "Drama"]，去掉空项。
func SplitGenres(genres string) []string {
	parts := strings.Split(genres, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	_ Filter = (*Expr)(nil)
	_ Filter = Chain(nil)
	_ Filter = (*BlacklistFilter)(nil)
	_ Filter = (*UserBlockFilter)(nil)
)
