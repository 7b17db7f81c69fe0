// Package embedding 加载离线训练产出的隐向量矩阵及其 id/行号双向映射。
//
// 一份 Embedding 由三个制品组成：
//   - Matrix：二维实数矩阵，每行是一个实体（物品或用户）的隐向量
//   - Encode：领域 id → 行号
//   - Decode：行号 → 领域 id
//
// Encode 与 Decode 在同一有限域上互为逆映射（双射）。加载时只做反序列化与形状检查，
// 双射一致性由 Check 单独校验。
package embedding

import (
	"context"
	"fmt"

	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/core"
)

// Matrix 是按行编号的稠密向量矩阵。
type Matrix [][]float64

// Dim 返回向量维度，空矩阵返回 0。
func (m Matrix) Dim() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// validate 检查矩阵不是锯齿形状。
func (m Matrix) validate() error {
	dim := m.Dim()
	for i, row := range m {
		if len(row) != dim {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), dim)
		}
	}
	return nil
}

// IndexMap 是领域 id 与矩阵行号之间的双向映射。
type IndexMap struct {
	Encode map[int64]int
	Decode map[int]int64
}

// NewIndexMap 由 id 顺序构造双射：ids[i] 对应第 i 行。
func NewIndexMap(ids []int64) IndexMap {
	m := IndexMap{
		Encode: make(map[int64]int, len(ids)),
		Decode: make(map[int]int64, len(ids)),
	}
	for i, id := range ids {
		m.Encode[id] = i
		m.Decode[i] = id
	}
	return m
}

// EncodeID 返回 id 对应的行号。
func (m IndexMap) EncodeID(id int64) (int, bool) {
	row, ok := m.Encode[id]
	return row, ok
}

// DecodeRow 返回行号对应的 id。
func (m IndexMap) DecodeRow(row int) (int64, bool) {
	id, ok := m.Decode[row]
	return id, ok
}

// Check 校验 Encode/Decode 互为逆映射。
func (m IndexMap) Check() error {
	if len(m.Encode) != len(m.Decode) {
		return fmt.Errorf("encode has %d entries, decode has %d", len(m.Encode), len(m.Decode))
	}
	for id, row := range m.Encode {
		back, ok := m.Decode[row]
		if !ok {
			return fmt.Errorf("row %d of id %d missing from decode", row, id)
		}
		if back != id {
			return fmt.Errorf("id %d encodes to row %d which decodes to %d", id, row, back)
		}
	}
	for row, id := range m.Decode {
		if back, ok := m.Encode[id]; !ok || back != row {
			return fmt.Errorf("row %d decodes to id %d which does not encode back", row, id)
		}
	}
	return nil
}

// Embedding 是加载后的向量矩阵与映射。
type Embedding struct {
	Matrix Matrix
	Index  IndexMap
}

// Rows 返回矩阵行数。
func (e *Embedding) Rows() int { return len(e.Matrix) }

// Row 返回第 i 行向量，越界返回 nil。
func (e *Embedding) Row(i int) []float64 {
	if i < 0 || i >= len(e.Matrix) {
		return nil
	}
	return e.Matrix[i]
}

// Check 校验映射双射，且每个行号都落在矩阵范围内。
func (e *Embedding) Check() error {
	if err := e.Index.Check(); err != nil {
		return err
	}
	for row := range e.Index.Decode {
		if row < 0 || row >= len(e.Matrix) {
			return fmt.Errorf("row %d outside matrix with %d rows", row, len(e.Matrix))
		}
	}
	return nil
}

// Paths 是一份 Embedding 的三个制品名。
type Paths struct {
	Matrix string `koanf:"matrix" validate:"required"`
	Encode string `koanf:"encode" validate:"required"`
	Decode string `koanf:"decode" validate:"required"`
}

// Load 从 src 读取矩阵与映射。任何制品缺失、不可读、无法解码或形状不符都返回 ARTIFACT_LOAD 错误。
func Load(ctx context.Context, src artifact.Source, paths Paths) (*Embedding, error) {
	var matrix Matrix
	if err := artifact.Load(ctx, src, paths.Matrix, &matrix); err != nil {
		return nil, err
	}
	if err := matrix.validate(); err != nil {
		return nil, core.NewArtifactLoadError(core.ModuleEmbedding, paths.Matrix, err)
	}

	var encode map[int64]int
	if err := artifact.Load(ctx, src, paths.Encode, &encode); err != nil {
		return nil, err
	}

	var decode map[int]int64
	if err := artifact.Load(ctx, src, paths.Decode, &decode); err != nil {
		return nil, err
	}

	if encode == nil {
		encode = make(map[int64]int)
	}
	if decode == nil {
		decode = make(map[int]int64)
	}
	return &Embedding{
		Matrix: matrix,
		Index:  IndexMap{Encode: encode, Decode: decode},
	}, nil
}
