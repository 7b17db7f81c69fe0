package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message），可选携带底层错误（Err）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Artifact 错误：ARTIFACT_LOAD（文件缺失、损坏、形状不符）
//   - 查找错误：NOT_FOUND（id / 名称 / 编码索引不存在）
//   - 偏好错误：INSUFFICIENT_DATA（用户没有任何评分）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "ARTIFACT_LOAD"）
	Message string // 错误消息
	Module  string // 模块名称（如 "embedding", "catalog"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 输入无效
	ErrorCodeArtifactLoad     = "ARTIFACT_LOAD"     // 制品加载失败
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA" // 数据不足
)

// 模块名称常量
const (
	ModuleStore      = "store"      // 存储模块
	ModuleArtifact   = "artifact"   // 制品读取
	ModuleEmbedding  = "embedding"  // 向量矩阵与索引映射
	ModuleCatalog    = "catalog"    // 物品目录
	ModuleRanker     = "ranker"     // 相似度排序
	ModulePreference = "preference" // 用户偏好
	ModuleAggregate  = "aggregate"  // 推荐聚合
)

// NewArtifactLoadError 表示制品 name 缺失、不可读或无法反序列化为预期形状。
func NewArtifactLoadError(module, name string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeArtifactLoad,
		Message: fmt.Sprintf("%s: load artifact %q", module, name),
		Err:     err,
	}
}

// NewNotFoundError 创建 NOT_FOUND 错误，消息按 format 格式化。
func NewNotFoundError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeNotFound, fmt.Sprintf(format, args...))
}

// NewInsufficientDataError 创建 INSUFFICIENT_DATA 错误。
func NewInsufficientDataError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInsufficientData, fmt.Sprintf(format, args...))
}

// NewInvalidInputError 创建 INVALID_INPUT 错误。
func NewInvalidInputError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsArtifactLoad 检查错误是否为 ARTIFACT_LOAD
func IsArtifactLoad(err error) bool { return hasCode(err, ErrorCodeArtifactLoad) }

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool { return hasCode(err, ErrorCodeInsufficientData) }
