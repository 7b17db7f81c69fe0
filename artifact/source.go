// Package artifact 负责读取离线训练产出的制品（向量矩阵、编码/解码映射、数据表文件）。
//
// 制品来源可插拔：本地目录、key-value 存储（Redis/内存）、S3 兼容对象存储。
// 解码按文件扩展名选择：.json 使用 goccy/go-json，.yaml/.yml 使用 yaml.v3。
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rushteam/embedrec/core"
)

// Source 是制品来源接口。
type Source interface {
	// Name 返回来源名称（用于日志/监控）
	Name() string

	// Open 打开名为 name 的制品，调用方负责 Close
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileSource 从本地目录读取制品。name 为绝对路径时忽略 Root。
type FileSource struct {
	Root string
}

// NewFileSource 创建本地文件制品来源
func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path(name))
}

// Path 返回 name 对应的本地路径。
func (s *FileSource) Path(name string) string {
	if filepath.IsAbs(name) || s.Root == "" {
		return name
	}
	return filepath.Join(s.Root, name)
}

// StoreSource 从 core.Store 读取制品，实际 key 为 {KeyPrefix}:{name}。
type StoreSource struct {
	store     core.Store
	KeyPrefix string
}

// NewStoreSource 创建基于 core.Store 的制品来源
func NewStoreSource(s core.Store, keyPrefix string) *StoreSource {
	return &StoreSource{store: s, KeyPrefix: keyPrefix}
}

func (s *StoreSource) Name() string { return "store:" + s.store.Name() }

// Key 返回 name 在存储中的 key。
func (s *StoreSource) Key(name string) string {
	if s.KeyPrefix == "" {
		return name
	}
	return s.KeyPrefix + ":" + name
}

func (s *StoreSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, err := s.store.Get(ctx, s.Key(name))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put 写入制品，供离线任务或测试预置数据。
func (s *StoreSource) Put(ctx context.Context, name string, data []byte) error {
	return s.store.Set(ctx, s.Key(name), data)
}

// S3Client S3 兼容协议客户端接口（不直接依赖具体 SDK，支持依赖注入）
// S3 兼容协议支持 AWS S3、阿里云 OSS、腾讯云 COS、MinIO 等
type S3Client interface {
	// GetObject 获取对象内容
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Source 从 S3 兼容存储读取制品，对象 key 为 {Prefix}{name}。
type S3Source struct {
	client S3Client
	bucket string
	Prefix string
}

// NewS3Source 创建 S3 兼容协议制品来源
//
// 用法：
//
//	s3Client := &MyS3Client{...}
//	src := artifact.NewS3Source(s3Client, "my-bucket", "models/v1/")
//	emb, err := embedding.Load(ctx, src, paths)
func NewS3Source(client S3Client, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, Prefix: prefix}
}

func (s *S3Source) Name() string { return "s3:" + s.bucket }

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("S3 客户端未设置")
	}
	return s.client.GetObject(ctx, s.bucket, s.Prefix+name)
}

// ReadAll 读取制品全部内容，失败统一返回 ARTIFACT_LOAD 错误。
func ReadAll(ctx context.Context, src Source, name string) ([]byte, error) {
	if src == nil {
		return nil, core.NewArtifactLoadError(core.ModuleArtifact, name, fmt.Errorf("artifact source is nil"))
	}
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	return data, nil
}

// Format 是制品序列化格式。
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf 根据扩展名判断格式，未知扩展名返回空字符串。
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}
