package artifact

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/embedrec/core"
)

// Decode 按 name 的扩展名把 data 反序列化到 v。
func Decode(name string, data []byte, v any) error {
	switch FormatOf(name) {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported artifact format for %q (want .json, .yaml or .yml)", name))
	}
}

// Load 读取并解码制品 name 到 v，任何失败都返回 ARTIFACT_LOAD 错误。
func Load(ctx context.Context, src Source, name string, v any) error {
	data, err := ReadAll(ctx, src, name)
	if err != nil {
		return err
	}
	if err := Decode(name, data, v); err != nil {
		return core.NewArtifactLoadError(core.ModuleArtifact, name, err)
	}
	return nil
}

// Encode 按 name 的扩展名序列化 v，供离线任务写入制品。
func Encode(name string, v any) ([]byte, error) {
	switch FormatOf(name) {
	case FormatJSON:
		return json.Marshal(v)
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported artifact format for %q (want .json, .yaml or .yml)", name))
	}
}
