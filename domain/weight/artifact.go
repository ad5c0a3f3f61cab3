package weight

import "context"

// ArtifactSource 权重文件的来源
type ArtifactSource string

const (
	SourceLocal    ArtifactSource = "local"
	SourceShards   ArtifactSource = "shards"
	SourceWSL      ArtifactSource = "wsl"
	SourceCache    ArtifactSource = "cache"
	SourceDownload ArtifactSource = "download"
)

// Artifact 解析得到的可加载文件
type Artifact struct {
	Path   string
	Source ArtifactSource
}

// ArtifactResolver 按 本地 → 分片 → WSL → 缓存 → 下载 的顺序定位权重文件，
// 全部失败时返回 ErrArtifactUnavailable
type ArtifactResolver interface {
	Resolve(ctx context.Context, name, localPath, onlineURL string) (Artifact, error)
}
