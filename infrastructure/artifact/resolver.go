package artifact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"weighthub/config"
	"weighthub/domain/weight"
	"weighthub/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultDownloadTimeout = 30 * time.Minute
	flowsDir               = "flows"
)

var windowsPathPattern = regexp.MustCompile(`^[a-zA-Z]:\\`)

// Resolver 定位权重文件，下载结果缓存在 <cache_dir>/flows/<name>/ 下
type Resolver struct {
	cacheDir        string
	downloadTimeout time.Duration
	allowDownload   bool
	client          *http.Client
	downloads       *prometheus.CounterVec
}

type Option func(*Resolver)

// WithHTTPClient 替换下载使用的 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithRegisterer 注册 weight_artifact_resolutions_total{source}
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Resolver) {
		r.downloads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weight_artifact_resolutions_total",
			Help: "Weight file resolutions by source.",
		}, []string{"source"})
		reg.MustRegister(r.downloads)
	}
}

// NewResolver DownloadTimeout 未配置时使用 30 分钟
func NewResolver(cfg config.ArtifactConfig, opts ...Option) *Resolver {
	r := &Resolver{
		cacheDir:        cfg.CacheDir,
		downloadTimeout: cfg.DownloadTimeout,
		allowDownload:   cfg.AllowDownload,
		client:          http.DefaultClient,
	}
	if r.downloadTimeout <= 0 {
		r.downloadTimeout = defaultDownloadTimeout
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 依次尝试本地文件、分片清单、WSL 路径、缓存，最后下载 onlineURL
func (r *Resolver) Resolve(ctx context.Context, name, localPath, onlineURL string) (weight.Artifact, error) {
	a, err := r.resolve(ctx, name, strings.TrimSpace(localPath), strings.TrimSpace(onlineURL))
	if err != nil {
		r.observe("unavailable")
		return weight.Artifact{}, err
	}
	r.observe(string(a.Source))
	logger.FromContext(ctx).Info("Weight file resolved",
		zap.String("name", name),
		zap.String("path", a.Path),
		zap.String("source", string(a.Source)),
	)
	return a, nil
}

func (r *Resolver) resolve(ctx context.Context, name, localPath, onlineURL string) (weight.Artifact, error) {
	log := logger.FromContext(ctx)

	if localPath != "" {
		if fileExists(localPath) {
			return weight.Artifact{Path: localPath, Source: weight.SourceLocal}, nil
		}
		if CheckShards(localPath) {
			return weight.Artifact{Path: localPath, Source: weight.SourceShards}, nil
		}
		if wsl, ok := ToWSLPath(localPath); ok {
			if fileExists(wsl) || CheckShards(wsl) {
				return weight.Artifact{Path: wsl, Source: weight.SourceWSL}, nil
			}
		}
		if cached := r.cachePath(name, baseName(localPath)); cached != "" && cacheHit(cached) {
			return weight.Artifact{Path: cached, Source: weight.SourceCache}, nil
		}
		log.Warn("Weight local path not found", zap.String("name", name), zap.String("local_path", localPath))
	}

	if onlineURL == "" {
		return weight.Artifact{}, weight.NewArtifactUnavailableError(name, fmt.Errorf("local path %q not found and no online url", localPath))
	}

	filename, err := filenameFromURL(onlineURL)
	if err != nil {
		return weight.Artifact{}, weight.NewArtifactUnavailableError(name, err)
	}
	target := r.cachePath(name, filename)
	if target == "" {
		return weight.Artifact{}, weight.NewArtifactUnavailableError(name, fmt.Errorf("cache dir is not configured"))
	}
	if cacheHit(target) {
		return weight.Artifact{Path: target, Source: weight.SourceCache}, nil
	}
	if !r.allowDownload {
		return weight.Artifact{}, weight.NewArtifactUnavailableError(name, fmt.Errorf("download disabled and %s not cached", filename))
	}

	if err := r.download(ctx, onlineURL, target); err != nil {
		return weight.Artifact{}, weight.NewArtifactUnavailableError(name, err)
	}
	return weight.Artifact{Path: target, Source: weight.SourceDownload}, nil
}

func (r *Resolver) observe(source string) {
	if r.downloads != nil {
		r.downloads.WithLabelValues(source).Inc()
	}
}

// cachePath name 作为目录名，路径分隔符会被替换。
// 结果必须直接位于 <cache_dir>/flows/<name>/ 下，否则返回空串
func (r *Resolver) cachePath(name, filename string) string {
	if r.cacheDir == "" || !validFilename(filename) {
		return ""
	}
	dir := filepath.Join(r.cacheDir, flowsDir, safeSegment(name))
	target := filepath.Join(dir, filename)
	if filepath.Dir(target) != dir {
		return ""
	}
	return target
}

// validFilename 拒绝空串、. 、.. 以及带分隔符的名字
func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// ToWSLPath C:\models\a.onnx → /mnt/c/models/a.onnx
func ToWSLPath(p string) (string, bool) {
	if !windowsPathPattern.MatchString(p) {
		return "", false
	}
	drive := strings.ToLower(p[:1])
	return "/mnt/" + drive + strings.ReplaceAll(p[2:], `\`, "/"), true
}

// Ellipsize 超过 40 个字符的 URL 只保留首尾各 20 个字符
func Ellipsize(u string) string {
	if len(u) <= 40 {
		return u
	}
	return u[:20] + "..." + u[len(u)-20:]
}

func filenameFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid online url: %w", err)
	}
	name := path.Base(u.Path)
	if !validFilename(name) {
		return "", fmt.Errorf("online url %s has no file name", Ellipsize(raw))
	}
	return name, nil
}

// baseName 同时识别 / 与 \ 分隔符
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	return p
}

func safeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// cacheHit 空文件视为中断的下载
func cacheHit(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

var _ weight.ArtifactResolver = (*Resolver)(nil)
