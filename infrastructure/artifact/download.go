package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"weighthub/pkg/logger"

	"go.uber.org/zap"
)

// download 先写入同目录临时文件再 rename，中断时不会留下半截文件
func (r *Resolver) download(ctx context.Context, rawURL, target string) error {
	ctx, cancel := context.WithTimeout(ctx, r.downloadTimeout)
	defer cancel()

	log := logger.FromContext(ctx)
	short := Ellipsize(rawURL)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	log.Info("Downloading weight file", zap.String("url", short), zap.String("target", target))
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", short, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %d", short, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// rename 成功后临时文件已不存在
		_ = os.Remove(tmpName)
	}()

	pw := &progressWriter{total: resp.ContentLength, report: func(percent int) {
		log.Info("Downloading weight file", zap.String("url", short), zap.Int("percent", percent))
	}}
	n, err := io.Copy(io.MultiWriter(tmp, pw), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", short, err)
	}
	if n == 0 {
		return fmt.Errorf("download %s: empty body", short)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return fmt.Errorf("download %s: got %d of %d bytes", short, n, resp.ContentLength)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("move downloaded file: %w", err)
	}
	log.Info("Weight file downloaded", zap.String("url", short), zap.Int64("bytes", n))
	return nil
}

// progressWriter 每跨过一个 10% 刻度回调一次，总长度未知时不回调
type progressWriter struct {
	total   int64
	written int64
	last    int
	report  func(percent int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		step := int(p.written*100/p.total) / 10
		if step > p.last {
			p.last = step
			p.report(step * 10)
		}
	}
	return len(b), nil
}
