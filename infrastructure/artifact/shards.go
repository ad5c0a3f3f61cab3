package artifact

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"weighthub/pkg/logger"

	"go.uber.org/zap"
)

type shard struct {
	filename string
	size     int64
}

// CheckShards 读取 modelPath 所在目录下所有 *.csv 清单（filename,filesize 两列），
// 以模型文件名（去扩展名）为前缀的分片必须全部存在且大小一致
func CheckShards(modelPath string) bool {
	dir := filepath.Dir(modelPath)
	base := baseName(modelPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		return false
	}

	manifests, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(manifests) == 0 {
		return false
	}

	var shards []shard
	for _, m := range manifests {
		entries, err := readManifest(m)
		if err != nil {
			logger.Warn("Invalid shard manifest", zap.String("manifest", m), zap.Error(err))
			return false
		}
		for _, e := range entries {
			if strings.HasPrefix(e.filename, base) {
				shards = append(shards, e)
			}
		}
	}
	if len(shards) == 0 {
		return false
	}

	ok := true
	for _, s := range shards {
		info, err := os.Stat(filepath.Join(dir, s.filename))
		if err != nil {
			logger.Debug("Shard missing", zap.String("file", s.filename))
			ok = false
			continue
		}
		if info.Size() != s.size {
			logger.Debug("Shard size mismatch",
				zap.String("file", s.filename),
				zap.Int64("expected", s.size),
				zap.Int64("actual", info.Size()),
			)
			ok = false
		}
	}
	return ok
}

func readManifest(p string) ([]shard, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	nameCol, sizeCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "filename":
			nameCol = i
		case "filesize":
			sizeCol = i
		}
	}
	if nameCol < 0 || sizeCol < 0 {
		return nil, errors.New("manifest must have filename and filesize columns")
	}

	var shards []shard
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(strings.TrimSpace(row[sizeCol]), 10, 64)
		if err != nil {
			return nil, err
		}
		shards = append(shards, shard{filename: strings.TrimSpace(row[nameCol]), size: size})
	}
	return shards, nil
}
