/*
Package weight 模型权重子域

Weight 聚合根描述一份模型权重文件的位置：本地路径与在线下载地址，
以及是否启用。标识由持久化层在首次保存时分配，分配后不可变。
*/
package weight

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"weighthub/domain/shared"
)

const (
	MaxNameLength      = 255
	MaxLocalPathLength = 1024
	MaxOnlineURLLength = 2048
)

// Weight 权重聚合根
type Weight struct {
	id        int64
	name      string
	localPath string
	onlineURL string
	enable    Flag
	version   int
	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
	isNew  bool
}

// NewWeight 创建新权重，标识在保存时由仓储分配
func NewWeight(name, localPath, onlineURL string, enable int) (*Weight, error) {
	flag, err := validateFields(name, localPath, onlineURL, enable)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Weight{
		name:      strings.TrimSpace(name),
		localPath: strings.TrimSpace(localPath),
		onlineURL: strings.TrimSpace(onlineURL),
		enable:    flag,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
		isNew:     true,
	}, nil
}

func validateFields(name, localPath, onlineURL string, enable int) (Flag, error) {
	name = strings.TrimSpace(name)
	localPath = strings.TrimSpace(localPath)
	onlineURL = strings.TrimSpace(onlineURL)

	if name == "" {
		return 0, NewInvalidNameError("must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return 0, NewInvalidNameError("must be at most " + strconv.Itoa(MaxNameLength) + " characters")
	}
	if localPath == "" && onlineURL == "" {
		return 0, NewMissingLocationError()
	}
	if len(localPath) > MaxLocalPathLength {
		return 0, NewInvalidLocalPathError("must be at most " + strconv.Itoa(MaxLocalPathLength) + " bytes")
	}
	if onlineURL != "" {
		if len(onlineURL) > MaxOnlineURLLength {
			return 0, NewInvalidOnlineURLError("must be at most " + strconv.Itoa(MaxOnlineURLLength) + " bytes")
		}
		u, err := url.Parse(onlineURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return 0, NewInvalidOnlineURLError("must be an absolute http or https URL")
		}
	}
	return ParseFlag(enable)
}

// Replace 全量替换可变字段
func (w *Weight) Replace(name, localPath, onlineURL string, enable int) error {
	flag, err := validateFields(name, localPath, onlineURL, enable)
	if err != nil {
		return err
	}

	w.name = strings.TrimSpace(name)
	w.localPath = strings.TrimSpace(localPath)
	w.onlineURL = strings.TrimSpace(onlineURL)
	w.enable = flag
	w.updatedAt = time.Now()

	w.recordEvent(NewWeightUpdatedEvent(w))
	return nil
}

// AssignID 由仓储在插入成功后调用，只能调用一次
func (w *Weight) AssignID(id int64) error {
	if id <= 0 {
		return NewInvalidIDError(id)
	}
	if w.id != 0 {
		return NewIDAlreadyAssignedError(w.id)
	}
	w.id = id
	w.recordEvent(NewWeightCreatedEvent(w))
	return nil
}

// MarkRemoved 记录删除事件，实际删除由仓储完成
func (w *Weight) MarkRemoved() {
	w.recordEvent(NewWeightDeletedEvent(w.id, w.name))
}

// EnsureEnabled 禁用的权重不允许被解析和加载
func (w *Weight) EnsureEnabled() error {
	if !w.enable.Enabled() {
		return NewWeightDisabledError(w.id)
	}
	return nil
}

// IncrementVersionForSave 持久化成功后由仓储调用
func (w *Weight) IncrementVersionForSave() {
	w.version++
}

// ClearNewFlag 首次插入后由仓储调用
func (w *Weight) ClearNewFlag() {
	w.isNew = false
}

func (w *Weight) ID() int64            { return w.id }
func (w *Weight) Name() string         { return w.name }
func (w *Weight) LocalPath() string    { return w.localPath }
func (w *Weight) OnlineURL() string    { return w.onlineURL }
func (w *Weight) Enable() Flag         { return w.enable }
func (w *Weight) Version() int         { return w.version }
func (w *Weight) CreatedAt() time.Time { return w.createdAt }
func (w *Weight) UpdatedAt() time.Time { return w.updatedAt }
func (w *Weight) IsNew() bool          { return w.isNew }

// AggregateID 事件与日志使用的字符串标识
func (w *Weight) AggregateID() string {
	return strconv.FormatInt(w.id, 10)
}

// PullEvents 取走并清空未发布的事件
func (w *Weight) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(w.events))
	copy(events, w.events)
	w.events = make([]shared.DomainEvent, 0)
	return events
}

func (w *Weight) recordEvent(event shared.DomainEvent) {
	w.events = append(w.events, event)
}

// ReconstructionDTO 仅供仓储实现从存储重建聚合根
type ReconstructionDTO struct {
	ID        int64
	Name      string
	LocalPath string
	OnlineURL string
	Enable    int
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RebuildFromDTO 仅供仓储实现调用，不做业务校验
func RebuildFromDTO(dto ReconstructionDTO) *Weight {
	return &Weight{
		id:        dto.ID,
		name:      dto.Name,
		localPath: dto.LocalPath,
		onlineURL: dto.OnlineURL,
		enable:    Flag(dto.Enable),
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
		events:    make([]shared.DomainEvent, 0),
	}
}

var _ shared.AggregateRoot = (*Weight)(nil)
