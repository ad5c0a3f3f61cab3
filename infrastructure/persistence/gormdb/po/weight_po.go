package po

import (
	"time"

	"weighthub/domain/weight"

	"gorm.io/gorm"
)

// WeightPO weights 表。Enable 不设数据库默认值，否则 GORM 插入时会把 0 替换成默认值
type WeightPO struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Name      string         `gorm:"size:255;not null"`
	NameKey   string         `gorm:"column:name_key;size:255;not null;default:'';index"` // weight.FoldName(Name)
	LocalPath string         `gorm:"size:1024;not null"`
	OnlineURL string         `gorm:"column:online_url;size:2048;not null"`
	Enable    int            `gorm:"not null;index"`
	Version   int            `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (WeightPO) TableName() string {
	return "weights"
}

// FromWeightDomain 聚合 → 持久化对象
func FromWeightDomain(w *weight.Weight) *WeightPO {
	return &WeightPO{
		ID:        w.ID(),
		Name:      w.Name(),
		NameKey:   weight.FoldName(w.Name()),
		LocalPath: w.LocalPath(),
		OnlineURL: w.OnlineURL(),
		Enable:    w.Enable().Int(),
		Version:   w.Version(),
		CreatedAt: w.CreatedAt(),
		UpdatedAt: w.UpdatedAt(),
	}
}

// ToDomain 持久化对象 → 聚合，通过 RebuildFromDTO 重建，不产生事件
func (po *WeightPO) ToDomain() *weight.Weight {
	return weight.RebuildFromDTO(weight.ReconstructionDTO{
		ID:        po.ID,
		Name:      po.Name,
		LocalPath: po.LocalPath,
		OnlineURL: po.OnlineURL,
		Enable:    po.Enable,
		Version:   po.Version,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	})
}
