package gormdb

import (
	"fmt"

	"weighthub/domain/weight"
	"weighthub/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// AutoMigrate 创建或更新 weights 与 outbox_events 表，并补齐旧数据的 name_key
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&po.WeightPO{}, &po.OutboxEventPO{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := backfillNameKeys(db); err != nil {
		return fmt.Errorf("backfill name_key failed: %w", err)
	}
	return nil
}

// backfillNameKeys name_key 在应用侧计算，不能用 SQL 的 LOWER 补齐
func backfillNameKeys(db *gorm.DB) error {
	var rows []po.WeightPO
	err := db.Unscoped().Select("id", "name").Where("name_key = ?", "").Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		err := db.Unscoped().Model(&po.WeightPO{}).
			Where("id = ?", row.ID).
			UpdateColumn("name_key", weight.FoldName(row.Name)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
