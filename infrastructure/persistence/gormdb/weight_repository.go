package gormdb

import (
	"context"
	"errors"
	"fmt"

	"weighthub/domain/shared"
	"weighthub/domain/weight"
	"weighthub/infrastructure/persistence"
	"weighthub/infrastructure/persistence/gormdb/po"
	"weighthub/infrastructure/persistence/specification"

	"gorm.io/gorm"
)

// WeightRepository 基于 GORM 的权重仓储，MySQL 与 SQLite 共用
type WeightRepository struct {
	db         *gorm.DB
	translator *specification.WeightTranslator
}

// NewWeightRepository GORM 实现的权重仓储，MySQL 与 SQLite 共用
func NewWeightRepository(db *gorm.DB) *WeightRepository {
	return &WeightRepository{
		db:         db,
		translator: specification.NewWeightTranslator(),
	}
}

func (r *WeightRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save 新聚合 INSERT 并回填自增 id；已有聚合按 version 做乐观锁 UPDATE
func (r *WeightRepository) Save(ctx context.Context, w *weight.Weight) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, w)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, w)
	})
}

func (r *WeightRepository) saveWithTx(tx *gorm.DB, w *weight.Weight) error {
	weightPO := po.FromWeightDomain(w)

	if w.IsNew() {
		if err := tx.Create(weightPO).Error; err != nil {
			return fmt.Errorf("failed to insert weight: %w", err)
		}
		if err := w.AssignID(weightPO.ID); err != nil {
			return err
		}
		w.ClearNewFlag()
		return nil
	}

	expectedVersion := w.Version()

	// 乐观锁：版本号不匹配时不覆盖并发写入
	result := tx.Model(&po.WeightPO{}).
		Where("id = ? AND version = ?", w.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"name":       weightPO.Name,
			"name_key":   weightPO.NameKey,
			"local_path": weightPO.LocalPath,
			"online_url": weightPO.OnlineURL,
			"enable":     weightPO.Enable,
			"version":    expectedVersion + 1,
			"updated_at": weightPO.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&po.WeightPO{}).Where("id = ?", w.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return weight.NewWeightNotFoundError(w.ID())
		}
		return weight.NewConcurrentModificationError(w.ID())
	}

	w.IncrementVersionForSave()
	return nil
}

// FindByID 已逻辑删除的记录视为不存在
func (r *WeightRepository) FindByID(ctx context.Context, id int64) (*weight.Weight, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var weightPO po.WeightPO
	result := r.getDB(ctx).First(&weightPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, weight.NewWeightNotFoundError(id)
		}
		return nil, result.Error
	}

	return weightPO.ToDomain(), nil
}

// FindPage 按 id 升序返回 page 指定的窗口，total 为满足 spec 的全部记录数。
// spec 为 nil 时不过滤
func (r *WeightRepository) FindPage(ctx context.Context, spec shared.Specification[*weight.Weight], page shared.PageRequest) ([]*weight.Weight, int64, error) {
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}

	scope, ok := r.translator.Translate(spec)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported weight specification %T", spec)
	}

	var total int64
	if err := r.getDB(ctx).Model(&po.WeightPO{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count weights: %w", err)
	}
	offset := page.Offset()
	if total == 0 || offset < 0 || int64(offset) >= total {
		return []*weight.Weight{}, total, nil
	}

	var weightPOs []po.WeightPO
	err := r.getDB(ctx).Model(&po.WeightPO{}).
		Scopes(scope).
		Order("id ASC").
		Offset(offset).
		Limit(page.Size()).
		Find(&weightPOs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list weights: %w", err)
	}

	weights := make([]*weight.Weight, len(weightPOs))
	for i := range weightPOs {
		weights[i] = weightPOs[i].ToDomain()
	}
	return weights, total, nil
}

// Remove 软删除，已删除或不存在的记录返回未找到
func (r *WeightRepository) Remove(ctx context.Context, id int64) error {
	result := r.getDB(ctx).Delete(&po.WeightPO{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return weight.NewWeightNotFoundError(id)
	}
	return nil
}

var _ weight.Repository = (*WeightRepository)(nil)
