package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"weighthub/domain/shared"
	"weighthub/domain/weight"
)

type weightRecord struct {
	dto     weight.ReconstructionDTO
	deleted bool
}

// WeightRepository 进程内权重仓储，保存字段快照而不是聚合指针
type WeightRepository struct {
	mu      sync.RWMutex
	records map[int64]*weightRecord
	nextID  int64
}

// NewWeightRepository 进程内权重仓储，id 从 1 开始自增
func NewWeightRepository() *WeightRepository {
	return &WeightRepository{
		records: make(map[int64]*weightRecord),
	}
}

func snapshot(w *weight.Weight) weight.ReconstructionDTO {
	return weight.ReconstructionDTO{
		ID:        w.ID(),
		Name:      w.Name(),
		LocalPath: w.LocalPath(),
		OnlineURL: w.OnlineURL(),
		Enable:    w.Enable().Int(),
		Version:   w.Version(),
		CreatedAt: w.CreatedAt(),
		UpdatedAt: w.UpdatedAt(),
	}
}

// Save 保存快照，调用方持有的聚合不会与仓储共享状态
func (r *WeightRepository) Save(ctx context.Context, w *weight.Weight) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if w.IsNew() {
		r.nextID++
		if err := w.AssignID(r.nextID); err != nil {
			r.nextID--
			return err
		}
		r.records[w.ID()] = &weightRecord{dto: snapshot(w)}
		w.ClearNewFlag()
		return nil
	}

	rec, ok := r.records[w.ID()]
	if !ok || rec.deleted {
		return weight.NewWeightNotFoundError(w.ID())
	}
	if rec.dto.Version != w.Version() {
		return weight.NewConcurrentModificationError(w.ID())
	}

	dto := snapshot(w)
	dto.Version = w.Version() + 1
	dto.CreatedAt = rec.dto.CreatedAt
	if dto.UpdatedAt.IsZero() {
		dto.UpdatedAt = time.Now()
	}
	rec.dto = dto
	w.IncrementVersionForSave()
	return nil
}

// FindByID 返回副本，逻辑删除的记录视为不存在
func (r *WeightRepository) FindByID(ctx context.Context, id int64) (*weight.Weight, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok || rec.deleted {
		return nil, weight.NewWeightNotFoundError(id)
	}
	return weight.RebuildFromDTO(rec.dto), nil
}

// FindPage 按 id 升序分页，total 为满足 spec 的全部记录数
func (r *WeightRepository) FindPage(ctx context.Context, spec shared.Specification[*weight.Weight], page shared.PageRequest) ([]*weight.Weight, int64, error) {
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}

	r.mu.RLock()
	matched := make([]*weight.Weight, 0, len(r.records))
	for _, rec := range r.records {
		if rec.deleted {
			continue
		}
		w := weight.RebuildFromDTO(rec.dto)
		if shared.Matches(ctx, spec, w) {
			matched = append(matched, w)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })

	total := int64(len(matched))
	start := page.Offset()
	if start < 0 || start >= len(matched) {
		return []*weight.Weight{}, total, nil
	}
	end := start + page.Size()
	if end > len(matched) || end < start {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Remove 逻辑删除，记录保留但对查询不可见
func (r *WeightRepository) Remove(ctx context.Context, id int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.deleted {
		return weight.NewWeightNotFoundError(id)
	}
	rec.deleted = true
	return nil
}

var _ weight.Repository = (*WeightRepository)(nil)
