package weight

import (
	"context"
	"strings"

	"weighthub/domain/shared"
	"weighthub/domain/weight"
)

// ApplicationService 编排权重的增删改查与文件解析。
// 每次写操作从工厂取新的 UnitOfWork，实例不在请求间共享。
type ApplicationService struct {
	repo        weight.Repository
	uowFactory  shared.UnitOfWorkFactory
	resolver    weight.ArtifactResolver
	maxPageSize int
}

// NewApplicationService maxPageSize <= 0 表示不限制 size
func NewApplicationService(
	repo weight.Repository,
	uowFactory shared.UnitOfWorkFactory,
	resolver weight.ArtifactResolver,
	maxPageSize int,
) *ApplicationService {
	return &ApplicationService{
		repo:        repo,
		uowFactory:  uowFactory,
		resolver:    resolver,
		maxPageSize: maxPageSize,
	}
}

// CreateWeight 返回分配的 id
func (s *ApplicationService) CreateWeight(ctx context.Context, req CreateWeightRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var w *weight.Weight
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		w, err = weight.NewWeight(req.Name, req.LocalPath, req.OnlineURL, req.Enable)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, w); err != nil {
			return err
		}
		uow.RegisterNew(w)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return w.ID(), nil
}

// UpdateWeight 全量替换；乐观锁冲突由 UnitOfWork 重试，每次重试重新加载
func (s *ApplicationService) UpdateWeight(ctx context.Context, req UpdateWeightRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		w, err := s.repo.FindByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := w.Replace(req.Name, req.LocalPath, req.OnlineURL, req.Enable); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, w); err != nil {
			return err
		}
		uow.RegisterDirty(w)
		return nil
	})
}

// GetWeight 不存在或已删除时返回 NotFound
func (s *ApplicationService) GetWeight(ctx context.Context, id int64) (*WeightRecord, error) {
	if id <= 0 {
		return nil, weight.NewInvalidIDError(id)
	}
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := toWeightRecord(w)
	return &record, nil
}

// ListWeights 按 id 升序分页
func (s *ApplicationService) ListWeights(ctx context.Context, req ListWeightRequest) (*ListWeightResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.ValidateSize(s.maxPageSize); err != nil {
		return nil, err
	}

	page, err := shared.NewPageRequest(req.CurrentPage, req.Size)
	if err != nil {
		return nil, err
	}

	var name *string
	if req.Weight != nil {
		trimmed := strings.TrimSpace(*req.Weight)
		name = &trimmed
	}
	var enable *weight.Flag
	if req.Enable != nil {
		flag, err := weight.ParseFlag(*req.Enable)
		if err != nil {
			return nil, err
		}
		enable = &flag
	}

	weights, total, err := s.repo.FindPage(ctx, weight.FilterSpecification(name, enable), page)
	if err != nil {
		return nil, err
	}
	return toListWeightResult(weights, total), nil
}

// DeleteWeight 逻辑删除并产生 weight.deleted 事件
func (s *ApplicationService) DeleteWeight(ctx context.Context, id int64) error {
	if id <= 0 {
		return weight.NewInvalidIDError(id)
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		w, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		w.MarkRemoved()
		if err := s.repo.Remove(ctx, id); err != nil {
			return err
		}
		uow.RegisterRemoved(w)
		return nil
	})
}

// ResolveWeight 只有启用的权重可以解析
func (s *ApplicationService) ResolveWeight(ctx context.Context, id int64) (*ResolveResult, error) {
	if id <= 0 {
		return nil, weight.NewInvalidIDError(id)
	}
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.EnsureEnabled(); err != nil {
		return nil, err
	}
	if s.resolver == nil {
		return nil, weight.NewArtifactUnavailableError(w.Name(), nil)
	}

	a, err := s.resolver.Resolve(ctx, w.Name(), w.LocalPath(), w.OnlineURL())
	if err != nil {
		return nil, err
	}
	return &ResolveResult{
		ID:     w.ID(),
		Name:   w.Name(),
		Path:   a.Path,
		Source: string(a.Source),
	}, nil
}
