package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"weighthub/domain/shared"
	"weighthub/domain/weight"
	"weighthub/infrastructure/persistence/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWeight(t *testing.T, name string, enable int) *weight.Weight {
	t.Helper()
	w, err := weight.NewWeight(name, "/models/"+name+".onnx", "", enable)
	require.NoError(t, err)
	return w
}

func TestWeightRepositoryAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()

	a := mustWeight(t, "a", 1)
	b := mustWeight(t, "b", 1)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	assert.Equal(t, int64(1), a.ID())
	assert.Equal(t, int64(2), b.ID())
	assert.False(t, a.IsNew())
}

func TestWeightRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	w := mustWeight(t, "yolov5s", 1)
	require.NoError(t, repo.Save(ctx, w))

	loaded, err := repo.FindByID(ctx, w.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Replace("changed", "/m/x.onnx", "", 0))

	again, err := repo.FindByID(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, "yolov5s", again.Name())
}

func TestWeightRepositoryOptimisticLock(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	w := mustWeight(t, "yolov5s", 1)
	require.NoError(t, repo.Save(ctx, w))

	first, _ := repo.FindByID(ctx, w.ID())
	stale, _ := repo.FindByID(ctx, w.ID())

	require.NoError(t, first.Replace("v2", "/m/v2.onnx", "", 1))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 1, first.Version())

	require.NoError(t, stale.Replace("v3", "/m/v3.onnx", "", 1))
	err := repo.Save(ctx, stale)
	assert.True(t, errors.Is(err, weight.ErrConcurrentModification))
}

func TestWeightRepositoryRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	w := mustWeight(t, "yolov5s", 1)
	require.NoError(t, repo.Save(ctx, w))

	require.NoError(t, repo.Remove(ctx, w.ID()))

	_, err := repo.FindByID(ctx, w.ID())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(repo.Remove(ctx, w.ID()), weight.ErrWeightNotFound))
	assert.True(t, errors.Is(repo.Save(ctx, w), weight.ErrWeightNotFound))

	page, _ := shared.NewPageRequest(1, 10)
	_, total, err := repo.FindPage(ctx, nil, page)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWeightRepositoryFindPage(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	for _, w := range []*weight.Weight{
		mustWeight(t, "yolov5s", 1),
		mustWeight(t, "yolov5m", 0),
		mustWeight(t, "sam", 1),
		mustWeight(t, "YOLOv8n", 1),
	} {
		require.NoError(t, repo.Save(ctx, w))
	}

	page, _ := shared.NewPageRequest(1, 2)
	items, total, err := repo.FindPage(ctx, nil, page)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID())
	assert.Equal(t, int64(2), items[1].ID())

	name := "yolo"
	enabled := weight.FlagEnabled
	all, _ := shared.NewPageRequest(1, 10)
	items, total, err = repo.FindPage(ctx, weight.FilterSpecification(&name, &enabled), all)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "yolov5s", items[0].Name())
	assert.Equal(t, "YOLOv8n", items[1].Name())

	far, _ := shared.NewPageRequest(3, 2)
	items, total, err = repo.FindPage(ctx, nil, far)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, items)
}

func TestWeightRepositoryNameFilterFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	require.NoError(t, repo.Save(ctx, mustWeight(t, "ÉCOLE-Net", 1)))
	require.NoError(t, repo.Save(ctx, mustWeight(t, "yolo", 1)))

	page, _ := shared.NewPageRequest(1, 10)
	items, total, err := repo.FindPage(ctx, weight.NewNameContainsSpecification("école"), page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ÉCOLE-Net", items[0].Name())
}

func TestWeightRepositoryFindPageHugeOffset(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()
	require.NoError(t, repo.Save(ctx, mustWeight(t, "yolov5s", 1)))
	require.NoError(t, repo.Save(ctx, mustWeight(t, "sam", 0)))

	_, err := shared.NewPageRequest(300000000000000000, 50)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	last, err := shared.NewPageRequest(math.MaxInt/50+1, 50)
	require.NoError(t, err)
	items, total, err := repo.FindPage(ctx, nil, last)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, items)

	// 零值分页请求不会越界
	items, total, err = repo.FindPage(ctx, nil, shared.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, items)
}

func TestWeightRepositoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewWeightRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := weight.NewWeight("w", "/m/w.onnx", "", 1)
			if err == nil {
				_ = repo.Save(ctx, w)
			}
		}()
	}
	wg.Wait()

	page, _ := shared.NewPageRequest(1, 100)
	items, total, err := repo.FindPage(ctx, nil, page)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
	seen := make(map[int64]bool)
	for _, w := range items {
		assert.False(t, seen[w.ID()])
		seen[w.ID()] = true
	}
}

func TestUnitOfWorkPublishesEventsOnSuccess(t *testing.T) {
	ctx := context.Background()
	bus := shared.NewEventBus()
	var got []string
	require.NoError(t, bus.Subscribe(shared.WildcardEvent, shared.NewFuncHandler("collect", func(e shared.DomainEvent) error {
		got = append(got, e.EventName())
		return nil
	})))
	require.NoError(t, bus.Subscribe(shared.WildcardEvent, NewLoggingHandler()))

	repo := NewWeightRepository()
	uow := NewUnitOfWorkFactory(bus, retry.DefaultConfig).New()

	err := uow.Execute(ctx, func(ctx context.Context) error {
		w, err := weight.NewWeight("sam", "/m/sam.onnx", "", 1)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, w); err != nil {
			return err
		}
		uow.RegisterNew(w)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{weight.EventWeightCreated}, got)
}

func TestUnitOfWorkSkipsEventsOnError(t *testing.T) {
	bus := shared.NewEventBus()
	var got int
	require.NoError(t, bus.Subscribe(shared.WildcardEvent, shared.NewFuncHandler("count", func(shared.DomainEvent) error {
		got++
		return nil
	})))

	uow := NewUnitOfWork(bus, retry.DefaultConfig)
	boom := errors.New("boom")
	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		w := weight.RebuildFromDTO(weight.ReconstructionDTO{ID: 1, Name: "x", LocalPath: "/x", Enable: 1})
		w.MarkRemoved()
		uow.RegisterRemoved(w)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, got)
}

func TestUnitOfWorkRetriesConcurrentModification(t *testing.T) {
	cfg := retry.DefaultConfig
	cfg.InitialDelay = 0
	cfg.MaxDelay = 0
	uow := NewUnitOfWork(nil, cfg)

	attempts := 0
	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return weight.NewConcurrentModificationError(1)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
