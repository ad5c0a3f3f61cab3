package weight

import "weighthub/domain/weight"

func toWeightRecord(w *weight.Weight) WeightRecord {
	return WeightRecord{
		ID:        w.ID(),
		Name:      w.Name(),
		LocalPath: w.LocalPath(),
		OnlineURL: w.OnlineURL(),
		Enable:    w.Enable().Int(),
	}
}

func toListWeightResult(weights []*weight.Weight, total int64) *ListWeightResult {
	list := make([]WeightRecord, len(weights))
	for i, w := range weights {
		list[i] = toWeightRecord(w)
	}
	return &ListWeightResult{List: list, Total: total}
}
