// Copyright 2025 recbench Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nextitem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/c-bata/goptuna"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"modernc.org/mathutil"
)

// Popularity recommends the globally most popular items of the training set.
// Recommendation lists are oversized by the median training session length
// before seen items are removed, so that filtered lists still reach n items
// for a typical session.
//
// Hyper-parameters:
//
//	FilterSeen - Remove items already seen in the session. Default is true.
type Popularity struct {
	BaseNextItemModel
	Items        []int32   // item indices, most popular first
	Scores       []float32 // interaction counts aligned with Items
	MedianLength int       // median training session length
	filterSeen   bool
}

// NewPopularity creates a popularity model.
func NewPopularity(params model.Params) *Popularity {
	pop := new(Popularity)
	pop.SetParams(params)
	return pop
}

// SetParams sets hyper-parameters of the popularity model.
func (pop *Popularity) SetParams(params model.Params) {
	pop.BaseNextItemModel.SetParams(params)
	pop.filterSeen = pop.Params.GetBool(model.FilterSeen, true)
}

func (pop *Popularity) GetParamsGrid(_ bool) model.ParamsGrid {
	return model.ParamsGrid{
		model.FilterSeen: []interface{}{true, false},
	}
}

func (pop *Popularity) SuggestParams(trial goptuna.Trial) model.Params {
	return model.Params{
		model.FilterSeen: lo.Must(trial.SuggestCategorical(string(model.FilterSeen), []string{"true", "false"})) == "true",
	}
}

func (pop *Popularity) Clear() {
	pop.UserDict = nil
	pop.ItemDict = nil
	pop.Items = nil
	pop.Scores = nil
	pop.MedianLength = 0
}

func (pop *Popularity) Invalid() bool {
	return pop == nil || pop.ItemDict == nil || pop.Items == nil
}

// Fit the popularity model by counting training interactions per item. Items
// are ordered by count, ties resolved by first appearance in the data.
func (pop *Popularity) Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) (Score, error) {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit popularity",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()),
		zap.Any("params", pop.GetParams()),
		zap.Any("config", config))
	pop.Init(trainSet)
	fitStart := time.Now()
	counts := make([]int, trainSet.CountItems())
	for _, session := range trainSet.GetSessions() {
		for _, itemIndex := range session {
			counts[itemIndex]++
		}
	}
	items := make([]int32, 0, len(counts))
	for itemIndex, count := range counts {
		if count > 0 {
			items = append(items, int32(itemIndex))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if counts[items[i]] != counts[items[j]] {
			return counts[items[i]] > counts[items[j]]
		}
		return items[i] < items[j]
	})
	pop.Items = items
	pop.Scores = make([]float32, len(items))
	for i, itemIndex := range items {
		pop.Scores[i] = float32(counts[itemIndex])
	}
	pop.MedianLength = trainSet.MedianSessionLength()
	fitTime := time.Since(fitStart)
	evalStart := time.Now()
	scores := Evaluate(ctx, pop, testSet, trainSet, config.TopK, config.Jobs, NDCG, HitRate)
	evalTime := time.Since(evalStart)
	log.Logger().Info("fit popularity complete",
		zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
		zap.Float32(fmt.Sprintf("HitRate@%v", config.TopK), scores[1]),
		zap.String("fit_time", fitTime.String()),
		zap.String("eval_time", evalTime.String()))
	return Score{NDCG: scores[0], HitRate: scores[1]}, nil
}

// Recommend the most popular items. With FilterSeen on, the top
// n+MedianLength items are considered and session items are dropped.
func (pop *Popularity) Recommend(session []int32, n int) ([]int32, []float32) {
	if n <= 0 || len(pop.Items) == 0 {
		return nil, nil
	}
	if !pop.filterSeen {
		limit := mathutil.Min(n, len(pop.Items))
		return pop.Items[:limit], pop.Scores[:limit]
	}
	seen := mapset.NewThreadUnsafeSet(session...)
	limit := mathutil.Min(n+pop.MedianLength, len(pop.Items))
	items := make([]int32, 0, n)
	scores := make([]float32, 0, n)
	for i := 0; i < limit && len(items) < n; i++ {
		if seen.Contains(pop.Items[i]) {
			continue
		}
		items = append(items, pop.Items[i])
		scores = append(scores, pop.Scores[i])
	}
	return items, scores
}
