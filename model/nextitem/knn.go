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
	"sync"
	"time"

	"github.com/c-bata/goptuna"
	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/common/heap"
	"github.com/recbench-io/recbench/common/parallel"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"modernc.org/sortutil"
)

// ItemKNN scores candidates by their similarity to the items of the session.
// Item-item similarity is computed from co-occurrence across users.
//
// Hyper-parameters:
//
//	Similarity - The similarity function, "cosine" or "dot". Default is "cosine".
type ItemKNN struct {
	BaseNextItemModel
	similarity string
	Similarity []ConcurrentMap
}

// NewItemKNN creates an item-to-item nearest neighbor model.
func NewItemKNN(params model.Params) *ItemKNN {
	knn := new(ItemKNN)
	knn.SetParams(params)
	return knn
}

func (knn *ItemKNN) SetParams(params model.Params) {
	knn.BaseNextItemModel.SetParams(params)
	knn.similarity = params.GetString(model.Similarity, model.SimilarityCosine)
}

func (knn *ItemKNN) GetParamsGrid(_ bool) model.ParamsGrid {
	return model.ParamsGrid{
		model.Similarity: []interface{}{model.SimilarityCosine, model.SimilarityDot},
	}
}

func (knn *ItemKNN) SuggestParams(trial goptuna.Trial) model.Params {
	return model.Params{
		model.Similarity: lo.Must(trial.SuggestCategorical(string(model.Similarity), []string{model.SimilarityCosine, model.SimilarityDot})),
	}
}

func (knn *ItemKNN) Clear() {
	knn.UserDict = nil
	knn.ItemDict = nil
	knn.Similarity = nil
}

func (knn *ItemKNN) Invalid() bool {
	return knn == nil || knn.ItemDict == nil || knn.Similarity == nil
}

// Fit computes pairwise item similarities over the training set.
func (knn *ItemKNN) Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) (Score, error) {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit knn",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()),
		zap.Any("params", knn.GetParams()),
		zap.Any("config", config))
	knn.Init(trainSet)
	knn.Similarity = make([]ConcurrentMap, trainSet.CountItems())
	for i := range knn.Similarity {
		knn.Similarity[i] = NewConcurrentMap()
	}
	// sort user lists so that co-occurrence is a sorted merge
	itemUsers := trainSet.GetItemUsers()
	for _, users := range itemUsers {
		sort.Sort(sortutil.Int32Slice(users))
	}
	sessions := trainSet.GetSessions()
	// execute plan
	var items []int32
	var sparseDataset bool
	if trainSet.Count() > 0 &&
		trainSet.Count()*trainSet.Count()/trainSet.CountUsers()/trainSet.CountItems() > trainSet.CountItems() {
		sparseDataset = false
		items = make([]int32, trainSet.CountItems())
		for i := range items {
			items[i] = int32(i)
		}
	} else {
		sparseDataset = true
	}
	fitStart := time.Now()
	_ = parallel.Parallel(ctx, trainSet.CountItems(), config.Jobs, func(_, itemIndex int) error {
		// compute similarity
		var neighbors []int32
		if sparseDataset {
			neighborSet := mapset.NewThreadUnsafeSet[int32]()
			for _, userIndex := range itemUsers[itemIndex] {
				neighborSet.Append(sessions[userIndex]...)
			}
			neighbors = neighborSet.ToSlice()
		} else {
			neighbors = items
		}
		for _, neighborIndex := range neighbors {
			if int(neighborIndex) < itemIndex {
				var similarity float32
				switch knn.similarity {
				case model.SimilarityCosine:
					similarity = coOccurrence(itemUsers[itemIndex], itemUsers[neighborIndex])
					if similarity != 0 {
						similarity /= math32.Sqrt(float32(len(itemUsers[itemIndex])))
						similarity /= math32.Sqrt(float32(len(itemUsers[neighborIndex])))
					}
				case model.SimilarityDot:
					similarity = coOccurrence(itemUsers[itemIndex], itemUsers[neighborIndex])
				default:
					panic("invalid similarity")
				}
				if similarity != 0 {
					knn.Similarity[itemIndex].Set(neighborIndex, similarity)
					knn.Similarity[neighborIndex].Set(int32(itemIndex), similarity)
				}
			}
		}
		return nil
	})
	fitTime := time.Since(fitStart)
	evalStart := time.Now()
	scores := Evaluate(ctx, knn, testSet, trainSet, config.TopK, config.Jobs, NDCG, HitRate)
	evalTime := time.Since(evalStart)
	log.Logger().Info("fit knn complete",
		zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
		zap.Float32(fmt.Sprintf("HitRate@%v", config.TopK), scores[1]),
		zap.String("fit_time", fitTime.String()),
		zap.String("eval_time", evalTime.String()))
	return Score{NDCG: scores[0], HitRate: scores[1]}, nil
}

// Recommend sums the similarities between each candidate and the session
// items. Session items are never recommended again.
func (knn *ItemKNN) Recommend(session []int32, n int) ([]int32, []float32) {
	if knn.Invalid() || n <= 0 {
		return nil, nil
	}
	seen := mapset.NewThreadUnsafeSet(session...)
	sum := make(map[int32]float32)
	for _, supportIndex := range session {
		if supportIndex < 0 || int(supportIndex) >= len(knn.Similarity) {
			continue
		}
		knn.Similarity[supportIndex].Range(func(itemIndex int32, similarity float32) {
			if !seen.Contains(itemIndex) {
				sum[itemIndex] += similarity
			}
		})
	}
	filter := heap.NewTopKFilter[int32, float32](n)
	for itemIndex, score := range sum {
		filter.Push(itemIndex, score)
	}
	return filter.PopAll()
}

// coOccurrence counts common values of two sorted slices.
func coOccurrence(a, b []int32) float32 {
	i, j, sum := 0, 0, float32(0)
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			sum += 1
			i++
			j++
		} else if a[i] < b[j] {
			i++
		} else if a[i] > b[j] {
			j++
		}
	}
	return sum
}

type ConcurrentMap struct {
	Map   map[int32]float32
	mutex sync.RWMutex
}

func NewConcurrentMap() ConcurrentMap {
	return ConcurrentMap{
		Map: make(map[int32]float32),
	}
}

func (m *ConcurrentMap) Set(i int32, v float32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Map[i] = v
}

func (m *ConcurrentMap) Get(i int32) float32 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if v, ok := m.Map[i]; ok {
		return v
	}
	return 0
}

func (m *ConcurrentMap) Range(f func(i int32, v float32)) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for i, v := range m.Map {
		f(i, v)
	}
}
