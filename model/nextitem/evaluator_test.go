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
	"testing"

	"github.com/c-bata/goptuna"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
	"github.com/stretchr/testify/assert"
)

const evalEpsilon = 0.00001

func TestNDCG(t *testing.T) {
	targetSet := mapset.NewSet[int32](1, 3, 5, 7)
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.InDelta(t, 0.6766372989, NDCG(targetSet, rankList), evalEpsilon)
	// The ideal rank never exceeds the rank list length.
	assert.InDelta(t, 1.0, NDCG(mapset.NewSet[int32](4, 5, 6), []int32{4}), evalEpsilon)
	assert.InDelta(t, 0.6131471928, NDCG(mapset.NewSet[int32](1, 3), []int32{1, 2}), evalEpsilon)
	assert.Zero(t, NDCG(mapset.NewSet[int32](), rankList))
	assert.Zero(t, NDCG(mapset.NewSet[int32](1), nil))
}

func TestHitRate(t *testing.T) {
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, float32(1), HitRate(mapset.NewSet[int32](3, 30), rankList))
	assert.Equal(t, float32(0), HitRate(mapset.NewSet[int32](30), rankList))
	assert.Equal(t, float32(0), HitRate(mapset.NewSet[int32](3), nil))
}

type mockEstimatorForEval struct {
	BaseNextItemModel
	recommendations map[string][]int32
}

func (m *mockEstimatorForEval) Fit(_ context.Context, _, _ *dataset.Dataset, _ *FitConfig) (Score, error) {
	panic("don't call me")
}

func (m *mockEstimatorForEval) GetParamsGrid(_ bool) model.ParamsGrid {
	panic("don't call me")
}

func (m *mockEstimatorForEval) SuggestParams(_ goptuna.Trial) model.Params {
	panic("don't call me")
}

func (m *mockEstimatorForEval) Clear() {
	// do nothing
}

func (m *mockEstimatorForEval) Invalid() bool {
	panic("don't call me")
}

func (m *mockEstimatorForEval) Recommend(session []int32, n int) ([]int32, []float32) {
	items := m.recommendations[fmt.Sprint(session)]
	if len(items) > n {
		items = items[:n]
	}
	return items, make([]float32, len(items))
}

func TestEvaluate(t *testing.T) {
	// create dataset
	data := dataset.NewDataset(3, 6)
	for _, interaction := range [][2]string{
		{"u0", "a"}, {"u0", "b"}, {"u0", "c"}, {"u0", "d"},
		{"u1", "c"}, {"u1", "e"}, {"u1", "a"},
		{"u2", "f"},
	} {
		data.AddInteraction(interaction[0], interaction[1])
	}
	trainSet, testSet := data.SplitLeaveLastOut(2)
	// create model
	m := &mockEstimatorForEval{recommendations: map[string][]int32{
		"[0 1]": {2, 9}, // hit c at the first rank, miss d
		"[2]":   {9, 8}, // miss e and a
		"[]":    {5, 0}, // hit f at the first rank
	}}
	// evaluate model
	s := Evaluate(context.Background(), m, testSet, trainSet, 2, 4, NDCG, HitRate)
	assert.Len(t, s, 2)
	assert.InDelta(t, (0.6131471928+0+1)/3, s[0], evalEpsilon)
	assert.InDelta(t, 2.0/3.0, s[1], evalEpsilon)
}

func TestEvaluateEmptyTestSet(t *testing.T) {
	data := dataset.NewDataset(1, 1)
	data.AddInteraction("u0", "a")
	trainSet, testSet := data.SplitLeaveLastOut(0)
	m := &mockEstimatorForEval{recommendations: map[string][]int32{}}
	s := Evaluate(context.Background(), m, testSet, trainSet, 2, 4, NDCG, HitRate)
	assert.Equal(t, []float32{0, 0}, s)
}
