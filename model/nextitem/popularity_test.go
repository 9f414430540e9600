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
	"testing"

	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
	"github.com/stretchr/testify/assert"
)

func TestPopularity_Fit(t *testing.T) {
	// "z" appears in held-out positions only and must never be ranked.
	data := dataset.NewDataset(2, 3)
	for _, interaction := range [][2]string{
		{"u0", "a"}, {"u0", "b"}, {"u0", "z"},
		{"u1", "a"}, {"u1", "b"},
	} {
		data.AddInteraction(interaction[0], interaction[1])
	}
	trainSet, testSet := data.SplitLeaveLastOut(1)
	pop := NewPopularity(nil)
	score, err := pop.Fit(context.Background(), trainSet, testSet, NewFitConfig())
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1}, pop.Items)
	assert.Equal(t, []float32{2, 1}, pop.Scores)
	assert.Equal(t, 1, pop.MedianLength)
	// u0 sees both ranked items, u1 is recommended its held-out item.
	assert.Equal(t, float32(0.5), score.NDCG)
	assert.Equal(t, float32(0.5), score.HitRate)
	assert.False(t, pop.Invalid())
	pop.Clear()
	assert.True(t, pop.Invalid())
}

func newFittedPopularity(t *testing.T, params model.Params) *Popularity {
	data := dataset.NewDataset(3, 4)
	for _, interaction := range [][2]string{
		{"u0", "a"}, {"u0", "b"}, {"u0", "c"},
		{"u1", "b"}, {"u1", "c"}, {"u1", "d"},
		{"u2", "c"},
	} {
		data.AddInteraction(interaction[0], interaction[1])
	}
	pop := NewPopularity(params)
	_, err := pop.Fit(context.Background(), data, dataset.NewDataset(0, 0), NewFitConfig())
	assert.NoError(t, err)
	// counts: a=1, b=2, c=3, d=1, tie between a and d kept in insertion order
	assert.Equal(t, []int32{2, 1, 0, 3}, pop.Items)
	assert.Equal(t, []float32{3, 2, 1, 1}, pop.Scores)
	assert.Equal(t, 3, pop.MedianLength)
	return pop
}

func TestPopularity_Recommend(t *testing.T) {
	pop := newFittedPopularity(t, nil)
	// empty session
	items, scores := pop.Recommend(nil, 2)
	assert.Equal(t, []int32{2, 1}, items)
	assert.Equal(t, []float32{3, 2}, scores)
	// seen items are skipped
	items, scores = pop.Recommend([]int32{2}, 2)
	assert.Equal(t, []int32{1, 0}, items)
	assert.Equal(t, []float32{2, 1}, scores)
	// fewer than n items remain
	items, scores = pop.Recommend([]int32{2, 1, 0}, 2)
	assert.Equal(t, []int32{3}, items)
	assert.Equal(t, []float32{1}, scores)
	// n = 0
	items, scores = pop.Recommend(nil, 0)
	assert.Empty(t, items)
	assert.Empty(t, scores)
}

func TestPopularity_RecommendCutoff(t *testing.T) {
	// Single item sessions pull the median down to 1, so only the top n+1
	// ranks are candidates and a fully seen prefix exhausts them.
	data := dataset.NewDataset(6, 3)
	for _, interaction := range [][2]string{
		{"u0", "a"}, {"u1", "b"}, {"u2", "a"},
		{"u3", "c"}, {"u4", "a"}, {"u5", "b"},
	} {
		data.AddInteraction(interaction[0], interaction[1])
	}
	pop := NewPopularity(nil)
	_, err := pop.Fit(context.Background(), data, dataset.NewDataset(0, 0), NewFitConfig())
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, pop.Items)
	assert.Equal(t, 1, pop.MedianLength)
	items, scores := pop.Recommend([]int32{0, 1}, 1)
	assert.Empty(t, items)
	assert.Empty(t, scores)
}

func TestPopularity_FilterSeenOff(t *testing.T) {
	pop := newFittedPopularity(t, model.Params{model.FilterSeen: false})
	items, scores := pop.Recommend([]int32{2}, 2)
	assert.Equal(t, []int32{2, 1}, items)
	assert.Equal(t, []float32{3, 2}, scores)
}

func TestPopularity_Clone(t *testing.T) {
	pop := newFittedPopularity(t, model.Params{model.FilterSeen: false})
	clone := Clone(pop).(*Popularity)
	assert.Equal(t, pop.Items, clone.Items)
	assert.Equal(t, pop.Scores, clone.Scores)
	assert.Equal(t, pop.MedianLength, clone.MedianLength)
	// hyper-parameters are re-derived on the clone
	items, _ := clone.Recommend([]int32{2}, 2)
	assert.Equal(t, []int32{2, 1}, items)
	// the clone owns its ranking
	pop.Items[0] = 3
	assert.Equal(t, int32(2), clone.Items[0])
}
