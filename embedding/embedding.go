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

// Package embedding defines the interface between next-item models and item
// embedding trainers. Training itself happens outside of this module, either
// ahead of time or through a Trainer implementation plugged in by the caller.
package embedding

import (
	"context"

	"github.com/bits-and-blooms/bitset"
	"github.com/recbench-io/recbench/common/floats"
	"github.com/recbench-io/recbench/common/heap"
)

// TrainConfig carries the hyper-parameters passed to an embedding trainer.
type TrainConfig struct {
	Window           int     // context window size
	SkipGram         bool    // use skip-gram instead of CBOW
	NegativeSamples  int     // number of negative samples
	SamplingExponent float32 // exponent of the negative sampling distribution
	MinCount         int     // minimal occurrence count of an item
	Dimension        int     // dimension of embedding vectors
	Epochs           int     // number of epochs
	Seed             int64   // random seed
}

// Trainer trains item embeddings from item sequences. Sequences hold dense
// item indices, one slice per session, ordered by interaction time.
type Trainer interface {
	Train(ctx context.Context, sequences [][]int32, config TrainConfig) (*Vectors, error)
}

// Vectors holds one embedding vector per item index. Items skipped by the
// trainer, for example below the minimal occurrence count, have no vector.
type Vectors struct {
	Dimension int
	Data      [][]float32
	Known     *bitset.BitSet
}

// NewVectors creates empty vectors for numItems items.
func NewVectors(numItems, dimension int) *Vectors {
	return &Vectors{
		Dimension: dimension,
		Data:      make([][]float32, numItems),
		Known:     bitset.New(uint(numItems)),
	}
}

// Set stores the vector of an item.
func (v *Vectors) Set(itemIndex int32, vector []float32) {
	v.Data[itemIndex] = vector
	v.Known.Set(uint(itemIndex))
}

// Get returns the vector of an item, or nil if the item has no vector.
func (v *Vectors) Get(itemIndex int32) []float32 {
	if !v.Has(itemIndex) {
		return nil
	}
	return v.Data[itemIndex]
}

// Has returns true if the item has a trained vector.
func (v *Vectors) Has(itemIndex int32) bool {
	if itemIndex < 0 || int(itemIndex) >= len(v.Data) {
		return false
	}
	return v.Known.Test(uint(itemIndex))
}

// Count returns the number of items with a trained vector.
func (v *Vectors) Count() int {
	return int(v.Known.Count())
}

// Predict returns the topN items closest to the mean of the known items by
// cosine similarity, most similar first. Input items are not removed from the
// result. ok is false when none of the known items has a vector.
func (v *Vectors) Predict(known []int32, topN int) (items []int32, scores []float32, ok bool) {
	// average the normalized vectors of the session
	mean := make([]float32, v.Dimension)
	contributors := 0
	for _, itemIndex := range known {
		vector := v.Get(itemIndex)
		if vector == nil {
			continue
		}
		norm := floats.Norm(vector)
		if norm == 0 {
			continue
		}
		for i := range mean {
			mean[i] += vector[i] / norm
		}
		contributors++
	}
	if contributors == 0 {
		return nil, nil, false
	}
	floats.MulConst(mean, 1/float32(contributors))
	meanNorm := floats.Norm(mean)
	if meanNorm == 0 {
		return nil, nil, false
	}
	// rank items by cosine similarity
	filter := heap.NewTopKFilter[int32, float32](topN)
	for itemIndex, found := v.Known.NextSet(0); found; itemIndex, found = v.Known.NextSet(itemIndex + 1) {
		vector := v.Data[itemIndex]
		norm := floats.Norm(vector)
		if norm == 0 {
			continue
		}
		similarity := floats.Dot(mean, vector) / meanNorm / norm
		filter.Push(int32(itemIndex), similarity)
	}
	items, scores = filter.PopAll()
	return items, scores, true
}

// PretrainedTrainer yields vectors trained ahead of time, ignoring the
// sequences. Vectors must stay exported for deep copying.
type PretrainedTrainer struct {
	Vectors *Vectors
}

// Pretrained returns a Trainer backed by vectors.
func Pretrained(vectors *Vectors) *PretrainedTrainer {
	return &PretrainedTrainer{Vectors: vectors}
}

func (t *PretrainedTrainer) Train(_ context.Context, _ [][]int32, _ TrainConfig) (*Vectors, error) {
	return t.Vectors, nil
}
