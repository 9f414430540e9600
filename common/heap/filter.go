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

package heap

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Elem is an element with a weight.
type Elem[T any, W constraints.Ordered] struct {
	Value  T
	Weight W
}

// minHeap keeps the element with the minimal weight on top, so that pushing
// into a full TopKFilter evicts the lightest element.
type minHeap[T any, W constraints.Ordered] []Elem[T, W]

func (h minHeap[T, W]) Len() int { return len(h) }

func (h minHeap[T, W]) Less(i, j int) bool { return h[i].Weight < h[j].Weight }

func (h minHeap[T, W]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap[T, W]) Push(x any) {
	*h = append(*h, x.(Elem[T, W]))
}

func (h *minHeap[T, W]) Pop() any {
	old := *h
	n := len(old)
	elem := old[n-1]
	*h = old[:n-1]
	return elem
}

// TopKFilter filters out top k items with maximum weights.
type TopKFilter[T any, W constraints.Ordered] struct {
	h minHeap[T, W]
	k int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T any, W constraints.Ordered](k int) *TopKFilter[T, W] {
	return &TopKFilter[T, W]{k: k}
}

// Len returns the number of elements currently held.
func (filter *TopKFilter[T, W]) Len() int {
	return filter.h.Len()
}

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = filter.Len().
func (filter *TopKFilter[T, W]) Push(item T, weight W) {
	heap.Push(&filter.h, Elem[T, W]{item, weight})
	if filter.h.Len() > filter.k {
		heap.Pop(&filter.h)
	}
}

// PopAll pops all items in the filter with decreasing order.
func (filter *TopKFilter[T, W]) PopAll() ([]T, []W) {
	items := make([]T, filter.h.Len())
	weights := make([]W, filter.h.Len())
	for i := len(items) - 1; i >= 0; i-- {
		elem := heap.Pop(&filter.h).(Elem[T, W])
		items[i], weights[i] = elem.Value, elem.Weight
	}
	return items, weights
}
