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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKFilter(t *testing.T) {
	filter := NewTopKFilter[int32, float32](3)
	for i := 0; i < 10; i++ {
		filter.Push(int32(i), float32(i))
	}
	items, weights := filter.PopAll()
	assert.Equal(t, []int32{9, 8, 7}, items)
	assert.Equal(t, []float32{9, 8, 7}, weights)
	assert.Zero(t, filter.Len())
}

func TestTopKFilter_Underfill(t *testing.T) {
	filter := NewTopKFilter[string, int](10)
	filter.Push("b", 2)
	filter.Push("a", 1)
	filter.Push("c", 3)
	items, weights := filter.PopAll()
	assert.Equal(t, []string{"c", "b", "a"}, items)
	assert.Equal(t, []int{3, 2, 1}, weights)
}

func TestTopKFilter_Empty(t *testing.T) {
	filter := NewTopKFilter[int, float32](5)
	items, weights := filter.PopAll()
	assert.Empty(t, items)
	assert.Empty(t, weights)
}
