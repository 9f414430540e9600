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

// Package floats provides float32 vector arithmetic for embedding scoring.
package floats

import (
	"github.com/chewxy/math32"
)

// Dot computes the dot product of two vectors: \sum_i a_i*b_i
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// AddTo adds two vectors and saves the result in dst: dst = a + b
func AddTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] + b[i]
	}
}

// Add a vector into dst: dst = dst + s
func Add(dst, s []float32) {
	if len(dst) != len(s) {
		panic("floats: slice lengths do not match")
	}
	for i := range dst {
		dst[i] += s[i]
	}
}

// MulConst multiplies a vector with a const: dst = dst * c
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// Norm computes the Euclidean norm of a vector.
func Norm(a []float32) float32 {
	return math32.Sqrt(Dot(a, a))
}

// Sum of a vector.
func Sum(a []float32) float32 {
	var sum float32
	for _, v := range a {
		sum += v
	}
	return sum
}

// Mean of a vector.
func Mean(a []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	var sum float32
	for _, v := range a {
		sum += v
	}
	return sum / float32(len(a))
}

// StdDev returns the sample standard deviation.
func StdDev(a []float32) float32 {
	if len(a) <= 1 {
		return 0
	}
	mean := Mean(a)
	var ss float32
	for _, v := range a {
		diff := v - mean
		ss += diff * diff
	}
	return math32.Sqrt(ss / float32(len(a)-1))
}

// Min of a vector. Panics on an empty slice.
func Min(a []float32) float32 {
	if len(a) == 0 {
		panic("floats: zero length slice")
	}
	ret := a[0]
	for _, v := range a[1:] {
		if v < ret {
			ret = v
		}
	}
	return ret
}

// Max of a vector. Panics on an empty slice.
func Max(a []float32) float32 {
	if len(a) == 0 {
		panic("floats: zero length slice")
	}
	ret := a[0]
	for _, v := range a[1:] {
		if v > ret {
			ret = v
		}
	}
	return ret
}
