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

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/recbench-io/recbench/common/floats"
	"github.com/recbench-io/recbench/common/parallel"
	"github.com/recbench-io/recbench/dataset"
)

// Metric is used by evaluators in next-item recommendation tasks.
type Metric func(targetSet mapset.Set[int32], rankList []int32) float32

// Evaluate evaluates a model in next-item recommendation tasks. For every
// user with held-out items, the training session is fed to the model and the
// recommendations are scored against the held-out items. Users without
// held-out items are skipped, every other user contributes to the mean, even
// when the model returned nothing for them.
func Evaluate(ctx context.Context, estimator Model, testSet, trainSet *dataset.Dataset, topK, nJobs int, scorers ...Metric) []float32 {
	partSum := make([][]float32, nJobs)
	partCount := make([]float32, nJobs)
	for i := 0; i < nJobs; i++ {
		partSum[i] = make([]float32, len(scorers))
	}
	trainSessions := trainSet.GetSessions()
	testSessions := testSet.GetSessions()
	_ = parallel.Parallel(ctx, len(testSessions), nJobs, func(workerId, userIndex int) error {
		targets := testSessions[userIndex]
		if len(targets) == 0 {
			return nil
		}
		targetSet := mapset.NewThreadUnsafeSet(targets...)
		var session []int32
		if userIndex < len(trainSessions) {
			session = trainSessions[userIndex]
		}
		rankList, _ := estimator.Recommend(session, topK)
		partCount[workerId]++
		for i, metric := range scorers {
			partSum[workerId][i] += metric(targetSet, rankList)
		}
		return nil
	})
	sum := make([]float32, len(scorers))
	for i := 0; i < nJobs; i++ {
		for j := range partSum[i] {
			sum[j] += partSum[i][j]
		}
	}
	count := floats.Sum(partCount)
	if count == 0 {
		return sum
	}
	floats.MulConst(sum, 1/count)
	return sum
}

// NDCG means Normalized Discounted Cumulative Gain.
func NDCG(targetSet mapset.Set[int32], rankList []int32) float32 {
	// IDCG = \sum^{|REL|}_{i=1} \frac {1} {\log_2(i+1)}
	idcg := float32(0)
	for i := 0; i < targetSet.Cardinality() && i < len(rankList); i++ {
		idcg += 1.0 / math32.Log2(float32(i)+2.0)
	}
	if idcg == 0 {
		return 0
	}
	// DCG = \sum^{N}_{i=1} \frac {2^{rel_i}-1} {\log_2(i+1)}
	dcg := float32(0)
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			dcg += 1.0 / math32.Log2(float32(i)+2.0)
		}
	}
	return dcg / idcg
}

// HitRate is 1 when at least one held-out item appears in the rank list.
func HitRate(targetSet mapset.Set[int32], rankList []int32) float32 {
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			return 1
		}
	}
	return 0
}
