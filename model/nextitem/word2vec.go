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
	"time"

	"github.com/c-bata/goptuna"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/base/progress"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/embedding"
	"github.com/recbench-io/recbench/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Word2Vec ranks candidates by the similarity of their embedding vector to
// the mean embedding of the session. Vectors come from a pluggable trainer,
// either trained on the training sessions or loaded from a previous run.
//
// Hyper-parameters:
//
//	Window           - The context window size. Default is 5.
//	SkipGram         - Use skip-gram instead of CBOW. Default is true.
//	NegativeSamples  - The number of negative samples. Default is 5.
//	SamplingExponent - The exponent of the negative sampling distribution. Default is 0.75.
//	MinCount         - The minimal occurrence count of an item. Default is 1.
//	NFactors         - The dimension of embedding vectors. Default is 100.
//	NEpochs          - The number of epochs. Default is 5.
type Word2Vec struct {
	BaseNextItemModel
	Trainer embedding.Trainer
	Vectors *embedding.Vectors
	// Hyper parameters
	window           int
	skipGram         bool
	negativeSamples  int
	samplingExponent float32
	minCount         int
	nFactors         int
	nEpochs          int
}

// NewWord2Vec creates a word2vec model backed by trainer.
func NewWord2Vec(trainer embedding.Trainer, params model.Params) *Word2Vec {
	w := new(Word2Vec)
	w.Trainer = trainer
	w.SetParams(params)
	return w
}

// SetParams sets hyper-parameters of the word2vec model.
func (w *Word2Vec) SetParams(params model.Params) {
	w.BaseNextItemModel.SetParams(params)
	w.window = w.Params.GetInt(model.Window, 5)
	w.skipGram = w.Params.GetBool(model.SkipGram, true)
	w.negativeSamples = w.Params.GetInt(model.NegativeSamples, 5)
	w.samplingExponent = w.Params.GetFloat32(model.SamplingExponent, 0.75)
	w.minCount = w.Params.GetInt(model.MinCount, 1)
	w.nFactors = w.Params.GetInt(model.NFactors, 100)
	w.nEpochs = w.Params.GetInt(model.NEpochs, 5)
}

func (w *Word2Vec) GetParamsGrid(withSize bool) model.ParamsGrid {
	return model.ParamsGrid{
		model.Window:           []interface{}{1, 3, 5, 10},
		model.SkipGram:         []interface{}{true, false},
		model.NegativeSamples:  []interface{}{5, 10, 20},
		model.SamplingExponent: []interface{}{-0.5, 0.0, 0.5, 0.75, 1.0},
		model.MinCount:         []interface{}{1, 3, 5},
		model.NFactors:         lo.If(withSize, []interface{}{32, 64, 128}).Else([]interface{}{100}),
	}
}

func (w *Word2Vec) SuggestParams(trial goptuna.Trial) model.Params {
	return model.Params{
		model.Window:           lo.Must(trial.SuggestInt(string(model.Window), 1, 10)),
		model.SkipGram:         lo.Must(trial.SuggestCategorical(string(model.SkipGram), []string{"true", "false"})) == "true",
		model.NegativeSamples:  lo.Must(trial.SuggestInt(string(model.NegativeSamples), 1, 20)),
		model.SamplingExponent: lo.Must(trial.SuggestDiscreteFloat(string(model.SamplingExponent), -1, 1, 0.25)),
		model.MinCount:         lo.Must(trial.SuggestInt(string(model.MinCount), 1, 5)),
	}
}

func (w *Word2Vec) Clear() {
	w.UserDict = nil
	w.ItemDict = nil
	w.Vectors = nil
}

func (w *Word2Vec) Invalid() bool {
	return w == nil || w.ItemDict == nil || w.Vectors == nil
}

// Fit trains item embeddings on the training sessions through the trainer,
// then evaluates the model on the test set.
func (w *Word2Vec) Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) (Score, error) {
	config = config.LoadDefaultIfNil()
	if w.Trainer == nil {
		return Score{}, errors.NotAssignedf("embedding trainer")
	}
	log.Logger().Info("fit word2vec",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()),
		zap.Any("params", w.GetParams()),
		zap.Any("config", config))
	w.Init(trainSet)
	trainConfig := embedding.TrainConfig{
		Window:           w.window,
		SkipGram:         w.skipGram,
		NegativeSamples:  w.negativeSamples,
		SamplingExponent: w.samplingExponent,
		MinCount:         w.minCount,
		Dimension:        w.nFactors,
		Epochs:           w.nEpochs,
		Seed:             w.Params.GetInt64(model.RandomState, 0),
	}
	fitStart := time.Now()
	newCtx, span := progress.Start(ctx, "Word2Vec.Fit", w.nEpochs)
	vectors, err := w.Trainer.Train(newCtx, trainSet.GetSessions(), trainConfig)
	if err != nil {
		span.Fail(err)
		return Score{}, errors.Trace(err)
	}
	w.Vectors = vectors
	span.End()
	fitTime := time.Since(fitStart)
	evalStart := time.Now()
	scores := Evaluate(ctx, w, testSet, trainSet, config.TopK, config.Jobs, NDCG, HitRate)
	evalTime := time.Since(evalStart)
	log.Logger().Info("fit word2vec complete",
		zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
		zap.Float32(fmt.Sprintf("HitRate@%v", config.TopK), scores[1]),
		zap.Int("vectors", vectors.Count()),
		zap.String("fit_time", fitTime.String()),
		zap.String("eval_time", evalTime.String()))
	return Score{NDCG: scores[0], HitRate: scores[1]}, nil
}

// Recommend predicts n+|session| candidates closest to the session embedding,
// removes the session items and truncates to n. Sessions with no embedded
// item yield an empty list.
func (w *Word2Vec) Recommend(session []int32, n int) ([]int32, []float32) {
	if w.Invalid() || n <= 0 {
		return nil, nil
	}
	known := make([]int32, 0, len(session))
	for _, itemIndex := range session {
		if w.Vectors.Has(itemIndex) {
			known = append(known, itemIndex)
		}
	}
	if len(known) == 0 {
		return nil, nil
	}
	candidates, similarities, ok := w.Vectors.Predict(known, n+len(session))
	if !ok {
		return nil, nil
	}
	seen := mapset.NewThreadUnsafeSet(session...)
	items := make([]int32, 0, n)
	scores := make([]float32, 0, n)
	for i, itemIndex := range candidates {
		if len(items) >= n {
			break
		}
		if seen.Contains(itemIndex) {
			continue
		}
		items = append(items, itemIndex)
		scores = append(scores, similarities[i])
	}
	return items, scores
}
