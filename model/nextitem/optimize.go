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

	"github.com/c-bata/goptuna"
	"github.com/juju/errors"
	"github.com/recbench-io/recbench/base"
	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/base/progress"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// ParamsSearchResult contains the return of hyper-parameter search.
type ParamsSearchResult struct {
	BestModel  Model
	BestScore  Score
	BestParams model.Params
	BestIndex  int
	Scores     []Score
	Params     []model.Params
}

// fitTrial runs a single trial and converts panics inside Fit into errors so
// that one broken parameter combination doesn't abort the whole search.
func fitTrial(ctx context.Context, estimator Model, trainSet, testSet *dataset.Dataset, config *FitConfig) (score Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			score = Score{}
			err = errors.Errorf("fit panic: %v", r)
		}
	}()
	return estimator.Fit(ctx, trainSet, testSet, config)
}

// GridSearchCV finds the best parameters for a model. Failed trials keep the
// worst score and never become the best model.
func GridSearchCV(ctx context.Context, estimator Model, trainSet, testSet *dataset.Dataset, paramGrid model.ParamsGrid,
	_ int64, fitConfig *FitConfig) ParamsSearchResult {
	// Retrieve parameter names and length
	paramNames := make([]model.ParamName, 0, len(paramGrid))
	total := 1
	for paramName, values := range paramGrid {
		paramNames = append(paramNames, paramName)
		total *= len(values)
	}
	// Construct DFS procedure
	results := ParamsSearchResult{
		Scores: make([]Score, 0, total),
		Params: make([]model.Params, 0, total),
	}
	var dfs func(deep int, params model.Params)
	newCtx, span := progress.Start(ctx, "GridSearchCV", total)
	dfs = func(deep int, params model.Params) {
		if deep == len(paramNames) {
			log.Logger().Info(fmt.Sprintf("grid search (%v/%v)", span.Count()+1, total),
				zap.Any("params", params))
			// Cross validate
			estimator.Clear()
			estimator.SetParams(estimator.GetParams().Overwrite(params))
			score, err := fitTrial(newCtx, estimator, trainSet, testSet, fitConfig)
			if err != nil {
				log.Logger().Warn("grid search trial failed",
					zap.Any("params", params), zap.Error(err))
				score = Score{}
			}
			results.Scores = append(results.Scores, score)
			results.Params = append(results.Params, params.Copy())
			if err == nil && (results.BestModel == nil || score.NDCG > results.BestScore.NDCG) {
				results.BestModel = Clone(estimator)
				results.BestScore = score
				results.BestParams = params.Copy()
				results.BestIndex = len(results.Params) - 1
			}
			span.Add(1)
		} else {
			paramName := paramNames[deep]
			values := paramGrid[paramName]
			for _, val := range values {
				params[paramName] = val
				dfs(deep+1, params)
			}
		}
	}
	params := make(map[model.ParamName]interface{})
	dfs(0, params)
	span.End()
	return results
}

// RandomSearchCV searches hyper-parameters over a fixed trial budget.
func RandomSearchCV(ctx context.Context, estimator Model, trainSet, testSet *dataset.Dataset, paramGrid model.ParamsGrid,
	numTrials int, seed int64, fitConfig *FitConfig) ParamsSearchResult {
	// if the number of combinations is less than the number of trials, use grid search
	if paramGrid.NumCombinations() < numTrials {
		return GridSearchCV(ctx, estimator, trainSet, testSet, paramGrid, seed, fitConfig)
	}
	rng := base.NewRandomGenerator(seed)
	results := ParamsSearchResult{
		Scores: make([]Score, 0, numTrials),
		Params: make([]model.Params, 0, numTrials),
	}
	newCtx, span := progress.Start(ctx, "RandomSearchCV", numTrials)
	for i := 1; i <= numTrials; i++ {
		// Make parameters
		params := model.Params{}
		for paramName, values := range paramGrid {
			value := values[rng.Intn(len(values))]
			params[paramName] = value
		}
		// Cross validate
		log.Logger().Info(fmt.Sprintf("random search (%v/%v)", i, numTrials),
			zap.Any("params", params))
		estimator.Clear()
		estimator.SetParams(estimator.GetParams().Overwrite(params))
		score, err := fitTrial(newCtx, estimator, trainSet, testSet, fitConfig)
		if err != nil {
			log.Logger().Warn("random search trial failed",
				zap.Any("params", params), zap.Error(err))
			score = Score{}
		}
		results.Scores = append(results.Scores, score)
		results.Params = append(results.Params, params.Copy())
		if err == nil && (results.BestModel == nil || score.NDCG > results.BestScore.NDCG) {
			results.BestModel = Clone(estimator)
			results.BestScore = score
			results.BestParams = params.Copy()
			results.BestIndex = len(results.Params) - 1
		}
		span.Add(1)
	}
	span.End()
	return results
}

type ModelCreator func() Model

// SearchResult is the best model found by a search.
type SearchResult struct {
	Type   string
	Params model.Params
	Score  Score
}

type ModelSearch struct {
	modelCreators map[string]ModelCreator
	modelTypes    []string
	trainSet      *dataset.Dataset
	testSet       *dataset.Dataset
	config        *FitConfig
	result        SearchResult
}

func NewModelSearch(models map[string]ModelCreator, trainSet, testSet *dataset.Dataset, config *FitConfig) *ModelSearch {
	return &ModelSearch{
		modelCreators: models,
		modelTypes:    maps.Keys(models),
		trainSet:      trainSet,
		testSet:       testSet,
		config:        config,
	}
}

func (ms *ModelSearch) Objective(trial goptuna.Trial) (float64, error) {
	if len(ms.modelCreators) == 0 {
		return 0, errors.New("no model to search")
	}
	modelType, err := trial.SuggestCategorical("Model", ms.modelTypes)
	if err != nil {
		return 0, errors.Trace(err)
	}
	m := ms.modelCreators[modelType]()
	m.SetParams(m.GetParams().Overwrite(m.SuggestParams(trial)))
	score, err := fitTrial(context.Background(), m, ms.trainSet, ms.testSet, ms.config)
	if err != nil {
		log.Logger().Warn("model search trial failed",
			zap.String("model", modelType), zap.Any("params", m.GetParams()), zap.Error(err))
		return 0, nil
	}
	if ms.result.Type == "" || score.NDCG > ms.result.Score.NDCG {
		ms.result = SearchResult{
			Type:   modelType,
			Params: m.GetParams(),
			Score:  score,
		}
	}
	return float64(score.NDCG), nil
}

func (ms *ModelSearch) Result() SearchResult {
	return ms.result
}
