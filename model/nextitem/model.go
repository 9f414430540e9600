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

// Package nextitem implements next-item recommendation models evaluated with
// a leave-last-out protocol.
package nextitem

import (
	"context"
	"reflect"

	"github.com/c-bata/goptuna"
	"github.com/recbench-io/recbench/base/copier"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/model"
)

type Score struct {
	NDCG    float32
	HitRate float32
}

type FitConfig struct {
	Jobs    int
	Verbose int
	TopK    int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
		TopK:    20,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) SetTopK(topK int) *FitConfig {
	config.TopK = topK
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

type Model interface {
	model.Model
	// Fit a model with a train set and evaluate it on a test set.
	Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) (Score, error)
	// Recommend the next items for a session, most relevant first. At most
	// n items are returned, along with their scores.
	Recommend(session []int32, n int) ([]int32, []float32)
	// GetUserDict returns the user dictionary.
	GetUserDict() *dataset.FreqDict
	// GetItemDict returns the item dictionary.
	GetItemDict() *dataset.FreqDict
	// SuggestParams draws hyper-parameters from a trial.
	SuggestParams(trial goptuna.Trial) model.Params
}

type BaseNextItemModel struct {
	model.BaseModel
	UserDict *dataset.FreqDict
	ItemDict *dataset.FreqDict
}

func (baseModel *BaseNextItemModel) Init(trainSet *dataset.Dataset) {
	baseModel.UserDict = trainSet.GetUserDict()
	baseModel.ItemDict = trainSet.GetItemDict()
}

func (baseModel *BaseNextItemModel) GetUserDict() *dataset.FreqDict {
	return baseModel.UserDict
}

func (baseModel *BaseNextItemModel) GetItemDict() *dataset.FreqDict {
	return baseModel.ItemDict
}

// Clone a model with deep copy.
func Clone(m Model) Model {
	var copied Model
	if err := copier.Copy(&copied, m); err != nil {
		panic(err)
	} else {
		copied.SetParams(copied.GetParams())
		return copied
	}
}

func GetModelName(m Model) string {
	switch m.(type) {
	case *Popularity:
		return "popularity"
	case *ItemKNN:
		return "knn"
	case *Word2Vec:
		return "word2vec"
	default:
		return reflect.TypeOf(m).String()
	}
}
