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

package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/recbench-io/recbench/model"
	"github.com/recbench-io/recbench/model/nextitem"
)

// Config is the configuration for the recbench toolkit.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Evaluate   EvaluateConfig   `mapstructure:"evaluate"`
	Tune       TuneConfig       `mapstructure:"tune"`
	Popularity PopularityConfig `mapstructure:"popularity"`
	KNN        KNNConfig        `mapstructure:"knn"`
	Word2Vec   Word2VecConfig   `mapstructure:"word2vec"`
}

// DataConfig is the configuration for the interaction dataset.
type DataConfig struct {
	Path    string `mapstructure:"path"`
	Format  string `mapstructure:"format"`
	Sep     string `mapstructure:"sep"`
	Header  bool   `mapstructure:"header"`
	HeldOut int    `mapstructure:"held_out"`
}

// EvaluateConfig is the configuration for evaluation.
type EvaluateConfig struct {
	TopK    int `mapstructure:"top_k"`
	Jobs    int `mapstructure:"jobs"`
	Verbose int `mapstructure:"verbose"`
}

// TuneConfig is the configuration for hyper-parameter search.
type TuneConfig struct {
	Trials int   `mapstructure:"trials"`
	Seed   int64 `mapstructure:"seed"`
}

// PopularityConfig is the configuration for the popularity model.
type PopularityConfig struct {
	FilterSeen bool `mapstructure:"filter_seen"`
}

// KNNConfig is the configuration for the item-to-item nearest neighbor model.
type KNNConfig struct {
	Similarity string `mapstructure:"similarity"`
}

// Word2VecConfig is the configuration for the word2vec model.
type Word2VecConfig struct {
	Vectors          string  `mapstructure:"vectors"`
	Window           int     `mapstructure:"window"`
	SkipGram         bool    `mapstructure:"skip_gram"`
	NegativeSamples  int     `mapstructure:"negative_samples"`
	SamplingExponent float64 `mapstructure:"sampling_exponent"`
	MinCount         int     `mapstructure:"min_count"`
	NFactors         int     `mapstructure:"n_factors"`
	NEpochs          int     `mapstructure:"n_epochs"`
	RandomState      int64   `mapstructure:"random_state"`
}

// GetDefaultConfig returns a default config.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Format:  "csv",
			Sep:     ",",
			Header:  true,
			HeldOut: 3,
		},
		Evaluate: EvaluateConfig{
			TopK:    20,
			Jobs:    1,
			Verbose: 10,
		},
		Tune: TuneConfig{
			Trials: 10,
		},
		Popularity: PopularityConfig{
			FilterSeen: true,
		},
		KNN: KNNConfig{
			Similarity: "cosine",
		},
		Word2Vec: Word2VecConfig{
			Window:           5,
			SkipGram:         true,
			NegativeSamples:  5,
			SamplingExponent: 0.75,
			MinCount:         1,
			NFactors:         100,
			NEpochs:          5,
		},
	}
}

// GetFitConfig returns the fit config of evaluation.
func (config *EvaluateConfig) GetFitConfig() *nextitem.FitConfig {
	return nextitem.NewFitConfig().
		SetTopK(config.TopK).
		SetJobs(config.Jobs).
		SetVerbose(config.Verbose)
}

// Params returns the hyper-parameters of the popularity model.
func (config *PopularityConfig) Params() model.Params {
	return model.Params{
		model.FilterSeen: config.FilterSeen,
	}
}

// Params returns the hyper-parameters of the nearest neighbor model.
func (config *KNNConfig) Params() model.Params {
	return model.Params{
		model.Similarity: config.Similarity,
	}
}

// Params returns the hyper-parameters of the word2vec model.
func (config *Word2VecConfig) Params() model.Params {
	return model.Params{
		model.Window:           config.Window,
		model.SkipGram:         config.SkipGram,
		model.NegativeSamples:  config.NegativeSamples,
		model.SamplingExponent: float32(config.SamplingExponent),
		model.MinCount:         config.MinCount,
		model.NFactors:         config.NFactors,
		model.NEpochs:          config.NEpochs,
		model.RandomState:      config.RandomState,
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [data]
	viper.SetDefault("data.path", defaultConfig.Data.Path)
	viper.SetDefault("data.format", defaultConfig.Data.Format)
	viper.SetDefault("data.sep", defaultConfig.Data.Sep)
	viper.SetDefault("data.header", defaultConfig.Data.Header)
	viper.SetDefault("data.held_out", defaultConfig.Data.HeldOut)
	// [evaluate]
	viper.SetDefault("evaluate.top_k", defaultConfig.Evaluate.TopK)
	viper.SetDefault("evaluate.jobs", defaultConfig.Evaluate.Jobs)
	viper.SetDefault("evaluate.verbose", defaultConfig.Evaluate.Verbose)
	// [tune]
	viper.SetDefault("tune.trials", defaultConfig.Tune.Trials)
	viper.SetDefault("tune.seed", defaultConfig.Tune.Seed)
	// [popularity]
	viper.SetDefault("popularity.filter_seen", defaultConfig.Popularity.FilterSeen)
	// [knn]
	viper.SetDefault("knn.similarity", defaultConfig.KNN.Similarity)
	// [word2vec]
	viper.SetDefault("word2vec.vectors", defaultConfig.Word2Vec.Vectors)
	viper.SetDefault("word2vec.window", defaultConfig.Word2Vec.Window)
	viper.SetDefault("word2vec.skip_gram", defaultConfig.Word2Vec.SkipGram)
	viper.SetDefault("word2vec.negative_samples", defaultConfig.Word2Vec.NegativeSamples)
	viper.SetDefault("word2vec.sampling_exponent", defaultConfig.Word2Vec.SamplingExponent)
	viper.SetDefault("word2vec.min_count", defaultConfig.Word2Vec.MinCount)
	viper.SetDefault("word2vec.n_factors", defaultConfig.Word2Vec.NFactors)
	viper.SetDefault("word2vec.n_epochs", defaultConfig.Word2Vec.NEpochs)
	viper.SetDefault("word2vec.random_state", defaultConfig.Word2Vec.RandomState)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads and validates the config file.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment variables
	configBindings := []configBinding{
		{"data.path", "RECBENCH_DATA_PATH"},
		{"data.format", "RECBENCH_DATA_FORMAT"},
		{"data.held_out", "RECBENCH_DATA_HELD_OUT"},
		{"evaluate.top_k", "RECBENCH_TOP_K"},
		{"evaluate.jobs", "RECBENCH_JOBS"},
		{"tune.trials", "RECBENCH_TUNE_TRIALS"},
		{"tune.seed", "RECBENCH_TUNE_SEED"},
		{"word2vec.vectors", "RECBENCH_WORD2VEC_VECTORS"},
	}
	for _, binding := range configBindings {
		err := viper.BindEnv(binding.key, binding.env)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}

	// load config file
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks that every config value is usable.
func (config *Config) Validate() error {
	if !lo.Contains([]string{"csv", "parquet"}, strings.ToLower(config.Data.Format)) {
		return errors.NotValidf("data.format %v", config.Data.Format)
	}
	if config.Data.HeldOut < 1 {
		return errors.NotValidf("data.held_out %v", config.Data.HeldOut)
	}
	if config.Evaluate.TopK < 1 {
		return errors.NotValidf("evaluate.top_k %v", config.Evaluate.TopK)
	}
	if config.Evaluate.Jobs < 1 {
		return errors.NotValidf("evaluate.jobs %v", config.Evaluate.Jobs)
	}
	if config.Tune.Trials < 1 {
		return errors.NotValidf("tune.trials %v", config.Tune.Trials)
	}
	if !lo.Contains([]string{"cosine", "dot"}, strings.ToLower(config.KNN.Similarity)) {
		return errors.NotValidf("knn.similarity %v", config.KNN.Similarity)
	}
	if config.Word2Vec.Window < 1 {
		return errors.NotValidf("word2vec.window %v", config.Word2Vec.Window)
	}
	if config.Word2Vec.NegativeSamples < 0 {
		return errors.NotValidf("word2vec.negative_samples %v", config.Word2Vec.NegativeSamples)
	}
	if config.Word2Vec.MinCount < 1 {
		return errors.NotValidf("word2vec.min_count %v", config.Word2Vec.MinCount)
	}
	if config.Word2Vec.NFactors < 1 {
		return errors.NotValidf("word2vec.n_factors %v", config.Word2Vec.NFactors)
	}
	if config.Word2Vec.NEpochs < 1 {
		return errors.NotValidf("word2vec.n_epochs %v", config.Word2Vec.NEpochs)
	}
	return nil
}
