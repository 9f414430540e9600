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
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/recbench-io/recbench/model"
)

func TestUnmarshal(t *testing.T) {
	data, err := os.ReadFile("config.toml.template")
	assert.NoError(t, err)
	text := string(data)
	text = strings.Replace(text, "path = \"\"", "path = \"interactions.csv\"", -1)
	text = strings.Replace(text, "vectors = \"\"", "vectors = \"vectors.txt\"", -1)
	viper.SetConfigType("toml")
	err = viper.ReadConfig(strings.NewReader(text))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)

	// [data]
	assert.Equal(t, "interactions.csv", config.Data.Path)
	assert.Equal(t, "csv", config.Data.Format)
	assert.Equal(t, ",", config.Data.Sep)
	assert.True(t, config.Data.Header)
	assert.Equal(t, 3, config.Data.HeldOut)
	// [evaluate]
	assert.Equal(t, 20, config.Evaluate.TopK)
	assert.Equal(t, 1, config.Evaluate.Jobs)
	assert.Equal(t, 10, config.Evaluate.Verbose)
	// [tune]
	assert.Equal(t, 10, config.Tune.Trials)
	assert.Equal(t, int64(0), config.Tune.Seed)
	// [popularity]
	assert.True(t, config.Popularity.FilterSeen)
	// [knn]
	assert.Equal(t, "cosine", config.KNN.Similarity)
	// [word2vec]
	assert.Equal(t, "vectors.txt", config.Word2Vec.Vectors)
	assert.Equal(t, 5, config.Word2Vec.Window)
	assert.True(t, config.Word2Vec.SkipGram)
	assert.Equal(t, 5, config.Word2Vec.NegativeSamples)
	assert.Equal(t, 0.75, config.Word2Vec.SamplingExponent)
	assert.Equal(t, 1, config.Word2Vec.MinCount)
	assert.Equal(t, 100, config.Word2Vec.NFactors)
	assert.Equal(t, 5, config.Word2Vec.NEpochs)
	assert.Equal(t, int64(0), config.Word2Vec.RandomState)
}

func TestSetDefault(t *testing.T) {
	setDefault()
	err := viper.ReadConfig(strings.NewReader(""))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), &config)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	variables := []environmentVariable{
		{"RECBENCH_DATA_PATH", "<data_path>"},
		{"RECBENCH_DATA_FORMAT", "parquet"},
		{"RECBENCH_DATA_HELD_OUT", "7"},
		{"RECBENCH_TOP_K", "50"},
		{"RECBENCH_JOBS", "4"},
		{"RECBENCH_TUNE_TRIALS", "123"},
		{"RECBENCH_TUNE_SEED", "42"},
		{"RECBENCH_WORD2VEC_VECTORS", "<vectors_path>"},
	}
	for _, variable := range variables {
		err := os.Setenv(variable.key, variable.value)
		assert.NoError(t, err)
	}

	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	assert.Equal(t, "<data_path>", config.Data.Path)
	assert.Equal(t, "parquet", config.Data.Format)
	assert.Equal(t, 7, config.Data.HeldOut)
	assert.Equal(t, 50, config.Evaluate.TopK)
	assert.Equal(t, 4, config.Evaluate.Jobs)
	assert.Equal(t, 123, config.Tune.Trials)
	assert.Equal(t, int64(42), config.Tune.Seed)
	assert.Equal(t, "<vectors_path>", config.Word2Vec.Vectors)

	// check default values
	assert.Equal(t, "cosine", config.KNN.Similarity)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	config.Data.Format = "excel"
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Data.HeldOut = 0
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Evaluate.TopK = 0
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.KNN.Similarity = "euclidean"
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Word2Vec.NEpochs = 0
	assert.Error(t, config.Validate())

	assert.NoError(t, GetDefaultConfig().Validate())
}

func TestParams(t *testing.T) {
	config := GetDefaultConfig()
	assert.Equal(t, model.Params{model.FilterSeen: true}, config.Popularity.Params())
	assert.Equal(t, model.Params{model.Similarity: "cosine"}, config.KNN.Params())
	params := config.Word2Vec.Params()
	assert.Equal(t, 5, params.GetInt(model.Window, 0))
	assert.True(t, params.GetBool(model.SkipGram, false))
	assert.Equal(t, 5, params.GetInt(model.NegativeSamples, 0))
	assert.Equal(t, float32(0.75), params.GetFloat32(model.SamplingExponent, 0))
	assert.Equal(t, 1, params.GetInt(model.MinCount, 0))
	assert.Equal(t, 100, params.GetInt(model.NFactors, 0))
	assert.Equal(t, 5, params.GetInt(model.NEpochs, 0))
	assert.Equal(t, int64(0), params.GetInt64(model.RandomState, -1))
}

func TestGetFitConfig(t *testing.T) {
	config := GetDefaultConfig()
	fitConfig := config.Evaluate.GetFitConfig()
	assert.Equal(t, 20, fitConfig.TopK)
	assert.Equal(t, 1, fitConfig.Jobs)
	assert.Equal(t, 10, fitConfig.Verbose)
}
