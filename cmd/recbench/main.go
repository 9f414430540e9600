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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/cmd/version"
	"github.com/recbench-io/recbench/config"
	"github.com/recbench-io/recbench/dataset"
	"github.com/recbench-io/recbench/embedding"
	"github.com/recbench-io/recbench/model/nextitem"
)

var rootCommand = &cobra.Command{
	Use:   "recbench",
	Short: "Benchmark next-item recommendation models on session datasets.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Check the version of recbench",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	return conf
}

func loadDataset(conf *config.Config) *dataset.Dataset {
	var (
		data *dataset.Dataset
		err  error
	)
	switch strings.ToLower(conf.Data.Format) {
	case "parquet":
		data, err = dataset.LoadParquet(conf.Data.Path)
	default:
		data, err = readCSV(conf)
	}
	if err != nil {
		log.Logger().Fatal("failed to load dataset",
			zap.String("path", conf.Data.Path), zap.Error(err))
	}
	log.Logger().Info("load dataset",
		zap.String("path", conf.Data.Path),
		zap.Int("users", data.CountUsers()),
		zap.Int("items", data.CountItems()),
		zap.Int("interactions", data.Count()))
	return data
}

func readCSV(conf *config.Config) (*dataset.Dataset, error) {
	file, err := os.Open(conf.Data.Path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Trace(err)
	}
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(
		stat.Size(),
		"Loading interactions",
	))
	return dataset.ReadCSV(&pbReader, conf.Data.Sep, conf.Data.Header)
}

// createModel builds a model from its name. Pretrained vectors are loaded
// through the dataset's item dictionary so that indices stay aligned.
func createModel(conf *config.Config, name string, data *dataset.Dataset) nextitem.Model {
	switch name {
	case "popularity":
		return nextitem.NewPopularity(conf.Popularity.Params())
	case "knn":
		return nextitem.NewItemKNN(conf.KNN.Params())
	case "word2vec":
		if conf.Word2Vec.Vectors == "" {
			log.Logger().Fatal("word2vec requires pretrained vectors, set --vectors or [word2vec].vectors")
		}
		vectors, err := embedding.Load(conf.Word2Vec.Vectors, data.GetItemDict())
		if err != nil {
			log.Logger().Fatal("failed to load pretrained vectors",
				zap.String("path", conf.Word2Vec.Vectors), zap.Error(err))
		}
		log.Logger().Info("load pretrained vectors",
			zap.String("path", conf.Word2Vec.Vectors),
			zap.Int("vectors", vectors.Count()))
		return nextitem.NewWord2Vec(embedding.Pretrained(vectors), conf.Word2Vec.Params())
	default:
		log.Logger().Fatal("unknown model", zap.String("model", name))
		return nil
	}
}
