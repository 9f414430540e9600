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
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/model/nextitem"
)

func init() {
	rootCommand.AddCommand(tuneCommand)
	tuneCommand.Flags().Int("trials", 0, "number of random search trials")
}

var tuneCommand = &cobra.Command{
	Use:   "tune <popularity|knn>",
	Short: "Tune a next-item model by random search",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		modelName := args[0]
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("trials") {
			conf.Tune.Trials, _ = cmd.Flags().GetInt("trials")
		}
		var m nextitem.Model
		switch modelName {
		case "popularity", "knn":
			m = createModel(conf, modelName, nil)
		case "word2vec":
			log.Logger().Fatal("word2vec tuning requires training embeddings, " +
				"load pretrained vectors and evaluate instead")
		default:
			log.Logger().Fatal("unknown model", zap.String("model", modelName))
		}
		data := loadDataset(conf)
		trainSet, testSet := data.SplitLeaveLastOut(conf.Data.HeldOut)
		start := time.Now()
		result := nextitem.RandomSearchCV(cmd.Context(), m, trainSet, testSet,
			m.GetParamsGrid(false), conf.Tune.Trials, conf.Tune.Seed,
			conf.Evaluate.GetFitConfig())
		elapsed := time.Since(start)
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{
			"#",
			fmt.Sprintf("NDCG@%d", conf.Evaluate.TopK),
			fmt.Sprintf("HitRate@%d", conf.Evaluate.TopK),
			"Params",
		})
		for i := range result.Params {
			score := result.Scores[i]
			table.Append([]string{
				fmt.Sprintf("%v", i),
				fmt.Sprintf("%v", score.NDCG),
				fmt.Sprintf("%v", score.HitRate),
				fmt.Sprintf("%v", result.Params[i]),
			})
		}
		table.Render()
		log.Logger().Info("complete random search",
			zap.Int("best_index", result.BestIndex),
			zap.Any("best_params", result.BestParams),
			zap.Float32("best_ndcg", result.BestScore.NDCG),
			zap.String("search_time", elapsed.String()))
	},
}
