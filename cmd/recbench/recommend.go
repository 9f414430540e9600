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
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recbench-io/recbench/base/log"
	"github.com/recbench-io/recbench/common/parallel"
	"github.com/recbench-io/recbench/dataset"
)

func init() {
	rootCommand.AddCommand(recommendCommand)
	recommendCommand.Flags().String("vectors", "", "path of pretrained embedding vectors")
	recommendCommand.Flags().StringP("output", "o", "recommendations.parquet", "path of the output file")
}

var recommendCommand = &cobra.Command{
	Use:   "recommend <popularity|knn|word2vec>",
	Short: "Generate top-k recommendations for every user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("vectors") {
			conf.Word2Vec.Vectors, _ = cmd.Flags().GetString("vectors")
		}
		output, _ := cmd.Flags().GetString("output")
		data := loadDataset(conf)
		m := createModel(conf, args[0], data)
		// fit on the full dataset, nothing is held out
		if _, err := m.Fit(cmd.Context(), data, dataset.NewDataset(0, 0),
			conf.Evaluate.GetFitConfig()); err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		sessions := data.GetSessions()
		recommendations := make([]dataset.Recommendation, len(sessions))
		bar := progressbar.Default(int64(len(sessions)), "Generating recommendations")
		err := parallel.Parallel(cmd.Context(), len(sessions), conf.Evaluate.Jobs,
			func(_, userIndex int) error {
				userId, err := data.UserName(int32(userIndex))
				if err != nil {
					return errors.Trace(err)
				}
				items, _ := m.Recommend(sessions[userIndex], conf.Evaluate.TopK)
				itemIds := make([]string, 0, len(items))
				for _, itemIndex := range items {
					itemId, err := data.ItemName(itemIndex)
					if err != nil {
						return errors.Trace(err)
					}
					itemIds = append(itemIds, itemId)
				}
				recommendations[userIndex] = dataset.Recommendation{UserId: userId, Items: itemIds}
				_ = bar.Add(1)
				return nil
			})
		if err != nil {
			log.Logger().Fatal("failed to generate recommendations", zap.Error(err))
		}
		if strings.HasSuffix(output, ".csv") {
			err = dataset.SaveRecommendationsCSV(output, recommendations)
		} else {
			err = dataset.SaveRecommendations(output, recommendations)
		}
		if err != nil {
			log.Logger().Fatal("failed to save recommendations",
				zap.String("output", output), zap.Error(err))
		}
		log.Logger().Info("save recommendations",
			zap.String("output", output),
			zap.Int("users", len(recommendations)))
	},
}
