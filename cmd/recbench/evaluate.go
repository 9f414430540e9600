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
	rootCommand.AddCommand(evaluateCommand)
	evaluateCommand.Flags().String("vectors", "", "path of pretrained embedding vectors")
}

var evaluateCommand = &cobra.Command{
	Use:   "evaluate <popularity|knn|word2vec>",
	Short: "Evaluate a next-item model with leave-last-out splitting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("vectors") {
			conf.Word2Vec.Vectors, _ = cmd.Flags().GetString("vectors")
		}
		data := loadDataset(conf)
		trainSet, testSet := data.SplitLeaveLastOut(conf.Data.HeldOut)
		m := createModel(conf, args[0], data)
		start := time.Now()
		score, err := m.Fit(cmd.Context(), trainSet, testSet, conf.Evaluate.GetFitConfig())
		if err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		elapsed := time.Since(start)
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{
			"Model",
			fmt.Sprintf("NDCG@%d", conf.Evaluate.TopK),
			fmt.Sprintf("HitRate@%d", conf.Evaluate.TopK),
			"Time",
		})
		table.Append([]string{
			nextitem.GetModelName(m),
			fmt.Sprintf("%f", score.NDCG),
			fmt.Sprintf("%f", score.HitRate),
			fmt.Sprint(elapsed),
		})
		table.Render()
	},
}
