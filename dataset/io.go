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

package dataset

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/parquet-go/parquet-go"
	"github.com/recbench-io/recbench/base"
	"modernc.org/mathutil"
	"modernc.org/strutil"
)

// Interaction is a single user-item event in the columnar input.
type Interaction struct {
	UserId string `parquet:"user_id"`
	ItemId string `parquet:"item_id"`
}

// Recommendation is the ranked item list produced for a single user. Items
// hold original item ids, most relevant first.
type Recommendation struct {
	UserId string   `parquet:"user_id"`
	Items  []string `parquet:"y_rec,list"`
}

const batchSize = 1024

// LoadCSV loads interactions from a csv file. Each line must carry at least
// the user id and the item id, in that order.
func LoadCSV(path, sep string, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	return ReadCSV(file, sep, hasHeader)
}

// ReadCSV reads interactions from a csv stream.
func ReadCSV(r io.Reader, sep string, hasHeader bool) (*Dataset, error) {
	dataset := NewDataset(0, 0)
	sc := bufio.NewScanner(r)
	var lineErr error
	err := base.ReadLines(sc, sep, func(lineNumber int, fields []string) bool {
		if hasHeader && lineNumber == 0 {
			return true
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return true
		}
		if len(fields) < 2 {
			lineErr = errors.NotValidf("line %d: expect 2 fields, got %d", lineNumber, len(fields))
			return false
		}
		userId := strings.TrimSpace(fields[0])
		itemId := strings.TrimSpace(fields[1])
		if err := base.ValidateId(userId); err != nil {
			lineErr = errors.Annotatef(err, "line %d", lineNumber)
			return false
		}
		if err := base.ValidateId(itemId); err != nil {
			lineErr = errors.Annotatef(err, "line %d", lineNumber)
			return false
		}
		dataset.AddInteraction(userId, itemId)
		return true
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if lineErr != nil {
		return nil, errors.Trace(lineErr)
	}
	return dataset, nil
}

// LoadParquet loads interactions from a parquet file with user_id and
// item_id columns.
func LoadParquet(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	reader := parquet.NewGenericReader[Interaction](file)
	defer reader.Close()
	dataset := NewDataset(0, 0)
	rows := make([]Interaction, batchSize)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			dataset.AddInteraction(row.UserId, row.ItemId)
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
	}
	return dataset, nil
}

// SaveRecommendations writes recommendations to a parquet file with a
// user_id column and a y_rec list column.
func SaveRecommendations(path string, recommendations []Recommendation) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	writer := parquet.NewGenericWriter[Recommendation](file)
	for offset := 0; offset < len(recommendations); offset += batchSize {
		limit := mathutil.Min(offset+batchSize, len(recommendations))
		if _, err = writer.Write(recommendations[offset:limit]); err != nil {
			_ = file.Close()
			return errors.Trace(err)
		}
	}
	if err = writer.Close(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return errors.Trace(file.Close())
}

// SaveRecommendationsCSV writes recommendations as csv. The item list is
// joined by commas and escaped into a single y_rec field.
func SaveRecommendationsCSV(path string, recommendations []Recommendation) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	w := bufio.NewWriter(file)
	if _, err = w.WriteString("user_id,y_rec\n"); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	for _, r := range recommendations {
		line := base.Escape(r.UserId) + "," + base.Escape(strings.Join(r.Items, ",")) + "\n"
		if _, err = w.WriteString(line); err != nil {
			_ = file.Close()
			return errors.Trace(err)
		}
	}
	if err = w.Flush(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return errors.Trace(file.Close())
}

// ReadRecommendations loads recommendations back from a parquet file. Item
// ids are interned since the same items appear in many lists.
func ReadRecommendations(path string) ([]Recommendation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	reader := parquet.NewGenericReader[Recommendation](file)
	defer reader.Close()
	pool := strutil.NewPool()
	recommendations := make([]Recommendation, 0, reader.NumRows())
	rows := make([]Recommendation, batchSize)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			items := make([]string, len(row.Items))
			for i, item := range row.Items {
				items[i] = pool.Align(item)
			}
			recommendations = append(recommendations, Recommendation{
				UserId: pool.Align(row.UserId),
				Items:  items,
			})
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
	}
	return recommendations, nil
}
