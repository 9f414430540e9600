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

package embedding

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/recbench-io/recbench/dataset"
	"github.com/samber/lo"
)

// Load reads item vectors in the word2vec text format: a "count dimension"
// header followed by one "item_id v1 ... vd" line per item. Items missing
// from dict are registered without occurrence count.
func Load(path string, dict *dataset.FreqDict) (*Vectors, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		return nil, errors.NotValidf("empty vector file")
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return nil, errors.NotValidf("header %q", sc.Text())
	}
	count, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, errors.NotValidf("vector count %q", header[0])
	}
	dimension, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, errors.NotValidf("vector dimension %q", header[1])
	}
	entries := make([]lo.Tuple2[int32, []float32], 0, count)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dimension+1 {
			return nil, errors.NotValidf("line %d: expect %d values, got %d", line, dimension, len(fields)-1)
		}
		vector := make([]float32, dimension)
		for i, field := range fields[1:] {
			value, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, errors.NotValidf("line %d: value %q", line, field)
			}
			vector[i] = float32(value)
		}
		entries = append(entries, lo.T2(int32(dict.NotCount(fields[0])), vector))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	vectors := NewVectors(dict.Count(), dimension)
	for _, entry := range entries {
		vectors.Set(entry.A, entry.B)
	}
	return vectors, nil
}

// Save writes item vectors in the word2vec text format. Item ids are
// resolved through dict and must not contain whitespace.
func Save(path string, vectors *Vectors, dict *dataset.FreqDict) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	w := bufio.NewWriter(file)
	if _, err = w.WriteString(strconv.Itoa(vectors.Count()) + " " + strconv.Itoa(vectors.Dimension) + "\n"); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	for itemIndex, found := vectors.Known.NextSet(0); found; itemIndex, found = vectors.Known.NextSet(itemIndex + 1) {
		name, ok := dict.String(int(itemIndex))
		if !ok {
			_ = file.Close()
			return errors.NotFoundf("item %d", itemIndex)
		}
		if strings.ContainsAny(name, " \t\r\n") {
			_ = file.Close()
			return errors.NotValidf("item id %q with whitespace", name)
		}
		builder := strings.Builder{}
		builder.WriteString(name)
		for _, value := range vectors.Data[itemIndex] {
			builder.WriteByte(' ')
			builder.WriteString(strconv.FormatFloat(float64(value), 'g', -1, 32))
		}
		builder.WriteByte('\n')
		if _, err = w.WriteString(builder.String()); err != nil {
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
