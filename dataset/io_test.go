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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
)

func TestReadCSV(t *testing.T) {
	data := "user_id,item_id\n" +
		"alice,track_1\n" +
		"alice,track_2\n" +
		"bob,track_2\n" +
		"\n" +
		"\"carol,з\",track_3\n"
	dataset, err := ReadCSV(strings.NewReader(data), ",", true)
	assert.NoError(t, err)
	assert.Equal(t, 3, dataset.CountUsers())
	assert.Equal(t, 3, dataset.CountItems())
	assert.Equal(t, 4, dataset.Count())
	name, ok := dataset.GetUserDict().String(2)
	assert.True(t, ok)
	assert.Equal(t, "carol,з", name)

	_, err = ReadCSV(strings.NewReader("alice\n"), ",", false)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = ReadCSV(strings.NewReader("alice,\n"), ",", false)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.csv")
	err := os.WriteFile(path, []byte("alice\ttrack_1\nbob\ttrack_1\n"), 0o644)
	assert.NoError(t, err)
	dataset, err := LoadCSV(path, "\t", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, dataset.CountUsers())
	assert.Equal(t, 1, dataset.CountItems())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), ",", false)
	assert.Error(t, err)
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.parquet")
	file, err := os.Create(path)
	assert.NoError(t, err)
	writer := parquet.NewGenericWriter[Interaction](file)
	_, err = writer.Write([]Interaction{
		{UserId: "alice", ItemId: "track_1"},
		{UserId: "alice", ItemId: "track_2"},
		{UserId: "bob", ItemId: "track_1"},
	})
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	assert.NoError(t, file.Close())

	dataset, err := LoadParquet(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, dataset.CountUsers())
	assert.Equal(t, 2, dataset.CountItems())
	assert.Equal(t, 3, dataset.Count())
	assert.Equal(t, [][]int32{{0, 1}, {0}}, dataset.GetSessions())
}

func TestRecommendationsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommendations.parquet")
	expected := []Recommendation{
		{UserId: "alice", Items: []string{"track_2", "track_1"}},
		{UserId: "bob", Items: []string{"track_1"}},
		{UserId: "carol", Items: []string{}},
	}
	assert.NoError(t, SaveRecommendations(path, expected))
	actual, err := ReadRecommendations(path)
	assert.NoError(t, err)
	assert.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].UserId, actual[i].UserId)
		if len(expected[i].Items) == 0 {
			assert.Empty(t, actual[i].Items)
		} else {
			assert.Equal(t, expected[i].Items, actual[i].Items)
		}
	}
}

func TestSaveRecommendationsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommendations.csv")
	err := SaveRecommendationsCSV(path, []Recommendation{
		{UserId: "alice", Items: []string{"track_2", "track_1"}},
		{UserId: "bob", Items: []string{"track_1"}},
	})
	assert.NoError(t, err)
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "user_id,y_rec\nalice,\"track_2,track_1\"\nbob,track_1\n", string(data))
}
