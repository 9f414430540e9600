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

// Package dataset holds interaction logs as per-user chronological sessions
// with dense integer indices for users and items.
package dataset

import (
	"sort"

	"github.com/juju/errors"
	"modernc.org/mathutil"
	"modernc.org/sortutil"
)

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
)

// Dataset is an in-memory interaction log. Interactions are grouped by user
// in insertion order, which is expected to be chronological. Split datasets
// share the dictionaries of their parent so that indices stay comparable.
type Dataset struct {
	userDict  *FreqDict
	itemDict  *FreqDict
	sessions  [][]int32
	itemUsers [][]int32
	count     int
}

// NewDataset creates an empty dataset with capacity hints.
func NewDataset(userCount, itemCount int) *Dataset {
	return &Dataset{
		userDict:  NewFreqDict(),
		itemDict:  NewFreqDict(),
		sessions:  make([][]int32, 0, userCount),
		itemUsers: make([][]int32, 0, itemCount),
	}
}

// AddInteraction appends one listening event to the user's session. Unseen
// identifiers extend the dictionaries.
func (d *Dataset) AddInteraction(userId, itemId string) {
	userIndex := d.userDict.Id(userId)
	itemIndex := d.itemDict.Id(itemId)
	for len(d.sessions) <= userIndex {
		d.sessions = append(d.sessions, nil)
	}
	for len(d.itemUsers) <= itemIndex {
		d.itemUsers = append(d.itemUsers, nil)
	}
	d.sessions[userIndex] = append(d.sessions[userIndex], int32(itemIndex))
	d.itemUsers[itemIndex] = append(d.itemUsers[itemIndex], int32(userIndex))
	d.count++
}

func (d *Dataset) CountUsers() int {
	return d.userDict.Count()
}

func (d *Dataset) CountItems() int {
	return d.itemDict.Count()
}

// Count returns the number of interactions.
func (d *Dataset) Count() int {
	return d.count
}

func (d *Dataset) GetUserDict() *FreqDict {
	return d.userDict
}

func (d *Dataset) GetItemDict() *FreqDict {
	return d.itemDict
}

// GetSessions returns the per-user chronological item indices.
func (d *Dataset) GetSessions() [][]int32 {
	return d.sessions
}

// GetItemUsers returns the inverted index from items to the users that
// interacted with them, in insertion order.
func (d *Dataset) GetItemUsers() [][]int32 {
	return d.itemUsers
}

// UserNumber translates a raw user identifier to its index. Identifiers
// never seen during construction fail with a not-found error.
func (d *Dataset) UserNumber(userId string) (int32, error) {
	index, ok := d.userDict.ToNumber(userId)
	if !ok {
		return 0, errors.Annotate(ErrUserNotExist, userId)
	}
	return int32(index), nil
}

// ItemNumber translates a raw item identifier to its index. Identifiers
// never seen during construction fail with a not-found error.
func (d *Dataset) ItemNumber(itemId string) (int32, error) {
	index, ok := d.itemDict.ToNumber(itemId)
	if !ok {
		return 0, errors.Annotate(ErrItemNotExist, itemId)
	}
	return int32(index), nil
}

// UserName translates a user index back to the raw identifier.
func (d *Dataset) UserName(userIndex int32) (string, error) {
	name, ok := d.userDict.String(int(userIndex))
	if !ok {
		return "", errors.Annotatef(ErrUserNotExist, "index %d", userIndex)
	}
	return name, nil
}

// ItemName translates an item index back to the raw identifier.
func (d *Dataset) ItemName(itemIndex int32) (string, error) {
	name, ok := d.itemDict.String(int(itemIndex))
	if !ok {
		return "", errors.Annotatef(ErrItemNotExist, "index %d", itemIndex)
	}
	return name, nil
}

// MedianSessionLength returns the median number of interactions per session,
// rounding even populations down to the mean of the two middle lengths.
// Empty datasets report zero.
func (d *Dataset) MedianSessionLength() int {
	if len(d.sessions) == 0 {
		return 0
	}
	lengths := make(sortutil.Int32Slice, len(d.sessions))
	for i, session := range d.sessions {
		lengths[i] = int32(len(session))
	}
	sort.Sort(lengths)
	middle := len(lengths) / 2
	if len(lengths)%2 == 1 {
		return int(lengths[middle])
	}
	return int(lengths[middle-1]+lengths[middle]) / 2
}

// SplitLeaveLastOut partitions every session into a training prefix and a
// held-out suffix of the last min(n, len) items. Both datasets share this
// dataset's dictionaries, so indices remain comparable across the split.
// Users with fewer than n interactions keep an empty training prefix rather
// than failing.
func (d *Dataset) SplitLeaveLastOut(n int) (train, test *Dataset) {
	train = &Dataset{
		userDict:  d.userDict,
		itemDict:  d.itemDict,
		sessions:  make([][]int32, len(d.sessions)),
		itemUsers: make([][]int32, len(d.itemUsers)),
	}
	test = &Dataset{
		userDict:  d.userDict,
		itemDict:  d.itemDict,
		sessions:  make([][]int32, len(d.sessions)),
		itemUsers: make([][]int32, len(d.itemUsers)),
	}
	for userIndex, session := range d.sessions {
		boundary := len(session) - mathutil.Min(n, len(session))
		train.sessions[userIndex] = session[:boundary]
		test.sessions[userIndex] = session[boundary:]
		train.count += boundary
		test.count += len(session) - boundary
		for _, itemIndex := range session[:boundary] {
			train.itemUsers[itemIndex] = append(train.itemUsers[itemIndex], int32(userIndex))
		}
		for _, itemIndex := range session[boundary:] {
			test.itemUsers[itemIndex] = append(test.itemUsers[itemIndex], int32(userIndex))
		}
	}
	return
}
