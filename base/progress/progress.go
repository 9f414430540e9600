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

// Package progress tracks long running jobs through context-propagated spans.
package progress

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

type spanKeyType string

var spanKeyName = spanKeyType(uuid.New().String())

type Status string

const (
	StatusPending   Status = "Pending"
	StatusComplete  Status = "Complete"
	StatusRunning   Status = "Running"
	StatusSuspended Status = "Suspended"
	StatusFailed    Status = "Failed"
)

type Tracer struct {
	name  string
	spans sync.Map
}

func NewTracer(name string) *Tracer {
	return &Tracer{name: name}
}

// Start creates a root span.
func (t *Tracer) Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	span := &Span{
		name:   name,
		status: StatusRunning,
		total:  total,
		start:  time.Now(),
	}
	t.spans.Store(name, span)
	return context.WithValue(ctx, spanKeyName, span), span
}

// List returns the progress of all root spans started from this tracer,
// ordered by start time.
func (t *Tracer) List() []Progress {
	var progress []Progress
	t.spans.Range(func(_, value interface{}) bool {
		span := value.(*Span)
		p := span.Progress()
		p.Tracer = t.name
		progress = append(progress, p)
		return true
	})
	slices.SortFunc(progress, func(a, b Progress) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return progress
}

type Span struct {
	name     string
	status   Status
	total    int
	count    atomic.Int64
	err      error
	start    time.Time
	finish   time.Time
	children sync.Map
}

func (s *Span) Add(n int) {
	s.count.Add(int64(n))
}

func (s *Span) End() {
	s.status = StatusComplete
	s.count.Store(int64(s.total))
	s.finish = time.Now()
}

func (s *Span) Fail(err error) {
	s.status = StatusFailed
	s.err = err
}

func (s *Span) Count() int {
	return int(s.count.Load())
}

// Progress reports this span scaled by its running child, if any. While a
// child with total m runs, the span's resolution is multiplied by m so that
// the child's partial work shows up between two parent increments. A failed
// child marks the whole span failed.
func (s *Span) Progress() Progress {
	var running, failed *Span
	s.children.Range(func(_, value interface{}) bool {
		child := value.(*Span)
		switch child.status {
		case StatusRunning:
			running = child
		case StatusFailed:
			failed = child
		}
		return true
	})
	status := s.status
	errString := ""
	if s.err != nil {
		errString = s.err.Error()
	}
	if failed != nil {
		status = StatusFailed
		if failed.err != nil {
			errString = failed.err.Error()
		}
	}
	count, total := s.Count(), s.total
	if failed == nil && running != nil && running.total > 0 {
		count = count*running.total + running.Count()
		total = s.total * running.total
	}
	return Progress{
		Name:       s.name,
		Status:     status,
		Error:      errString,
		Count:      count,
		Total:      total,
		StartTime:  s.start,
		FinishTime: s.finish,
	}
}

// Start creates a child span under the span carried by ctx. Without a parent
// span in ctx, the child is standalone and never listed.
func Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	childSpan := &Span{
		name:   name,
		status: StatusRunning,
		total:  total,
		start:  time.Now(),
	}
	if ctx == nil {
		return nil, childSpan
	}
	span, ok := ctx.Value(spanKeyName).(*Span)
	if !ok {
		return ctx, childSpan
	}
	span.children.Store(name, childSpan)
	return context.WithValue(ctx, spanKeyName, childSpan), childSpan
}

// Fail marks the span carried by ctx as failed.
func Fail(ctx context.Context, err error) {
	if ctx == nil {
		return
	}
	if span, ok := ctx.Value(spanKeyName).(*Span); ok {
		span.Fail(err)
	}
}

type Progress struct {
	Tracer     string
	Name       string
	Status     Status
	Error      string
	Count      int
	Total      int
	StartTime  time.Time
	FinishTime time.Time
}
