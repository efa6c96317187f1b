// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package evaluation records per-request quality metrics and checks
// them against pass/fail thresholds.
package evaluation

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/askit/core"
)

// Record captures the quality metrics of one answered query.
type Record struct {
	RequestId         uuid.UUID
	QueryType         core.QueryType
	Confidence        float32
	TotalLatency      time.Duration
	RetrievalLatency  time.Duration
	GenerationLatency time.Duration
	ResultCount       int
	Passing           bool
	Timestamp         time.Time
}

// Thresholds define when a request counts as passing.
type Thresholds struct {
	MaxLatency    time.Duration
	MinConfidence float32
}

// DefaultThresholds returns the standard quality bar: answered within
// five seconds at high confidence.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxLatency:    5 * time.Second,
		MinConfidence: 0.7,
	}
}

// Evaluate reports whether a record meets the thresholds.
func (t Thresholds) Evaluate(record *Record) bool {
	return record.TotalLatency <= t.MaxLatency && record.Confidence >= t.MinConfidence
}

// NewRecord creates an evaluation record with a fresh request id,
// marking it against the given thresholds.
func NewRecord(queryType core.QueryType, confidence float32, total, retrieval, generation time.Duration, resultCount int, thresholds Thresholds) *Record {
	record := &Record{
		RequestId:         uuid.New(),
		QueryType:         queryType,
		Confidence:        confidence,
		TotalLatency:      total,
		RetrievalLatency:  retrieval,
		GenerationLatency: generation,
		ResultCount:       resultCount,
		Timestamp:         time.Now().UTC(),
	}
	record.Passing = thresholds.Evaluate(record)
	return record
}

// Recorder receives evaluation records as requests complete.
type Recorder interface {
	Record(record *Record)
}

// LogRecorder writes evaluation records to a structured logger.
type LogRecorder struct {
	logger *slog.Logger
}

var _ Recorder = (*LogRecorder)(nil)

// NewLogRecorder creates a recorder backed by the given logger.
// A nil logger uses slog.Default().
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger}
}

// Record implements Recorder.
func (r *LogRecorder) Record(record *Record) {
	r.logger.Info("request evaluated",
		"request_id", record.RequestId,
		"query_type", record.QueryType,
		"confidence", record.Confidence,
		"total_latency", record.TotalLatency,
		"retrieval_latency", record.RetrievalLatency,
		"generation_latency", record.GenerationLatency,
		"result_count", record.ResultCount,
		"passing", record.Passing,
	)
}

// NopRecorder discards all records.
type NopRecorder struct{}

var _ Recorder = (*NopRecorder)(nil)

// Record implements Recorder.
func (NopRecorder) Record(_ *Record) {}
