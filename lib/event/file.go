// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// fileEvent is one entry of an event file.
type fileEvent struct {
	Kind    string     `yaml:"kind"`
	Ordinal *int       `yaml:"ordinal"`
	Time    time.Time  `yaml:"time"`
	EndTime *time.Time `yaml:"end_time"`
}

// ParseFile reads a YAML list of events for one course:
//
//	- kind: homework
//	  ordinal: 1
//	  time: 2026-03-01T09:00:00Z
//	  end_time: 2026-03-08T09:00:00Z
//	- kind: exam
//	  time: 2026-04-20T10:00:00+02:00
func ParseFile(courseID string, data []byte) ([]Event, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var entries []fileEvent
	if err := decoder.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing event file: %w", err)
	}

	events := make([]Event, 0, len(entries))
	for i, entry := range entries {
		event := Event{
			CourseID: courseID,
			Kind:     entry.Kind,
			Ordinal:  entry.Ordinal,
			Time:     entry.Time,
			EndTime:  entry.EndTime,
		}
		if err := event.Validate(); err != nil {
			return nil, fmt.Errorf("event file entry %d: %w", i, err)
		}
		events = append(events, event)
	}
	return events, nil
}
