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


package core

import "fmt"

// ValidateFileRecord validates a FileRecord according to domain rules.
//
// Validation rules:
//   - Path must not be empty
//   - Status must be live or removed
//
// NOT validated (populated by processors):
//   - Hash, Excerpt, Summary (can be empty until the scanner runs)
//   - ID (0 is valid from database sequences)
func ValidateFileRecord(record *FileRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidFileRecord)
	}

	if record.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFileRecord, ErrEmptyPath)
	}

	if record.Status != FileStatusLive && record.Status != FileStatusRemoved {
		return fmt.Errorf("%w: status %d", ErrInvalidFileRecord, record.Status)
	}

	return nil
}

// ValidateEventKind validates that an EventKind has a valid value.
func ValidateEventKind(kind EventKind) error {
	if kind < EventDiscovered || kind > EventTagged {
		return fmt.Errorf("%w: value %d", ErrInvalidEventKind, kind)
	}
	return nil
}

// ValidateNodeKind validates that a NodeKind has a valid value.
func ValidateNodeKind(kind NodeKind) error {
	if kind < NodeFile || kind > NodeTag {
		return fmt.Errorf("%w: value %d", ErrInvalidNodeKind, kind)
	}
	return nil
}

// ValidateEdge validates a GraphEdge according to domain rules.
//
// Validation rules:
//   - Type must be a recognized EdgeType
//   - Strength must lie in [0, 1]
//   - Source and Target must be set and distinct
func ValidateEdge(edge *GraphEdge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidEdgeType)
	}

	if edge.Type < EdgeBelongsTo || edge.Type > EdgeAccessedWith {
		return fmt.Errorf("%w: value %d", ErrInvalidEdgeType, edge.Type)
	}

	if edge.Strength < 0 || edge.Strength > 1 {
		return fmt.Errorf("%w: value %f", ErrStrengthOutOfRange, edge.Strength)
	}

	if edge.Source == 0 || edge.Target == 0 || edge.Source == edge.Target {
		return fmt.Errorf("%w: source %d target %d", ErrInvalidEdgeType, edge.Source, edge.Target)
	}

	return nil
}

// ValidatePattern validates a Pattern according to domain rules.
func ValidatePattern(pattern *Pattern) error {
	if pattern == nil {
		return fmt.Errorf("%w: pattern is nil", ErrEmptyPatternKey)
	}

	if pattern.Type == "" || pattern.Key == "" {
		return ErrEmptyPatternKey
	}

	if pattern.Confidence < 0 || pattern.Confidence > 1 {
		return fmt.Errorf("%w: value %f", ErrConfidenceOutOfRange, pattern.Confidence)
	}

	return nil
}

// ValidateSignal validates an observation signal value.
func ValidateSignal(signal float32) error {
	if signal < 0 || signal > 1 {
		return fmt.Errorf("%w: value %f", ErrSignalOutOfRange, signal)
	}
	return nil
}
