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

import "errors"

// Domain validation errors
var (
	// ErrInvalidFileRecord indicates a FileRecord failed validation.
	ErrInvalidFileRecord = errors.New("invalid file record")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrInvalidEventKind indicates an unrecognized EventKind value.
	ErrInvalidEventKind = errors.New("invalid event kind")

	// ErrInvalidNodeKind indicates an unrecognized NodeKind value.
	ErrInvalidNodeKind = errors.New("invalid node kind")

	// ErrInvalidEdgeType indicates an unrecognized EdgeType value.
	ErrInvalidEdgeType = errors.New("invalid edge type")

	// ErrStrengthOutOfRange indicates an edge strength outside [0, 1].
	ErrStrengthOutOfRange = errors.New("edge strength must be in [0, 1]")

	// ErrConfidenceOutOfRange indicates a pattern confidence outside [0, 1].
	ErrConfidenceOutOfRange = errors.New("confidence must be in [0, 1]")

	// ErrSignalOutOfRange indicates an observation signal outside [0, 1].
	ErrSignalOutOfRange = errors.New("signal must be in [0, 1]")

	// ErrEmptyPatternKey indicates a pattern with an empty type or key.
	ErrEmptyPatternKey = errors.New("pattern type and key cannot be empty")

	// ErrEmptyFolderName indicates a smart folder with an empty name.
	ErrEmptyFolderName = errors.New("smart folder name cannot be empty")

	// ErrInvalidFilter indicates a smart folder filter with unknown keys
	// or inconsistent values.
	ErrInvalidFilter = errors.New("invalid smart folder filter")
)
