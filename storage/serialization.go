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


package storage

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/shelf/core"
)

// Serializers for every persisted record type. Written by hand against the
// mus-go primitives; field order is part of the on-disk format and must not
// change without a store migration.

var (
	strSliceMUS = ord.NewSliceSer[string](ord.String)
	f32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
)

// timeMUS serializes timestamps as Unix seconds plus a nanosecond
// remainder, with a sentinel for the zero time. Full nanosecond precision
// survives the round trip, so a record read back from the store compares
// Equal to the one that was written.
type timeSer struct{}

var timeMUS = timeSer{}

const zeroTimeSentinel = math.MinInt64

func (timeSer) Marshal(v time.Time, bs []byte) (n int) {
	if v.IsZero() {
		return varint.Int64.Marshal(zeroTimeSentinel, bs)
	}
	n = varint.Int64.Marshal(v.Unix(), bs)
	n += varint.Int64.Marshal(int64(v.Nanosecond()), bs[n:])
	return n
}

func (timeSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	var sec int64
	sec, n, err = varint.Int64.Unmarshal(bs)
	if err != nil || sec == zeroTimeSentinel {
		return
	}
	var nsec int64
	var n1 int
	nsec, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v = time.Unix(sec, nsec).UTC()
	return
}

func (timeSer) Size(v time.Time) int {
	if v.IsZero() {
		return varint.Int64.Size(zeroTimeSentinel)
	}
	return varint.Int64.Size(v.Unix()) + varint.Int64.Size(int64(v.Nanosecond()))
}

// idSer serializes core.ID values.
type idSer struct{}

var IDMUS = idSer{}

func (idSer) Marshal(v core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idSer) Unmarshal(bs []byte) (v core.ID, n int, err error) {
	var u uint64
	u, n, err = varint.Uint64.Unmarshal(bs)
	v = core.ID(u)
	return
}

func (idSer) Size(v core.ID) int {
	return varint.Uint64.Size(uint64(v))
}

// fileRecordSer serializes core.FileRecord values.
type fileRecordSer struct{}

var FileRecordMUS = fileRecordSer{}

func (fileRecordSer) Marshal(v core.FileRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Hash, bs[n:])
	n += ord.String.Marshal(v.Path, bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Extension, bs[n:])
	n += varint.Int64.Marshal(v.Size, bs[n:])
	n += timeMUS.Marshal(v.CreatedAt, bs[n:])
	n += timeMUS.Marshal(v.ModifiedAt, bs[n:])
	n += timeMUS.Marshal(v.LastAccessedAt, bs[n:])
	n += varint.Int.Marshal(v.AccessCount, bs[n:])
	n += ord.String.Marshal(v.Excerpt, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += strSliceMUS.Marshal(v.Tags, bs[n:])
	n += ord.String.Marshal(v.Project, bs[n:])
	n += ord.Bool.Marshal(v.IsDuplicate, bs[n:])
	n += IDMUS.Marshal(v.DuplicateOf, bs[n:])
	n += ord.Bool.Marshal(v.Hidden, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (fileRecordSer) Unmarshal(bs []byte) (v core.FileRecord, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Hash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Path, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Extension, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Size, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.CreatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ModifiedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.LastAccessedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.AccessCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Excerpt, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Tags, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Project, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.IsDuplicate, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.DuplicateOf, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Hidden, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Status = core.FileStatus(status)
	if v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (fileRecordSer) Size(v core.FileRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Hash)
	size += ord.String.Size(v.Path)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Extension)
	size += varint.Int64.Size(v.Size)
	size += timeMUS.Size(v.CreatedAt)
	size += timeMUS.Size(v.ModifiedAt)
	size += timeMUS.Size(v.LastAccessedAt)
	size += varint.Int.Size(v.AccessCount)
	size += ord.String.Size(v.Excerpt)
	size += ord.String.Size(v.Summary)
	size += strSliceMUS.Size(v.Tags)
	size += ord.String.Size(v.Project)
	size += ord.Bool.Size(v.IsDuplicate)
	size += IDMUS.Size(v.DuplicateOf)
	size += ord.Bool.Size(v.Hidden)
	size += varint.Int.Size(int(v.Status))
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return
}

// eventSer serializes core.Event values.
type eventSer struct{}

var EventMUS = eventSer{}

func (eventSer) Marshal(v core.Event, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.FileId, bs[n:])
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += timeMUS.Marshal(v.Timestamp, bs[n:])
	n += ord.String.Marshal(v.Detail, bs[n:])
	return
}

func (eventSer) Unmarshal(bs []byte) (v core.Event, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.FileId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var kind int
	if kind, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Kind = core.EventKind(kind)
	if v.Timestamp, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Detail, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (eventSer) Size(v core.Event) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.FileId)
	size += varint.Int.Size(int(v.Kind))
	size += timeMUS.Size(v.Timestamp)
	size += ord.String.Size(v.Detail)
	return
}

// vectorEntrySer serializes core.VectorEntry values.
type vectorEntrySer struct{}

var VectorEntryMUS = vectorEntrySer{}

func (vectorEntrySer) Marshal(v core.VectorEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.FileId, bs)
	n += f32SliceMUS.Marshal(v.Vector, bs[n:])
	n += raw.Float32.Marshal(v.Norm, bs[n:])
	n += varint.Int.Marshal(v.Dim, bs[n:])
	n += timeMUS.Marshal(v.GeneratedAt, bs[n:])
	return
}

func (vectorEntrySer) Unmarshal(bs []byte) (v core.VectorEntry, n int, err error) {
	var n1 int
	if v.FileId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Vector, n1, err = f32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Norm, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Dim, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.GeneratedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (vectorEntrySer) Size(v core.VectorEntry) (size int) {
	size = IDMUS.Size(v.FileId)
	size += f32SliceMUS.Size(v.Vector)
	size += raw.Float32.Size(v.Norm)
	size += varint.Int.Size(v.Dim)
	size += timeMUS.Size(v.GeneratedAt)
	return
}

// vectorMetaSer serializes core.VectorMeta values.
type vectorMetaSer struct{}

var VectorMetaMUS = vectorMetaSer{}

func (vectorMetaSer) Marshal(v core.VectorMeta, bs []byte) (n int) {
	n = ord.String.Marshal(v.Backend, bs)
	n += varint.Int.Marshal(v.Dim, bs[n:])
	n += varint.Uint64.Marshal(v.Generation, bs[n:])
	return
}

func (vectorMetaSer) Unmarshal(bs []byte) (v core.VectorMeta, n int, err error) {
	var n1 int
	if v.Backend, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Dim, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Generation, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (vectorMetaSer) Size(v core.VectorMeta) (size int) {
	size = ord.String.Size(v.Backend)
	size += varint.Int.Size(v.Dim)
	size += varint.Uint64.Size(v.Generation)
	return
}

// graphNodeSer serializes core.GraphNode values.
type graphNodeSer struct{}

var GraphNodeMUS = graphNodeSer{}

func (graphNodeSer) Marshal(v core.GraphNode, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += ord.String.Marshal(v.Label, bs[n:])
	n += IDMUS.Marshal(v.FileId, bs[n:])
	return
}

func (graphNodeSer) Unmarshal(bs []byte) (v core.GraphNode, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var kind int
	if kind, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Kind = core.NodeKind(kind)
	if v.Label, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FileId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (graphNodeSer) Size(v core.GraphNode) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int.Size(int(v.Kind))
	size += ord.String.Size(v.Label)
	size += IDMUS.Size(v.FileId)
	return
}

// graphEdgeSer serializes core.GraphEdge values.
type graphEdgeSer struct{}

var GraphEdgeMUS = graphEdgeSer{}

func (graphEdgeSer) Marshal(v core.GraphEdge, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Type), bs)
	n += IDMUS.Marshal(v.Source, bs[n:])
	n += IDMUS.Marshal(v.Target, bs[n:])
	n += raw.Float32.Marshal(v.Strength, bs[n:])
	n += varint.Uint64.Marshal(v.Seq, bs[n:])
	n += timeMUS.Marshal(v.LastSeen, bs[n:])
	return
}

func (graphEdgeSer) Unmarshal(bs []byte) (v core.GraphEdge, n int, err error) {
	var n1 int
	var typ int
	if typ, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	v.Type = core.EdgeType(typ)
	if v.Source, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Target, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Strength, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.LastSeen, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (graphEdgeSer) Size(v core.GraphEdge) (size int) {
	size = varint.Int.Size(int(v.Type))
	size += IDMUS.Size(v.Source)
	size += IDMUS.Size(v.Target)
	size += raw.Float32.Size(v.Strength)
	size += varint.Uint64.Size(v.Seq)
	size += timeMUS.Size(v.LastSeen)
	return
}

// patternSer serializes core.Pattern values.
type patternSer struct{}

var PatternMUS = patternSer{}

func (patternSer) Marshal(v core.Pattern, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Type, bs[n:])
	n += ord.String.Marshal(v.Key, bs[n:])
	n += ord.String.Marshal(v.Value, bs[n:])
	n += raw.Float32.Marshal(v.Confidence, bs[n:])
	n += varint.Int.Marshal(v.Frequency, bs[n:])
	n += timeMUS.Marshal(v.LastUsed, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return
}

func (patternSer) Unmarshal(bs []byte) (v core.Pattern, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Type, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Key, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Value, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Confidence, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Frequency, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.LastUsed, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (patternSer) Size(v core.Pattern) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Type)
	size += ord.String.Size(v.Key)
	size += ord.String.Size(v.Value)
	size += raw.Float32.Size(v.Confidence)
	size += varint.Int.Size(v.Frequency)
	size += timeMUS.Size(v.LastUsed)
	size += timeMUS.Size(v.InsertedAt)
	return
}

// filtersSer serializes core.Filters values.
type filtersSer struct{}

var FiltersMUS = filtersSer{}

func (filtersSer) Marshal(v core.Filters, bs []byte) (n int) {
	n = strSliceMUS.Marshal(v.Extensions, bs)
	n += strSliceMUS.Marshal(v.Tags, bs[n:])
	n += ord.String.Marshal(v.Project, bs[n:])
	n += timeMUS.Marshal(v.DateFrom, bs[n:])
	n += timeMUS.Marshal(v.DateTo, bs[n:])
	n += varint.Int64.Marshal(v.MinSize, bs[n:])
	n += varint.Int64.Marshal(v.MaxSize, bs[n:])
	n += ord.String.Marshal(v.Contains, bs[n:])
	n += ord.String.Marshal(v.FolderPrefix, bs[n:])
	n += ord.Bool.Marshal(v.Screenshots, bs[n:])
	n += ord.Bool.Marshal(v.Duplicates, bs[n:])
	return
}

func (filtersSer) Unmarshal(bs []byte) (v core.Filters, n int, err error) {
	var n1 int
	if v.Extensions, n, err = strSliceMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Tags, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Project, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.DateFrom, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.DateTo, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.MinSize, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.MaxSize, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Contains, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FolderPrefix, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Screenshots, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Duplicates, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (filtersSer) Size(v core.Filters) (size int) {
	size = strSliceMUS.Size(v.Extensions)
	size += strSliceMUS.Size(v.Tags)
	size += ord.String.Size(v.Project)
	size += timeMUS.Size(v.DateFrom)
	size += timeMUS.Size(v.DateTo)
	size += varint.Int64.Size(v.MinSize)
	size += varint.Int64.Size(v.MaxSize)
	size += ord.String.Size(v.Contains)
	size += ord.String.Size(v.FolderPrefix)
	size += ord.Bool.Size(v.Screenshots)
	size += ord.Bool.Size(v.Duplicates)
	return
}

// smartFolderSer serializes core.SmartFolderSpec values.
type smartFolderSer struct{}

var SmartFolderMUS = smartFolderSer{}

func (smartFolderSer) Marshal(v core.SmartFolderSpec, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.Icon, bs[n:])
	n += FiltersMUS.Marshal(v.Filters, bs[n:])
	n += varint.Int.Marshal(v.UseCount, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (smartFolderSer) Unmarshal(bs []byte) (v core.SmartFolderSpec, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Icon, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Filters, n1, err = FiltersMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UseCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (smartFolderSer) Size(v core.SmartFolderSpec) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.Icon)
	size += FiltersMUS.Size(v.Filters)
	size += varint.Int.Size(v.UseCount)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalFileRecord serializes a FileRecord to bytes.
func MarshalFileRecord(record *core.FileRecord) []byte {
	buf := make([]byte, FileRecordMUS.Size(*record))
	FileRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalFileRecord deserializes a FileRecord from bytes.
func UnmarshalFileRecord(data []byte) (*core.FileRecord, error) {
	record, _, err := FileRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalEvent serializes an Event to bytes.
func MarshalEvent(event *core.Event) []byte {
	buf := make([]byte, EventMUS.Size(*event))
	EventMUS.Marshal(*event, buf)
	return buf
}

// UnmarshalEvent deserializes an Event from bytes.
func UnmarshalEvent(data []byte) (*core.Event, error) {
	event, _, err := EventMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarshalVectorEntry serializes a VectorEntry to bytes.
func MarshalVectorEntry(entry *core.VectorEntry) []byte {
	buf := make([]byte, VectorEntryMUS.Size(*entry))
	VectorEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalVectorEntry deserializes a VectorEntry from bytes.
func UnmarshalVectorEntry(data []byte) (*core.VectorEntry, error) {
	entry, _, err := VectorEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalVectorMeta serializes a VectorMeta to bytes.
func MarshalVectorMeta(meta *core.VectorMeta) []byte {
	buf := make([]byte, VectorMetaMUS.Size(*meta))
	VectorMetaMUS.Marshal(*meta, buf)
	return buf
}

// UnmarshalVectorMeta deserializes a VectorMeta from bytes.
func UnmarshalVectorMeta(data []byte) (*core.VectorMeta, error) {
	meta, _, err := VectorMetaMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// MarshalGraphNode serializes a GraphNode to bytes.
func MarshalGraphNode(node *core.GraphNode) []byte {
	buf := make([]byte, GraphNodeMUS.Size(*node))
	GraphNodeMUS.Marshal(*node, buf)
	return buf
}

// UnmarshalGraphNode deserializes a GraphNode from bytes.
func UnmarshalGraphNode(data []byte) (*core.GraphNode, error) {
	node, _, err := GraphNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// MarshalGraphEdge serializes a GraphEdge to bytes.
func MarshalGraphEdge(edge *core.GraphEdge) []byte {
	buf := make([]byte, GraphEdgeMUS.Size(*edge))
	GraphEdgeMUS.Marshal(*edge, buf)
	return buf
}

// UnmarshalGraphEdge deserializes a GraphEdge from bytes.
func UnmarshalGraphEdge(data []byte) (*core.GraphEdge, error) {
	edge, _, err := GraphEdgeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// MarshalPattern serializes a Pattern to bytes.
func MarshalPattern(pattern *core.Pattern) []byte {
	buf := make([]byte, PatternMUS.Size(*pattern))
	PatternMUS.Marshal(*pattern, buf)
	return buf
}

// UnmarshalPattern deserializes a Pattern from bytes.
func UnmarshalPattern(data []byte) (*core.Pattern, error) {
	pattern, _, err := PatternMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

// MarshalSmartFolder serializes a SmartFolderSpec to bytes.
func MarshalSmartFolder(spec *core.SmartFolderSpec) []byte {
	buf := make([]byte, SmartFolderMUS.Size(*spec))
	SmartFolderMUS.Marshal(*spec, buf)
	return buf
}

// UnmarshalSmartFolder deserializes a SmartFolderSpec from bytes.
func UnmarshalSmartFolder(data []byte) (*core.SmartFolderSpec, error) {
	spec, _, err := SmartFolderMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
