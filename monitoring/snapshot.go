// Licensed to the lpel project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The lpel project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Snapshot encodes a point-in-time view of live tasks as a FlatBuffers
// buffer for the admin plane's /tasks.fb endpoint. There is no .fbs
// schema or generated accessor code here: the wire layout below is built
// and read directly against the flatbuffers.Builder/Table runtime, the
// same way a generated accessor would, but written by hand.
//
// Wire layout (vtable slot indices fixed by the Start*/Add* helpers
// below; keep the encode and decode side in lock-step if you touch them):
//
//	TaskRecord table:
//	  0: uid      uint64
//	  1: name     string offset
//	  2: state    uint8  ('C'|'R'|'U'|'B'|'Z')
//	  3: blockon  uint8  (0 | 'i' | 'o' | 'a')
//	  4: disp     uint32
//
//	Snapshot table (root):
//	  0: worker      int32
//	  1: taken_usec  int64
//	  2: tasks       vector<offset<TaskRecord>>
package monitoring

import flatbuffers "github.com/google/flatbuffers/go"

// TaskRecord is the decoded form of one TaskRecord table entry.
type TaskRecord struct {
	UID     uint64
	Name    string
	State   byte
	BlockOn byte
	Disp    uint32
}

// BuildSnapshot encodes worker's current tasks as a FlatBuffers buffer.
func BuildSnapshot(workerID int, takenUsec int64, tasks []TaskRecord) []byte {
	b := flatbuffers.NewBuilder(1024)

	recordOffsets := make([]flatbuffers.UOffsetT, len(tasks))
	for i, t := range tasks {
		nameOff := b.CreateString(t.Name)

		b.StartObject(5)
		b.PrependUint64Slot(0, t.UID, 0)
		b.PrependUOffsetTSlot(1, nameOff, 0)
		b.PrependByteSlot(2, t.State, 0)
		b.PrependByteSlot(3, t.BlockOn, 0)
		b.PrependUint32Slot(4, t.Disp, 0)
		recordOffsets[i] = b.EndObject()
	}

	b.StartVector(flatbuffers.SizeUOffsetT, len(recordOffsets), flatbuffers.SizeUOffsetT)
	for i := len(recordOffsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(recordOffsets[i])
	}
	tasksVec := b.EndVector(len(recordOffsets))

	b.StartObject(3)
	b.PrependInt32Slot(0, int32(workerID), 0)
	b.PrependInt64Slot(1, takenUsec, 0)
	b.PrependUOffsetTSlot(2, tasksVec, 0)
	root := b.EndObject()

	b.Finish(root)
	return b.FinishedBytes()
}

// ReadSnapshot decodes a buffer produced by BuildSnapshot. Used by the
// operator CLI to render a snapshot fetched from the admin plane.
func ReadSnapshot(buf []byte) (workerID int, takenUsec int64, tasks []TaskRecord) {
	root := flatbuffers.GetUOffsetT(buf)
	var snap flatbuffers.Table
	snap.Bytes = buf
	snap.Pos = root

	if off := snap.Offset(4); off != 0 { // slot 0 -> vtable offset 4
		workerID = int(snap.GetInt32(snap.Pos + flatbuffers.UOffsetT(off)))
	}
	if off := snap.Offset(6); off != 0 { // slot 1 -> vtable offset 6
		takenUsec = snap.GetInt64(snap.Pos + flatbuffers.UOffsetT(off))
	}

	off := snap.Offset(8) // slot 2 -> vtable offset 8
	if off == 0 {
		return workerID, takenUsec, nil
	}
	vecStart := snap.Vector(flatbuffers.UOffsetT(off))
	n := snap.VectorLen(flatbuffers.UOffsetT(off))

	tasks = make([]TaskRecord, 0, n)
	for i := 0; i < n; i++ {
		elemPos := vecStart + flatbuffers.UOffsetT(i)*flatbuffers.SizeUOffsetT
		indirect := flatbuffers.UOffsetT(flatbuffers.GetUOffsetT(buf[elemPos:])) + elemPos

		var rec flatbuffers.Table
		rec.Bytes = buf
		rec.Pos = indirect

		var t TaskRecord
		if o := rec.Offset(4); o != 0 {
			t.UID = rec.GetUint64(rec.Pos + flatbuffers.UOffsetT(o))
		}
		if o := rec.Offset(6); o != 0 {
			t.Name = rec.String(rec.Pos + flatbuffers.UOffsetT(o))
		}
		if o := rec.Offset(8); o != 0 {
			t.State = rec.GetByte(rec.Pos + flatbuffers.UOffsetT(o))
		}
		if o := rec.Offset(10); o != 0 {
			t.BlockOn = rec.GetByte(rec.Pos + flatbuffers.UOffsetT(o))
		}
		if o := rec.Offset(12); o != 0 {
			t.Disp = rec.GetUint32(rec.Pos + flatbuffers.UOffsetT(o))
		}
		tasks = append(tasks, t)
	}
	return workerID, takenUsec, tasks
}
