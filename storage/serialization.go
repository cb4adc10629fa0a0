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
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/askit/core"
)

// TurnMUS is the MUS serializer for core.Turn. Timestamps are encoded as
// Unix microseconds.
var TurnMUS = turnMUS{}

type turnMUS struct{}

func (turnMUS) Marshal(v core.Turn, bs []byte) (n int) {
	n = ord.String.Marshal(v.SessionID, bs)
	n += varint.Int.Marshal(int(v.Role), bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
	return
}

func (turnMUS) Unmarshal(bs []byte) (v core.Turn, n int, err error) {
	var n1 int
	v.SessionID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var role int
	role, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Role = core.Role(role)
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp = time.UnixMicro(micro).UTC()
	return
}

func (turnMUS) Size(v core.Turn) (size int) {
	size = ord.String.Size(v.SessionID)
	size += varint.Int.Size(int(v.Role))
	size += ord.String.Size(v.Content)
	size += varint.Int64.Size(v.Timestamp.UnixMicro())
	return
}

func (turnMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

// ChunkMUS is the MUS serializer for core.DocumentChunk. Vector elements
// are encoded as varint IEEE 754 bit patterns.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v core.DocumentChunk, bs []byte) (n int) {
	n = ord.String.Marshal(v.SourceID, bs)
	n += varint.Int.Marshal(v.Index, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return
}

func (chunkMUS) Unmarshal(bs []byte) (v core.DocumentChunk, n int, err error) {
	var n1 int
	v.SourceID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 {
		err = ErrSerializationFailed
		return
	}
	if length > 0 {
		v.Vector = make([]float32, length)
		for i := 0; i < length; i++ {
			var bits uint32
			bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Vector[i] = math.Float32frombits(bits)
		}
	}
	return
}

func (chunkMUS) Size(v core.DocumentChunk) (size int) {
	size = ord.String.Size(v.SourceID)
	size += varint.Int.Size(v.Index)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return
}

func (chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < length; i++ {
		n1, err = varint.Uint32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// MarshalChunk serializes a DocumentChunk to bytes.
func MarshalChunk(chunk *core.DocumentChunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a DocumentChunk from bytes.
func UnmarshalChunk(data []byte) (*core.DocumentChunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalTurn serializes a Turn to bytes.
func MarshalTurn(turn *core.Turn) []byte {
	buf := make([]byte, TurnMUS.Size(*turn))
	TurnMUS.Marshal(*turn, buf)
	return buf
}

// UnmarshalTurn deserializes a Turn from bytes.
func UnmarshalTurn(data []byte) (*core.Turn, error) {
	turn, _, err := TurnMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &turn, nil
}
