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

package badger

import (
	"encoding/binary"

	"github.com/poiesic/askit/core"
)

// Key layout. Record keys map an ID to a serialized record; index keys
// carry their payload in the key itself and store no value.
//
//	c:<id>                 chunk record
//	cf:<fileId>:<index>    file index -> chunk id in value
//	e:<id>                 entity record
//	ek:<entityKey>         entity key index -> entity id in value
//	r:<id>                 relationship record
//	ra:<entityId>:<relId>  adjacency index, one per endpoint
const (
	chunkRecordPrefix      = "c:"
	chunkFilePrefix        = "cf:"
	entityRecordPrefix     = "e:"
	entityKeyPrefix        = "ek:"
	relationRecordPrefix   = "r:"
	relationAdjacentPrefix = "ra:"
)

func appendID(key []byte, id core.ID) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return append(key, buf[:]...)
}

func makeChunkRecordKey(id core.ID) []byte {
	return appendID([]byte(chunkRecordPrefix), id)
}

// File index keys hash the file id so arbitrary file identifiers stay
// fixed-width, then append the chunk index big-endian so a prefix scan
// yields chunks in index order.
func makeChunkFileKey(fileId string, chunkIndex int) []byte {
	key := appendID([]byte(chunkFilePrefix), core.IDFromContent(fileId))
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(chunkIndex))
	return append(key, buf[:]...)
}

func makeChunkFilePrefix(fileId string) []byte {
	return appendID([]byte(chunkFilePrefix), core.IDFromContent(fileId))
}

func makeEntityRecordKey(id core.ID) []byte {
	return appendID([]byte(entityRecordPrefix), id)
}

func makeEntityKeyIndexKey(entityKey string) []byte {
	return append([]byte(entityKeyPrefix), entityKey...)
}

func makeRelationRecordKey(id core.ID) []byte {
	return appendID([]byte(relationRecordPrefix), id)
}

func makeRelationAdjacentKey(entityId, relationshipId core.ID) []byte {
	return appendID(appendID([]byte(relationAdjacentPrefix), entityId), relationshipId)
}

func makeRelationAdjacentPrefix(entityId core.ID) []byte {
	return appendID([]byte(relationAdjacentPrefix), entityId)
}

func makeCheckpointKey(processorType string) []byte {
	return []byte("chkpt:" + processorType)
}

func idFromValue(value []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(value))
}

func idToValue(id core.ID) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}
