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
	"fmt"

	"github.com/poiesic/docchat/core"
)

// MarshalIndexRecord serializes an IndexRecord to bytes.
func MarshalIndexRecord(record *core.IndexRecord) []byte {
	buf := make([]byte, core.IndexRecordMUS.Size(*record))
	core.IndexRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalIndexRecord deserializes an IndexRecord from bytes.
func UnmarshalIndexRecord(data []byte) (*core.IndexRecord, error) {
	record, _, err := core.IndexRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalIndexDescriptor serializes an IndexDescriptor to bytes.
func MarshalIndexDescriptor(desc *core.IndexDescriptor) []byte {
	buf := make([]byte, core.IndexDescriptorMUS.Size(*desc))
	core.IndexDescriptorMUS.Marshal(*desc, buf)
	return buf
}

// UnmarshalIndexDescriptor deserializes an IndexDescriptor from bytes.
func UnmarshalIndexDescriptor(data []byte) (*core.IndexDescriptor, error) {
	desc, _, err := core.IndexDescriptorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &desc, nil
}
