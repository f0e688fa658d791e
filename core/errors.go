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

// Pipeline errors. Callers match them with errors.Is; the wrapped cause
// carries the details.
var (
	// ErrUnsupportedFormat indicates no loader is registered for a file extension.
	ErrUnsupportedFormat = errors.New("unsupported file extension")

	// ErrConfiguration indicates a required setting is missing or invalid.
	ErrConfiguration = errors.New("configuration error")

	// ErrLoad indicates a loader failed while parsing a file or URL.
	ErrLoad = errors.New("load failed")

	// ErrEmbedding indicates the embedding service failed during ingestion.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite indicates the vector index rejected an upsert batch.
	ErrIndexWrite = errors.New("index write failed")

	// ErrRetrieval indicates the similarity search for a question failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrCondensation indicates a follow-up question could not be rewritten.
	ErrCondensation = errors.New("question condensation failed")

	// ErrGeneration indicates the answer stream ended early.
	ErrGeneration = errors.New("answer generation failed")
)

// Domain validation errors
var (
	// ErrEmptyConversation indicates a chat request carried no messages.
	ErrEmptyConversation = errors.New("conversation has no messages")

	// ErrInvalidConversation indicates the last message is not a user question.
	ErrInvalidConversation = errors.New("last message must be a user question")

	// ErrInvalidRole indicates a message role other than user or assistant.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrEmptyContent indicates the question text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
