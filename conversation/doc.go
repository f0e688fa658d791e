// Package conversation answers questions about the indexed corpus.
//
// A request is a sequence of chat turns whose last entry is the current
// question. Service.Ask runs three steps in order:
//
//   - Condenser rewrites the question into a standalone question using the
//     windowed history. With no history the question passes through
//     unchanged and no model call is made.
//   - Retriever embeds the standalone question and fetches the nearest
//     records of the configured namespace.
//   - Streamer prompts the chat model with the retrieved context and emits
//     the answer token by token, followed by the source documents.
//
// WriteStream merges those events into the wire format: the raw answer
// text, then SourceDocumentsMarker, then the sources as a JSON array.
// ParseMessage splits such a message back apart.
package conversation
