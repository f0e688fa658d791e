// Package httpapi exposes chat, ingestion and deletion over HTTP with gin.
//
// Routes:
//
//	POST /api/chat              {"messages":[{"role","content"}]} -> text/plain answer stream
//	POST /api/ingest            multipart "files" -> {"message": ...}
//	POST /api/ingest-url        {"url": ...} -> {"message": ...}
//	POST /api/delete-documents  -> {"message": "Successfully deleted"}
//
// The chat stream is the answer text followed by the source documents
// marker and a JSON list of sources; see conversation.WriteStream.
// Malformed requests get a 422 with a ValidationError body.
package httpapi
