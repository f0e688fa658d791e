// Package loader turns source files and web pages into core.Documents.
//
// A Registry maps exact, case-sensitive file extensions (".pdf", ".txt", ...)
// to a DocumentLoader. DefaultRegistry carries every format docchat ingests:
//
//	.txt .md        plain text
//	.csv            one document per row, page = 1-based row number
//	.html           visible text of the page
//	.pdf            one document per page, page = 1-based page number
//	.docx           text runs of the main document part
//	.pptx           one document per slide, page = 1-based slide number
//	.doc .ppt       printable text recovered from the legacy binary formats
//
// URLs are handled separately by WebLoader.
//
// Every document's Metadata.Source is the path (or URL) it was loaded from.
// Failures name the path and wrap core.ErrLoad; an extension with no
// registered loader yields core.ErrUnsupportedFormat.
package loader
