package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	indexDescriptorPrefix = "idxdesc"
	indexRecordPrefix     = "idxrec"
	manifestPrefix        = "manifest"
)

// appendSegment appends s preceded by its uvarint length so that a segment
// can never be mistaken for the prefix of a longer one.
func appendSegment(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// makeDescriptorKey generates the key holding an index descriptor.
// Format: prefix:index
func makeDescriptorKey(index string) []byte {
	return appendSegment([]byte(indexDescriptorPrefix+":"), index)
}

// makeIndexPrefix generates the prefix shared by every record of an index.
// Format: prefix:index
func makeIndexPrefix(index string) []byte {
	return appendSegment([]byte(indexRecordPrefix+":"), index)
}

// makeNamespacePrefix generates the prefix shared by every record of a namespace.
// Format: prefix:index:namespace
func makeNamespacePrefix(index, namespace string) []byte {
	return appendSegment(makeIndexPrefix(index), namespace)
}

// makeRecordKey generates the key for a record.
// Format: prefix:index:namespace:id
func makeRecordKey(index, namespace string, id uint64) []byte {
	buf := makeNamespacePrefix(index, namespace)
	// BigEndian so records iterate in ID order
	return binary.BigEndian.AppendUint64(buf, id)
}

// makeManifestIndexPrefix generates the prefix shared by manifest entries of an index.
// Format: prefix:index
func makeManifestIndexPrefix(index string) []byte {
	return appendSegment([]byte(manifestPrefix+":"), index)
}

// makeManifestPrefix generates the prefix shared by manifest entries of a namespace.
// Format: prefix:index:namespace
func makeManifestPrefix(index, namespace string) []byte {
	return appendSegment(makeManifestIndexPrefix(index), namespace)
}

// makeManifestKey generates the key for one ingested path.
// Format: prefix:index:namespace:path
func makeManifestKey(index, namespace, path string) []byte {
	return append(makeManifestPrefix(index, namespace), path...)
}
