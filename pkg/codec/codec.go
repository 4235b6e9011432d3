// Package codec serializes graph values into a canonical byte form.
// Nodes and edges are written in canonical id order, so two equal
// graphs encode to identical bytes regardless of construction history,
// and no two distinct graphs share an encoding. Decode treats its
// input as untrusted: record ids are recomputed from content and the
// referential-closure invariant is re-validated on ingest.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
	"github.com/casgraph/casgraph/pkg/model"
)

// Version is the current wire format version.
const Version = 1

var magic = [4]byte{'C', 'G', 'R', 'F'}

const (
	labelAbsent  = 0x00
	labelPresent = 0x01
)

// Encode serializes the graph into its canonical byte form.
func Encode(g *graph.Graph) []byte {
	var buffer bytes.Buffer
	var lenBuf [binary.MaxVarintLen64]byte

	buffer.Write(magic[:])
	buffer.WriteByte(Version)

	n := binary.PutUvarint(lenBuf[:], uint64(g.NodeCount()))
	buffer.Write(lenBuf[:n])
	for node := range g.Nodes() {
		buffer.Write(node.ID.Bytes())
		n = binary.PutUvarint(lenBuf[:], uint64(len(node.Payload)))
		buffer.Write(lenBuf[:n])
		buffer.Write(node.Payload)
	}

	n = binary.PutUvarint(lenBuf[:], uint64(g.EdgeCount()))
	buffer.Write(lenBuf[:n])
	for edge := range g.Edges() {
		buffer.Write(edge.ID.Bytes())
		buffer.Write(edge.Source.Bytes())
		buffer.Write(edge.Target.Bytes())
		if len(edge.Label) == 0 {
			buffer.WriteByte(labelAbsent)
			continue
		}
		buffer.WriteByte(labelPresent)
		n = binary.PutUvarint(lenBuf[:], uint64(len(edge.Label)))
		buffer.Write(lenBuf[:n])
		buffer.Write(edge.Label)
	}

	return buffer.Bytes()
}

// Decode parses a canonical encoding back into a graph. It fails with
// a *DecodeError: Malformed for truncated, corrupt or non-canonical
// input, VersionMismatch for an unknown format version, and
// DanglingEndpoint if a decoded edge references a missing node.
func Decode(data []byte) (*graph.Graph, error) {
	r := bytes.NewReader(data)

	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, malformed("input shorter than header")
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, malformed("bad magic")
	}
	if header[4] != Version {
		return nil, &DecodeError{
			Kind:   VersionMismatch,
			Detail: fmt.Sprintf("version %d, want %d", header[4], Version),
		}
	}

	builder := graph.NewBuilder()

	nodeCount, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, malformed("node count: truncated")
	}
	var prev identity.Hash
	for i := uint64(0); i < nodeCount; i++ {
		id, err := readHash(r)
		if err != nil {
			return nil, malformed("node id: truncated")
		}
		if i > 0 && prev.Compare(id) >= 0 {
			return nil, malformed("node records out of canonical order")
		}
		prev = id

		payloadLen, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, malformed("payload length: truncated")
		}
		if payloadLen > uint64(r.Len()) {
			return nil, malformed("payload length exceeds remaining input")
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, malformed("payload: truncated")
		}

		node := model.NewNode(payload)
		if node.ID != id {
			return nil, malformed("node id does not match payload content")
		}
		builder.AddNode(node)
	}

	edgeCount, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, malformed("edge count: truncated")
	}
	prev = identity.Hash{}
	for i := uint64(0); i < edgeCount; i++ {
		id, err := readHash(r)
		if err != nil {
			return nil, malformed("edge id: truncated")
		}
		if i > 0 && prev.Compare(id) >= 0 {
			return nil, malformed("edge records out of canonical order")
		}
		prev = id

		source, err := readHash(r)
		if err != nil {
			return nil, malformed("edge source: truncated")
		}
		target, err := readHash(r)
		if err != nil {
			return nil, malformed("edge target: truncated")
		}

		flag, err := r.ReadByte()
		if err != nil {
			return nil, malformed("label flag: truncated")
		}
		var label []byte
		switch flag {
		case labelAbsent:
		case labelPresent:
			labelLen, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, malformed("label length: truncated")
			}
			if labelLen == 0 || labelLen > identity.MaxLabelLen {
				return nil, malformed("label length out of range")
			}
			label = make([]byte, labelLen)
			if _, err := io.ReadFull(r, label); err != nil {
				return nil, malformed("label: truncated")
			}
		default:
			return nil, malformed("invalid label flag")
		}

		edge, err := model.NewEdge(source, target, label)
		if err != nil {
			return nil, malformed("unencodable edge label")
		}
		if edge.ID != id {
			return nil, malformed("edge id does not match edge content")
		}
		builder.AddEdge(edge)
	}

	if r.Len() != 0 {
		return nil, malformed("trailing bytes after edge section")
	}

	g, err := builder.Build()
	if err != nil {
		var dangling *graph.DanglingEndpointError
		if errors.As(err, &dangling) {
			return nil, &DecodeError{
				Kind:   DanglingEndpoint,
				Detail: fmt.Sprintf("edge references absent node %s", dangling.Endpoint),
			}
		}
		return nil, fmt.Errorf("assemble graph: %w", err)
	}
	return g, nil
}

func readHash(r *bytes.Reader) (identity.Hash, error) {
	var h identity.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return identity.Hash{}, err
	}
	return h, nil
}
