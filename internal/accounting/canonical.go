package accounting

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainNode is the hash domain for node content hashes.
// Version suffix enables future algorithm migration.
const DomainNode = "factoryledger/node/v1"

// MarshalCanonical produces the canonical JSON of a node.
//
// Differences from MarshalNode:
//  1. Group names are NFC normalized
//  2. No HTML escaping (< > & are NOT escaped)
//  3. No trailing newline
//
// Field order is fixed by the document structs, so equal content always
// produces identical bytes. The cached balance is never included.
func MarshalCanonical(n Node) ([]byte, error) {
	doc := ToDoc(n)
	normalizeDoc(&doc)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func normalizeDoc(d *NodeDoc) {
	if d.Group == nil {
		return
	}
	d.Group.Name = norm.NFC.String(d.Group.Name)
	for i := range d.Group.Children {
		normalizeDoc(&d.Group.Children[i])
	}
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NodeHash computes the content hash of a node's canonical JSON.
func NodeHash(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("NodeHash: %w", err)
	}
	return hashWithDomain(DomainNode, canonical), nil
}

// MustNodeHash is like NodeHash but panics on error.
// Use only in tests or when the node is known to be valid.
func MustNodeHash(n Node) string {
	h, err := NodeHash(n)
	if err != nil {
		panic(err)
	}
	return h
}
