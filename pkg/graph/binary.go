package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"unsafe"
)

// This is the on-disk graph format written by cmd/preprocess. Nothing in
// this repository reads it back for serving: osm.Provider re-parses the PBF
// extract on every cache miss, and roadgraph.Cache keeps graphs in memory
// only. The format itself — CRC32-trailed, zero-copy via unsafe.Slice, atomic
// rename-on-write — is unchanged from the teacher's CH binary format; only
// the payload shrinks to the plain CSR Graph since no hierarchy is
// precomputed for this system's per-query shape-biased costs.

const (
	magicBytes = "GPSARTGR"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a Graph to a binary file, writing to a temp file
// and renaming atomically so a crash mid-write never corrupts the cache.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:  version,
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeFloat64Slice(w, g.NodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, g.NodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeUint32Slice(w, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, g.Head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeUint32Slice(w, g.Weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}

	// Geometry (length-prefixed, optional — small synthetic graphs carry none).
	if err := writeLenPrefixedUint32(w, g.GeoFirstOut); err != nil {
		return fmt.Errorf("write GeoFirstOut: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLat); err != nil {
		return fmt.Errorf("write GeoShapeLat: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLon); err != nil {
		return fmt.Errorf("write GeoShapeLon: %w", err)
	}

	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a Graph from a binary file.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}

	if g.NodeLat, err = readFloat64Slice(r, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64Slice(r, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if g.FirstOut, err = readUint32Slice(r, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Head, err = readUint32Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.Weight, err = readUint32Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}

	g.GeoFirstOut, _ = readUint32SliceOptional(r)
	g.GeoShapeLat, _ = readFloat64SliceOptional(r)
	g.GeoShapeLon, _ = readFloat64SliceOptional(r)

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("CSR invalid: %w", err)
	}

	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeLenPrefixedUint32(w io.Writer, s []uint32) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeUint32Slice(w, s)
}

func writeLenPrefixedFloat64(w io.Writer, s []float64) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeFloat64Slice(w, s)
}

// readUint32SliceOptional reads a uint32 length prefix then the slice data.
// Returns nil, nil if at EOF or data unavailable.
func readUint32SliceOptional(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil // EOF or error — geometry is optional
	}
	if n == 0 || n > math.MaxUint32/4 {
		return nil, nil
	}
	return readUint32Slice(r, int(n))
}

func readFloat64SliceOptional(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil
	}
	if n == 0 || n > math.MaxUint32/8 {
		return nil, nil
	}
	return readFloat64Slice(r, int(n))
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
