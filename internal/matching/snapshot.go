package matching

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// snapshotVersion identifies the on-disk snapshot layout.
const snapshotVersion = 1

// Decode limits so a corrupt or hostile snapshot cannot force huge
// allocations before the garbage is detected.
const (
	maxSnapshotDims  = 1024
	maxSnapshotIDLen = 4096
)

// Snapshot is an explicit, storage-agnostic representation of an index:
// the ordered identifier list and the parallel ordered vector list. The
// spatial index is derived state and deliberately excluded; a restored index
// rebuilds it on first query.
type Snapshot struct {
	Version int         `json:"version"`
	IDs     []string    `json:"ids"`
	Vectors [][]float64 `json:"vectors"`
}

// Snapshot captures the index's candidate pool as a deep copy.
func (ix *Index) Snapshot() *Snapshot {
	s := &Snapshot{
		Version: snapshotVersion,
		IDs:     append([]string(nil), ix.ids...),
		Vectors: make([][]float64, len(ix.vectors)),
	}
	for i, v := range ix.vectors {
		s.Vectors[i] = append([]float64(nil), v...)
	}
	return s
}

// FromSnapshot reconstructs an index from a snapshot. The parallel sequences
// must have equal length and uniform dimensionality.
func FromSnapshot(s *Snapshot) (*Index, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if len(s.IDs) != len(s.Vectors) {
		return nil, fmt.Errorf("snapshot ids and vectors length mismatch: %d vs %d", len(s.IDs), len(s.Vectors))
	}
	ix := NewIndex()
	for i, id := range s.IDs {
		if err := ix.Add(id, s.Vectors[i]); err != nil {
			return nil, fmt.Errorf("snapshot entry %d: %w", i, err)
		}
	}
	return ix, nil
}

// Save writes a binary snapshot of the index to path, creating parent
// directories as needed. Layout, all little-endian: version (4), dims (4),
// count (4), then per candidate: idLen (4), id bytes, dims*8 vector bytes.
func (ix *Index) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := ix.encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a binary snapshot from path and reconstructs the index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func (ix *Index) encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(snapshotVersion)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(ix.dims)); err != nil {
		return fmt.Errorf("write dims: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ix.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range ix.ids {
		idBytes := []byte(id)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := w.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := w.Write(float64SliceToBytes(ix.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

func decode(r io.Reader) (*Index, error) {
	var version, dims, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read dims: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if dims > maxSnapshotDims {
		return nil, fmt.Errorf("corrupt snapshot: dims %d exceeds %d", dims, maxSnapshotDims)
	}
	ix := NewIndex()
	buf := make([]byte, int(dims)*8)
	for i := uint32(0); i < count; i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("read id len: %w", err)
		}
		if idLen > maxSnapshotIDLen {
			return nil, fmt.Errorf("corrupt snapshot: id length %d exceeds %d", idLen, maxSnapshotIDLen)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		if err := ix.Add(string(idBytes), bytesToFloat64Slice(buf)); err != nil {
			return nil, fmt.Errorf("snapshot entry %d: %w", i, err)
		}
	}
	return ix, nil
}

func float64SliceToBytes(s []float64) []byte {
	const size = 8
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint64(out[i*size:(i+1)*size], math.Float64bits(v))
	}
	return out
}

func bytesToFloat64Slice(b []byte) []float64 {
	const size = 8
	out := make([]float64, len(b)/size)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*size : (i+1)*size]))
	}
	return out
}
