package matching

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func populatedIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	mustAdd(t, ix, "pool/red.png", []float64{53.2, 80.1, 67.2})
	mustAdd(t, ix, "pool/green.png", []float64{87.7, -86.2, 83.2})
	mustAdd(t, ix, "pool/blue.png", []float64{32.3, 79.2, -107.9})
	return ix
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ix := populatedIndex(t)

	restored, err := FromSnapshot(ix.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot failed: %v", err)
	}
	if restored.Len() != ix.Len() {
		t.Fatalf("candidate count: got %d, want %d", restored.Len(), ix.Len())
	}

	query := []float64{50, 70, 60}
	want, err := ix.Query(query, 3)
	if err != nil {
		t.Fatalf("original query failed: %v", err)
	}
	got, err := restored.Query(query, 3)
	if err != nil {
		t.Fatalf("restored query failed: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	ix := populatedIndex(t)
	snap := ix.Snapshot()

	snap.IDs[0] = "tampered"
	snap.Vectors[0][0] = -999

	matches, err := ix.Query([]float64{53.2, 80.1, 67.2}, 1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if matches[0].ID != "pool/red.png" || matches[0].Distance != 0 {
		t.Errorf("index affected by snapshot mutation: %+v", matches[0])
	}
}

func TestSnapshot_VersionCheck(t *testing.T) {
	snap := populatedIndex(t).Snapshot()
	snap.Version = 99

	if _, err := FromSnapshot(snap); err == nil {
		t.Error("FromSnapshot should reject an unknown version")
	}
}

func TestSnapshot_ParallelLengthCheck(t *testing.T) {
	snap := populatedIndex(t).Snapshot()
	snap.IDs = snap.IDs[:2]

	if _, err := FromSnapshot(snap); err == nil {
		t.Error("FromSnapshot should reject mismatched parallel sequences")
	}
}

func TestSnapshot_DimensionCheck(t *testing.T) {
	snap := populatedIndex(t).Snapshot()
	snap.Vectors[1] = []float64{1, 2}

	if _, err := FromSnapshot(snap); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ix := populatedIndex(t)
	path := filepath.Join(t.TempDir(), "pool", "index.bin")

	if err := ix.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	restored, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if restored.Len() != ix.Len() {
		t.Fatalf("candidate count: got %d, want %d", restored.Len(), ix.Len())
	}
	query := []float64{80, -50, 50}
	want, _ := ix.Query(query, 2)
	got, err := restored.Query(query, 2)
	if err != nil {
		t.Fatalf("restored query failed: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.bin")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

// corruptSnapshot writes a snapshot header with the given dims followed by
// one entry whose declared id length is idLen, with no payload behind it.
func corruptSnapshot(t *testing.T, dims, idLen uint32) string {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint32{snapshotVersion, dims, 1, idLen} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("build snapshot bytes: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "corrupt.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write snapshot file: %v", err)
	}
	return path
}

func TestLoad_RejectsOversizedIDLength(t *testing.T) {
	// A declared id length in the gigabytes must be rejected up front, not
	// allocated.
	path := corruptSnapshot(t, 3, 1<<31)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject an id length beyond the decode limit")
	}
}

func TestLoad_RejectsOversizedDims(t *testing.T) {
	path := corruptSnapshot(t, 1<<24, 8)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject a dimensionality beyond the decode limit")
	}
}
