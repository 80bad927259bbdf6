package artifact

import (
	"archive/zip"
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/internal/testutil"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.jplag"), zerolog.Nop())
	if !errors.Is(err, ErrInvalidArtifact) {
		t.Fatalf("err = %v, want ErrInvalidArtifact", err)
	}
}

func TestOpen_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.jplag")
	if err := os.WriteFile(path, []byte("not a zip at all"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path, zerolog.Nop())
	if !errors.Is(err, ErrInvalidArtifact) {
		t.Fatalf("err = %v, want ErrInvalidArtifact", err)
	}
}

func TestOpen_LoadsEntries(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	b, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, name := range FragmentNames {
		if _, ok := b.Fragment(name); !ok {
			t.Errorf("fragment %s not loaded", name)
		}
	}
	if b.ComparisonCount() != 1 {
		t.Errorf("ComparisonCount = %d, want 1", b.ComparisonCount())
	}
	if files := b.SubmissionFiles("alice"); len(files) != 1 {
		t.Errorf("alice files = %d, want 1", len(files))
	}
	if n := b.SubmissionLineCount("alice"); n != 5 {
		t.Errorf("alice lines = %d, want 5", n)
	}
	if n := b.SubmissionLineCount("nobody"); n != 0 {
		t.Errorf("unknown submission lines = %d, want 0", n)
	}
}

func TestOpen_IgnoresUnlistedEntries(t *testing.T) {
	entries := testutil.DefaultEntries()
	entries["secret.json"] = `{"should": "not load"}`
	entries["README.md"] = "docs"
	path := testutil.WriteArtifact(t, t.TempDir(), entries)

	b, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Fragment("secret"); ok {
		t.Error("unlisted fragment was loaded")
	}
}

func TestOpen_UnreadableEntryLoggedAndSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.jplag")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	zw := zip.NewWriter(f)
	for name, content := range testutil.DefaultEntries() {
		if name == "cluster.json" {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	// cluster.json stored with a checksum that does not match its
	// bytes, so reading the entry fails mid-archive.
	content := []byte(`[]`)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "cluster.json",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte("something else")),
		CompressedSize64:   uint64(len(content)),
		UncompressedSize64: uint64(len(content)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	var logBuf bytes.Buffer
	b, err := Open(path, zerolog.New(&logBuf))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := b.Fragment(FragmentCluster); ok {
		t.Error("corrupt fragment should not be loaded")
	}
	if _, ok := b.Fragment(FragmentTopComparisons); !ok {
		t.Error("intact fragments should still load")
	}
	log := logBuf.String()
	if !strings.Contains(log, "cluster.json") || !strings.Contains(log, "Skipping unreadable fragment entry") {
		t.Errorf("skip not logged, got: %s", log)
	}
}

func TestLookupComparison(t *testing.T) {
	entries := testutil.DefaultEntries()
	path := testutil.WriteArtifact(t, t.TempDir(), entries)
	b, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	// Stored orientation.
	data, reversed, duplicate, ok := b.LookupComparison("alice", "bob")
	if !ok || reversed || duplicate || len(data) == 0 {
		t.Errorf("forward lookup = (%d bytes, reversed=%v, dup=%v, ok=%v)", len(data), reversed, duplicate, ok)
	}

	// Reversed request must find the same entry.
	rdata, reversed, _, ok := b.LookupComparison("bob", "alice")
	if !ok || !reversed {
		t.Errorf("reversed lookup = (reversed=%v, ok=%v), want (true, true)", reversed, ok)
	}
	if string(rdata) != string(data) {
		t.Error("reversed lookup returned different content")
	}

	if _, _, _, ok := b.LookupComparison("alice", "carol"); ok {
		t.Error("lookup for absent pair should not succeed")
	}
}

func TestLookupComparison_BothOrientations(t *testing.T) {
	entries := testutil.DefaultEntries()
	entries["comparisons/bob-alice.json"] = entries["comparisons/alice-bob.json"]
	path := testutil.WriteArtifact(t, t.TempDir(), entries)
	b, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, reversed, duplicate, ok := b.LookupComparison("alice", "bob")
	if !ok || !duplicate || reversed {
		t.Errorf("duplicate lookup = (reversed=%v, dup=%v, ok=%v), want (false, true, true)", reversed, duplicate, ok)
	}
}
