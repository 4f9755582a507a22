package specs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/source"
)

func testDescriptor() *Descriptor {
	return &Descriptor{
		Name:     "demo",
		Version:  "1.0.0",
		Summary:  "a demo package",
		Homepage: "https://demo.test",
		Licenses: []string{"MIT"},
		Dependencies: []Requirement{
			{Name: "base", Constraint: ">= 2.0"},
		},
	}
}

func encodeDescriptor(t *testing.T, d *Descriptor) []byte {
	t.Helper()
	raw, err := codec.Gob{}.Encode(d)
	if err != nil {
		t.Fatalf("encode descriptor: %v", err)
	}
	return raw
}

func deflateDescriptor(t *testing.T, d *Descriptor) []byte {
	t.Helper()
	compressed, err := codec.Deflate(encodeDescriptor(t, d))
	if err != nil {
		t.Fatalf("deflate descriptor: %v", err)
	}
	return compressed
}

func descriptorPaths(src *source.Source, root string, tup Tuple) (remote, local string) {
	fname := tup.FileName() + ".spec"
	remote = src.DescriptorURL(fname + ".rz")
	local = filepath.Join(src.DescriptorCacheDir(root), fname)
	return remote, local
}

func TestFetchDescriptorFromRemote(t *testing.T) {
	src := mustSource(t, "https://one.test")
	tup := Tuple{Name: "demo", Version: "1.0.0"}
	want := testDescriptor()

	remote, _ := descriptorPaths(src, "", tup)
	client := newFakeClient(map[string][]byte{
		remote: deflateDescriptor(t, want),
	})
	f := newTestFetcher(t, client, src)

	got, err := f.FetchDescriptor(context.Background(), tup, src)
	if err != nil {
		t.Fatalf("FetchDescriptor: %v", err)
	}
	if got.Name != want.Name || got.Summary != want.Summary {
		t.Errorf("descriptor = %+v, want %+v", got, want)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0].Name != "base" {
		t.Errorf("dependencies = %v, want [base >= 2.0]", got.Dependencies)
	}
}

func TestFetchDescriptorPersistsDecompressed(t *testing.T) {
	src := mustSource(t, "https://one.test")
	tup := Tuple{Name: "demo", Version: "1.0.0"}

	remote, _ := descriptorPaths(src, "", tup)
	client := newFakeClient(map[string][]byte{
		remote: deflateDescriptor(t, testDescriptor()),
	})
	f := newTestFetcher(t, client, src)

	if _, err := f.FetchDescriptor(context.Background(), tup, src); err != nil {
		t.Fatalf("FetchDescriptor: %v", err)
	}

	_, local := descriptorPaths(src, f.CacheRoot(), tup)
	raw, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("read cached descriptor: %v", err)
	}
	var d Descriptor
	if err := (codec.Gob{}).Decode(raw, &d); err != nil {
		t.Errorf("cached descriptor is not stored decompressed: %v", err)
	}
}

func TestFetchDescriptorCacheFastPath(t *testing.T) {
	src := mustSource(t, "https://one.test")
	tup := Tuple{Name: "demo", Version: "1.0.0"}
	client := newFakeClient(nil) // no remote at all
	f := newTestFetcher(t, client, src)

	remote, local := descriptorPaths(src, f.CacheRoot(), tup)
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		t.Fatalf("mkdir cache: %v", err)
	}
	if err := os.WriteFile(local, encodeDescriptor(t, testDescriptor()), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	got, err := f.FetchDescriptor(context.Background(), tup, src)
	if err != nil {
		t.Fatalf("FetchDescriptor: %v", err)
	}
	if got.Name != "demo" {
		t.Errorf("descriptor name = %q, want demo", got.Name)
	}
	if client.fetches[remote] != 0 {
		t.Errorf("remote reads = %d, want 0 (cache fast path)", client.fetches[remote])
	}
}

func TestFetchDescriptorCorruptLocalFallsBack(t *testing.T) {
	src := mustSource(t, "https://one.test")
	tup := Tuple{Name: "demo", Version: "1.0.0"}

	remote, _ := descriptorPaths(src, "", tup)
	client := newFakeClient(map[string][]byte{
		remote: deflateDescriptor(t, testDescriptor()),
	})
	f := newTestFetcher(t, client, src)

	_, local := descriptorPaths(src, f.CacheRoot(), tup)
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		t.Fatalf("mkdir cache: %v", err)
	}
	if err := os.WriteFile(local, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("seed corrupt cache: %v", err)
	}

	got, err := f.FetchDescriptor(context.Background(), tup, src)
	if err != nil {
		t.Fatalf("FetchDescriptor with corrupt cache: %v", err)
	}
	if got.Name != "demo" {
		t.Errorf("descriptor name = %q, want demo", got.Name)
	}
	if client.fetches[remote] != 1 {
		t.Errorf("remote reads = %d, want 1", client.fetches[remote])
	}
}

func TestFindDescriptorTriesSourcesInOrder(t *testing.T) {
	one := mustSource(t, "https://one.test")
	two := mustSource(t, "https://two.test")
	tup := Tuple{Name: "demo", Version: "1.0.0"}

	// Only the second source carries the descriptor.
	remoteTwo, _ := descriptorPaths(two, "", tup)
	client := newFakeClient(map[string][]byte{
		remoteTwo: deflateDescriptor(t, testDescriptor()),
	})
	f := newTestFetcher(t, client, one, two)

	d, src, err := f.FindDescriptor(context.Background(), tup)
	if err != nil {
		t.Fatalf("FindDescriptor: %v", err)
	}
	if src != two {
		t.Errorf("found on %v, want %v", src, two)
	}
	if d.Name != "demo" {
		t.Errorf("descriptor name = %q, want demo", d.Name)
	}
}

func TestFindDescriptorMissingEverywhere(t *testing.T) {
	src := mustSource(t, "https://one.test")
	f := newTestFetcher(t, newFakeClient(nil), src)

	_, _, err := f.FindDescriptor(context.Background(), Tuple{Name: "ghost", Version: "1.0.0"})
	if err == nil {
		t.Fatal("expected an error for a missing descriptor")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeTransport && code != errors.ErrCodePackageNotFound {
		t.Errorf("code = %v, want transport or package-not-found", code)
	}
}
