package module

import (
	"sync"
	"testing"

	kit "comicvault/internal/platform/testkit"
)

// importerPorts stands in for a sync-side port set
type importerPorts struct {
	Types []string
	Batch int
}

// the registry is process global, so these tests run serially and reset it
func resetRegistry(t *testing.T) {
	t.Helper()
	kit.Serial(t)
	Reset()
	t.Cleanup(Reset)
}

func TestRegistryRoundTripsPortSets(t *testing.T) {
	resetRegistry(t)

	Register("importer", importerPorts{Types: []string{"comics"}, Batch: 100})
	Register("catalog", fooImpl{v: 20})

	imp, ok := PortsAs[importerPorts]("importer")
	if !ok || imp.Batch != 100 || imp.Types[0] != "comics" {
		t.Fatalf("PortsAs(importer) = %+v, %v", imp, ok)
	}
	cat, ok := PortsAs[FooPort]("catalog")
	if !ok || cat.Foo() != 20 {
		t.Fatalf("PortsAs(catalog) = %v, %v; want 20, true", cat, ok)
	}
}

func TestRegistryMisses(t *testing.T) {
	resetRegistry(t)
	Register("linker", importerPorts{Batch: 1})

	cases := []struct {
		name string
		get  func() bool
	}{
		{"unknown module", func() bool { _, ok := PortsAs[importerPorts]("searchsync"); return ok }},
		{"wrong port type", func() bool { _, ok := PortsAs[FooPort]("linker"); return ok }},
	}
	for _, c := range cases {
		if c.get() {
			t.Fatalf("%s: ok = true, want false", c.name)
		}
	}
	if got, _ := PortsAs[importerPorts]("searchsync"); got.Batch != 0 || got.Types != nil {
		t.Fatalf("miss returned %+v, want zero value", got)
	}
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	resetRegistry(t)

	// the sync binary re-registers a module each time it is rebuilt lazily
	Register("searchsync", importerPorts{Batch: 50})
	Register("searchsync", importerPorts{Batch: 500})

	got, ok := PortsAs[importerPorts]("searchsync")
	if !ok || got.Batch != 500 {
		t.Fatalf("PortsAs = %+v, %v; want batch 500", got, ok)
	}

	Reset()
	if _, ok := PortsAs[importerPorts]("searchsync"); ok {
		t.Fatalf("entry survived Reset")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	resetRegistry(t)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			Register("importer", importerPorts{Batch: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, _ = PortsAs[importerPorts]("importer")
		}
	}()
	wg.Wait()

	if got, ok := PortsAs[importerPorts]("importer"); !ok || got.Batch != n {
		t.Fatalf("final = %+v, %v; want batch %d", got, ok, n)
	}
}
