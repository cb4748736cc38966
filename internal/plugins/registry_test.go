package plugins_test

import (
	"errors"
	"testing"

	"scriber/internal/plugins"
	"scriber/internal/testsupport"
)

func TestRegistryFiltersAndSorts(t *testing.T) {
	registry := plugins.NewRegistry()

	caption := testsupport.StubManifest("zeta-captions")
	caption.Category = "captions"

	for _, manifest := range []plugins.Manifest{
		testsupport.StubManifest("mike"),
		testsupport.StubManifest("alpha"),
		caption,
	} {
		if err := registry.Add(plugins.Plugin{Manifest: manifest, State: plugins.StateDiscovered}); err != nil {
			t.Fatalf("Add %s: %v", manifest.Name, err)
		}
	}

	all := registry.All()
	if len(all) != 3 {
		t.Fatalf("All returned %d plugins, want 3", len(all))
	}
	if all[0].Name() != "alpha" || all[1].Name() != "mike" || all[2].Name() != "zeta-captions" {
		t.Fatalf("unexpected order: %s, %s, %s", all[0].Name(), all[1].Name(), all[2].Name())
	}

	transcription := registry.ByCategory("transcription")
	if len(transcription) != 2 {
		t.Fatalf("ByCategory(transcription) returned %d, want 2", len(transcription))
	}
	captions := registry.ByCategory("captions")
	if len(captions) != 1 || captions[0].Name() != "zeta-captions" {
		t.Fatalf("ByCategory(captions) = %v", captions)
	}
	if got := registry.ByCategory(""); len(got) != 3 {
		t.Fatalf("empty category should match all, got %d", len(got))
	}

	if len(registry.Configured()) != 0 {
		t.Fatal("no plugin should be configured before loading")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := plugins.NewRegistry()
	plugin := plugins.Plugin{Manifest: testsupport.StubManifest("dup"), State: plugins.StateDiscovered}

	if err := registry.Add(plugin); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := registry.Add(plugin); !errors.Is(err, plugins.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("Len = %d, want 1", registry.Len())
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	registry := plugins.NewRegistry()
	if err := registry.Add(plugins.Plugin{Manifest: testsupport.StubManifest("immutable"), State: plugins.StateDiscovered}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := registry.All()
	got[0].State = plugins.StateLoaded

	fresh, _ := registry.Get("immutable")
	if fresh.State != plugins.StateDiscovered {
		t.Fatalf("registry state mutated through returned copy: %q", fresh.State)
	}
}
