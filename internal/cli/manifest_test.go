package cli

import (
	"os"
	"path/filepath"
	"testing"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validManifest = `
[project]
name = "shop"
root = "app"

[[module]]
name = "app"
imports = ["auth", "store"]

[[module]]
name = "auth"
imports = ["store"]
exports = ["TokenService"]

[[module]]
name = "store"
expects = ["Database"]
exports = ["ProductRepo"]
`

func TestLoadManifest(t *testing.T) {
	g, err := loadManifest(writeManifest(t, validManifest))
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}

	if g.Root() != "app" {
		t.Errorf("root = %q", g.Root())
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("graph = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	store, ok := g.Node("store")
	if !ok {
		t.Fatal("store missing")
	}
	if len(store.Expects) != 1 || store.Expects[0] != "Database" {
		t.Errorf("store expects = %v", store.Expects)
	}
}

func TestLoadManifestFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not toml",
			content: "{ this is json }",
		},
		{
			name: "missing root",
			content: `
[project]
name = "shop"

[[module]]
name = "app"
`,
		},
		{
			name: "no modules",
			content: `
[project]
root = "app"
`,
		},
		{
			name: "unknown import",
			content: `
[project]
root = "app"

[[module]]
name = "app"
imports = ["ghost"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadManifest(writeManifest(t, tt.content))
			if !moderrors.Is(err, moderrors.ErrCodeInvalidManifest) {
				t.Errorf("err = %v, want INVALID_MANIFEST", err)
			}
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := loadManifest(filepath.Join(t.TempDir(), "absent.toml"))
	if !moderrors.Is(err, moderrors.ErrCodeInvalidManifest) {
		t.Errorf("err = %v, want INVALID_MANIFEST", err)
	}
}

func TestLoadManifestCycleKeepsCircularCode(t *testing.T) {
	content := `
[project]
root = "a"

[[module]]
name = "a"
imports = ["b"]

[[module]]
name = "b"
imports = ["a"]
`
	_, err := loadManifest(writeManifest(t, content))
	if !moderrors.Is(err, moderrors.ErrCodeCircular) {
		t.Errorf("err = %v, want CIRCULAR_DEPENDENCY", err)
	}
}

func TestUnsatisfiedContracts(t *testing.T) {
	g, err := loadManifest(writeManifest(t, validManifest))
	if err != nil {
		t.Fatal(err)
	}

	// "Database" is expected by store but exported by nothing it imports.
	gaps := unsatisfiedContracts(g)
	if len(gaps) != 1 {
		t.Fatalf("gaps = %v, want 1", gaps)
	}
	if gaps[0].module != "store" || gaps[0].contract != "Database" {
		t.Errorf("gap = %+v", gaps[0])
	}
}

func TestUnsatisfiedContractsSatisfiedTransitively(t *testing.T) {
	content := `
[project]
root = "app"

[[module]]
name = "app"
imports = ["mid"]
expects = ["ProductRepo"]

[[module]]
name = "mid"
imports = ["store"]

[[module]]
name = "store"
exports = ["ProductRepo"]
`
	g, err := loadManifest(writeManifest(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if gaps := unsatisfiedContracts(g); len(gaps) != 0 {
		t.Errorf("gaps = %v, want none", gaps)
	}
}
