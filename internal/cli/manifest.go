package cli

import (
	"github.com/BurntSushi/toml"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
	"github.com/modkit-go/modkit/pkg/graph"
)

// manifest mirrors the TOML layout of a module manifest:
//
//	[project]
//	name = "shop"
//	root = "app"
//
//	[[module]]
//	name = "app"
//	imports = ["auth", "store"]
//
//	[[module]]
//	name = "store"
//	expects = ["Database"]
//	exports = ["ProductRepo"]
type manifest struct {
	Project projectSection  `toml:"project"`
	Modules []moduleSection `toml:"module"`
}

type projectSection struct {
	Name string `toml:"name"`
	Root string `toml:"root"`
}

type moduleSection struct {
	Name    string   `toml:"name"`
	Imports []string `toml:"imports"`
	Expects []string `toml:"expects"`
	Exports []string `toml:"exports"`
}

// loadManifest reads a TOML manifest and builds the import graph it
// declares. All failure modes surface as INVALID_MANIFEST errors.
func loadManifest(path string) (*graph.Graph, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, moderrors.Wrap(moderrors.ErrCodeInvalidManifest, err,
			"cannot read manifest %s", path)
	}

	if m.Project.Root == "" {
		return nil, moderrors.New(moderrors.ErrCodeInvalidManifest,
			"manifest %s declares no [project] root", path)
	}
	if len(m.Modules) == 0 {
		return nil, moderrors.New(moderrors.ErrCodeInvalidManifest,
			"manifest %s declares no modules", path)
	}

	decls := make([]graph.Declaration, len(m.Modules))
	for i, mod := range m.Modules {
		decls[i] = graph.Declaration{
			Name:    mod.Name,
			Imports: mod.Imports,
			Expects: mod.Expects,
			Exports: mod.Exports,
		}
	}

	g, err := graph.FromDeclarations(m.Project.Root, decls)
	if err != nil {
		if moderrors.Is(err, moderrors.ErrCodeCircular) {
			return nil, err
		}
		return nil, moderrors.Wrap(moderrors.ErrCodeInvalidManifest, err,
			"manifest %s is inconsistent", path)
	}
	return g, nil
}
