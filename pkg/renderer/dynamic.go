package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/loaders"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
)

// DefaultDynamicScene is the host scene installed when none is requested
const DefaultDynamicScene = "lattice"

// dynamicScenes are host-built trees for the composer's dynamic slot
var dynamicScenes = map[string]func(b *scene.Builder) scene.NodeIndex{
	"lattice": func(b *scene.Builder) scene.NodeIndex {
		bar := core.NewVec3(0.08, 0.08, 0.6)
		cell := b.Union(
			b.Box(bar),
			b.Box(core.NewVec3(bar.Z, bar.X, bar.Y)),
			b.Box(core.NewVec3(bar.Y, bar.Z, bar.X)),
		)
		lattice := b.Repeat(core.NewVec3(1.2, 1.2, 1.2), b.Round(0.02, cell))
		return b.Intersect(lattice, b.Sphere(1.6))
	},
	"snowman": func(b *scene.Builder) scene.NodeIndex {
		return b.SmoothUnion(0.15,
			b.Translate(core.NewVec3(0, -0.55, 0), b.Sphere(0.7)),
			b.Translate(core.NewVec3(0, 0.35, 0), b.Sphere(0.5)),
			b.Translate(core.NewVec3(0, 0.95, 0), b.Sphere(0.32)),
		)
	},
}

// DynamicSceneNames lists the host scenes in sorted order
func DynamicSceneNames() []string {
	names := make([]string, 0, len(dynamicScenes))
	for name := range dynamicScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDynamicComposer installs a scene in the dynamic slot of a fresh
// composer. name is either a host scene name or the path of a scene file.
// An empty name leaves the slot empty.
func NewDynamicComposer(name string) (*scene.Composer, error) {
	composer := scene.NewComposer()
	if name == "" {
		return composer, nil
	}

	var tree *scene.Tree
	var err error
	if strings.HasSuffix(strings.ToLower(name), loaders.SceneExtension) {
		tree, err = loaders.LoadScene(name)
	} else {
		build, ok := dynamicScenes[name]
		if !ok {
			return nil, fmt.Errorf("unknown dynamic scene %q", name)
		}
		b := scene.NewBuilder()
		tree, err = b.Build(build(b))
	}
	if err != nil {
		return nil, fmt.Errorf("build dynamic scene %q: %w", name, err)
	}
	dist, err := scene.Compile(tree)
	if err != nil {
		return nil, err
	}
	return composer.WithDynamic(dist), nil
}
