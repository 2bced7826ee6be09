package animation

import "image/color"

// Palette is one frame of the ambient scene gradient.
type Palette struct {
	Top    color.NRGBA
	Bottom color.NRGBA
}

// Scene is the ordered set of palettes the ambient backdrop drifts through.
type Scene struct {
	Name     string
	Palettes []Palette
}

// Still returns a scene holding only the first palette.
func (scene Scene) Still() Scene {
	if len(scene.Palettes) <= 1 {
		return scene
	}
	return Scene{Name: scene.Name, Palettes: scene.Palettes[:1]}
}
