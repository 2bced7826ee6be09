package anchor

import (
	"sync"

	"fyne.io/fyne/v2"
)

// Registry tracks mounted placeholders and measures them on the canvas.
type Registry struct {
	mu       sync.Mutex
	objects  map[string]fyne.CanvasObject
	position func(fyne.CanvasObject) fyne.Position
}

// NewRegistry creates a registry that measures through the app driver.
func NewRegistry() *Registry {
	return NewRegistryWithPosition(func(object fyne.CanvasObject) fyne.Position {
		return fyne.CurrentApp().Driver().AbsolutePositionForObject(object)
	})
}

// NewRegistryWithPosition creates a registry with a custom position source.
func NewRegistryWithPosition(position func(fyne.CanvasObject) fyne.Position) *Registry {
	return &Registry{
		objects:  make(map[string]fyne.CanvasObject),
		position: position,
	}
}

// Mount marks object as the placeholder for id.
func (registry *Registry) Mount(id string, object fyne.CanvasObject) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.objects[id] = object
}

// Unmount forgets the placeholder for id.
func (registry *Registry) Unmount(id string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.objects, id)
}

// Locate returns the absolute rectangle of a mounted, visible placeholder.
func (registry *Registry) Locate(id string) (Rect, bool) {
	registry.mu.Lock()
	object, ok := registry.objects[id]
	registry.mu.Unlock()
	if !ok || object == nil || !object.Visible() {
		return Rect{}, false
	}

	size := object.Size()
	position := registry.position(object)
	return Rect{X: position.X, Y: position.Y, Width: size.Width, Height: size.Height}, true
}

// ObjectSurface pins a canvas object. Collapsing hides it without
// removing it from its container.
type ObjectSurface struct {
	object fyne.CanvasObject
}

// NewObjectSurface wraps object.
func NewObjectSurface(object fyne.CanvasObject) *ObjectSurface {
	return &ObjectSurface{object: object}
}

func (surface *ObjectSurface) Place(rect Rect) {
	surface.object.Move(fyne.NewPos(rect.X, rect.Y))
	surface.object.Resize(fyne.NewSize(rect.Width, rect.Height))
	if !surface.object.Visible() {
		surface.object.Show()
	}
}

func (surface *ObjectSurface) Collapse() {
	surface.object.Resize(fyne.NewSize(0, 0))
	surface.object.Hide()
}
