// Package windows resolves the widget's logical window roles to live window
// handles. Handles are never cached: the renderer creates and destroys child
// windows at will, so every lookup rescans the window system.
package windows

import (
	"fmt"

	"github.com/1broseidon/coverdock/internal/platform"
)

// Lister enumerates live windows.
type Lister interface {
	// TopLevelWindows returns every managed top-level window.
	TopLevelWindows() ([]platform.Window, error)
	// ChildWindows returns the windows owned by parent.
	ChildWindows(parent platform.WindowID) ([]platform.Window, error)
}

// Registry looks windows up by role.
type Registry struct {
	lister Lister
	labels Labels
}

// NewRegistry creates a registry. A nil labels map uses DefaultLabels.
func NewRegistry(lister Lister, labels Labels) *Registry {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Registry{lister: lister, labels: labels}
}

// Labels returns the role titles in use.
func (r *Registry) Labels() Labels {
	return r.labels
}

// FindMain locates the main widget window among top-level windows.
func (r *Registry) FindMain() (platform.Window, bool, error) {
	label, err := r.labels.Label(RoleMain)
	if err != nil {
		return platform.Window{}, false, err
	}
	wins, err := r.lister.TopLevelWindows()
	if err != nil {
		return platform.Window{}, false, fmt.Errorf("failed to list windows: %w", err)
	}
	w, ok := firstWithTitle(wins, label)
	return w, ok, nil
}

// FindByRole searches root's current children for the window titled with
// role's label. A missing window is reported as ok=false with a nil error;
// that is the normal state for satellites that are not open.
func (r *Registry) FindByRole(root platform.WindowID, role Role) (platform.Window, bool, error) {
	label, err := r.labels.Label(role)
	if err != nil {
		return platform.Window{}, false, err
	}
	children, err := r.lister.ChildWindows(root)
	if err != nil {
		return platform.Window{}, false, fmt.Errorf("failed to list child windows of %d: %w", root, err)
	}
	w, ok := firstWithTitle(children, label)
	return w, ok, nil
}

// RoleOf reports the role of a window by its title.
func (r *Registry) RoleOf(w platform.Window) (Role, bool) {
	return r.labels.RoleOf(w.Title)
}

func firstWithTitle(wins []platform.Window, title string) (platform.Window, bool) {
	for _, w := range wins {
		if w.Title == title {
			return w, true
		}
	}
	return platform.Window{}, false
}
