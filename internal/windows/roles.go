package windows

import "fmt"

// Role identifies one of the widget's managed windows.
type Role int

const (
	RoleMain Role = iota
	RoleTrackInfo
	RoleSettings
	RoleAbout
)

// Default window titles the renderer assigns to each role.
const (
	LabelMain      = "Lofi"
	LabelTrackInfo = "track-info"
	LabelSettings  = "Lofi Settings"
	LabelAbout     = "About Lofi"
)

// String returns the role name used in logs and CLI output.
func (r Role) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleTrackInfo:
		return "track-info"
	case RoleSettings:
		return "settings"
	case RoleAbout:
		return "about"
	default:
		return "unknown"
	}
}

// Labels maps each role to the exact window title that identifies it.
type Labels map[Role]string

// DefaultLabels returns the titles used by the stock renderer.
func DefaultLabels() Labels {
	return Labels{
		RoleMain:      LabelMain,
		RoleTrackInfo: LabelTrackInfo,
		RoleSettings:  LabelSettings,
		RoleAbout:     LabelAbout,
	}
}

// Label returns the title for role.
func (l Labels) Label(role Role) (string, error) {
	label, ok := l[role]
	if !ok || label == "" {
		return "", fmt.Errorf("no window title configured for role %s", role)
	}
	return label, nil
}

// RoleOf returns the role whose label equals title exactly.
func (l Labels) RoleOf(title string) (Role, bool) {
	for role, label := range l {
		if label != "" && label == title {
			return role, true
		}
	}
	return 0, false
}

// Validate rejects empty titles and titles shared by two roles, since either
// would make lookups ambiguous.
func (l Labels) Validate() error {
	seen := make(map[string]Role, len(l))
	for _, role := range []Role{RoleMain, RoleTrackInfo, RoleSettings, RoleAbout} {
		label, err := l.Label(role)
		if err != nil {
			return err
		}
		if other, dup := seen[label]; dup {
			return fmt.Errorf("window title %q is used by both %s and %s", label, other, role)
		}
		seen[label] = role
	}
	return nil
}
