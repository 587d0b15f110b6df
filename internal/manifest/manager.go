package manifest

import (
	"strings"

	"github.com/simonhull/create-v1-app/internal/apperr"
)

// Manager describes a supported JavaScript package manager.
type Manager struct {
	Name    string
	Version string // pinned version written to the packageManager field
	Help    string
}

// Managers lists the supported package managers in prompt order.
var Managers = []Manager{
	{Name: "npm", Version: "10.9.0", Help: "Node's bundled package manager"},
	{Name: "yarn", Version: "1.22.22", Help: "Yarn classic"},
	{Name: "pnpm", Version: "9.15.0", Help: "content-addressed store, strict workspaces"},
	{Name: "bun", Version: "1.1.38", Help: "Bun's built-in installer"},
}

// DefaultManager is used when neither flags nor config choose one.
const DefaultManager = "npm"

// LookupManager returns the named manager or a ConfigError.
func LookupManager(name string) (Manager, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range Managers {
		if m.Name == name {
			return m, nil
		}
	}
	return Manager{}, apperr.Configf("unsupported package manager %q (supported: %s)", name, strings.Join(ManagerNames(), ", "))
}

// ManagerNames returns the supported manager names.
func ManagerNames() []string {
	names := make([]string, len(Managers))
	for i, m := range Managers {
		names[i] = m.Name
	}
	return names
}

// UsesWorkspaceProtocol reports whether the manager links local packages
// with "workspace:*" rather than "*".
func UsesWorkspaceProtocol(name string) bool {
	return name == "pnpm" || name == "bun"
}
