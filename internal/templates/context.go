package templates

import (
	"sort"

	"github.com/simonhull/create-v1-app/internal/manifest"
)

// RenderContext is the data every template of one run is rendered with.
// Build it with NewRenderContext and treat it as read-only.
type RenderContext struct {
	ProjectName           string
	PackageManager        string
	PackageManagerVersion string
	Services              []string
}

// NewRenderContext sorts a copy of services and fills in the pinned version
// of the package manager when it is known.
func NewRenderContext(projectName, packageManager string, services []string) RenderContext {
	svcs := append([]string(nil), services...)
	sort.Strings(svcs)

	rc := RenderContext{
		ProjectName:    projectName,
		PackageManager: packageManager,
		Services:       svcs,
	}
	if m, err := manifest.LookupManager(packageManager); err == nil {
		rc.PackageManagerVersion = m.Version
	}
	return rc
}

// HasService reports whether name was requested.
func (rc RenderContext) HasService(name string) bool {
	i := sort.SearchStrings(rc.Services, name)
	return i < len(rc.Services) && rc.Services[i] == name
}

// WorkspaceDep is the version specifier for a dependency on another package
// of the same monorepo.
func (rc RenderContext) WorkspaceDep() string {
	if manifest.UsesWorkspaceProtocol(rc.PackageManager) {
		return "workspace:*"
	}
	return "*"
}

// PackageManagerField is the value of package.json's packageManager field.
func (rc RenderContext) PackageManagerField() string {
	if rc.PackageManagerVersion == "" {
		return rc.PackageManager
	}
	return rc.PackageManager + "@" + rc.PackageManagerVersion
}
