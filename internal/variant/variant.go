// Package variant decides which physical template, if any, produces each
// logical output file.
//
// A template is any file ending in ".tmpl". Before the marker an optional
// variant segment names the package manager the file is for, or "base" for
// the fallback:
//
//	package.json.pnpm.tmpl   logical "package.json", variant "pnpm"
//	package.json.base.tmpl   logical "package.json", variant "base"
//	README.md.tmpl           logical "README.md", untagged
//
// Candidates sharing a directory and logical name form a Group. Select
// resolves a group to at most one Choice.
package variant

import (
	"path"
	"sort"
	"strings"
)

const (
	// Marker is the suffix that marks a file for rendering.
	Marker = ".tmpl"

	// Base is the fallback variant.
	Base = "base"

	// RootManifest only takes variants at the project root.
	RootManifest = "package.json"

	// PnpmWorkspace is only written for pnpm projects.
	PnpmWorkspace = "pnpm-workspace.yaml"
)

// Variants lists every recognized variant segment.
var Variants = []string{Base, "npm", "yarn", "pnpm", "bun"}

// Parsed is a template name split into its parts.
type Parsed struct {
	Name    string // the name as given, e.g. "src/package.json.npm.tmpl"
	Logical string // slash path without variant or marker, e.g. "src/package.json"
	Variant string // "" when untagged
}

// Base returns the file name of the logical path.
func (p Parsed) Base() string { return path.Base(p.Logical) }

// Choice is the candidate selected for a group and its destination, relative
// to the workspace.
type Choice struct {
	Name string
	Dest string
}

// Group is the set of candidates for one logical output file.
type Group struct {
	Logical    string
	Candidates []Parsed
}

// Names returns the candidate names in the group.
func (g Group) Names() []string {
	out := make([]string, len(g.Candidates))
	for i, c := range g.Candidates {
		out[i] = c.Name
	}
	return out
}

// IsTemplate reports whether name carries the render marker.
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, Marker) && len(path.Base(name)) > len(Marker)
}

// ParseName splits a template name. It returns false for non-templates.
func ParseName(name string) (Parsed, bool) {
	if !IsTemplate(name) {
		return Parsed{}, false
	}
	stem := strings.TrimSuffix(name, Marker)
	p := Parsed{Name: name, Logical: stem}

	dir, file := path.Split(stem)
	if i := strings.LastIndexByte(file, '.'); i > 0 {
		if v := file[i+1:]; isVariant(v) {
			p.Logical = dir + file[:i]
			p.Variant = v
		}
	}
	return p, true
}

func isVariant(s string) bool {
	for _, v := range Variants {
		if s == v {
			return true
		}
	}
	return false
}

// GroupNames groups template names by logical path. Non-templates are
// dropped. Groups and candidates come back sorted.
func GroupNames(names []string) []Group {
	byLogical := make(map[string][]Parsed)
	for _, n := range names {
		p, ok := ParseName(n)
		if !ok {
			continue
		}
		byLogical[p.Logical] = append(byLogical[p.Logical], p)
	}

	groups := make([]Group, 0, len(byLogical))
	for logical, cands := range byLogical {
		sort.Slice(cands, func(i, j int) bool { return cands[i].Name < cands[j].Name })
		groups = append(groups, Group{Logical: logical, Candidates: cands})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Logical < groups[j].Logical })
	return groups
}

// Select picks the candidate that produces output for packageManager. The
// candidates must share a logical name; others are ignored. It returns false
// when the group produces nothing, which is not an error.
func Select(candidates []string, packageManager string, isRoot bool) (Choice, bool) {
	groups := GroupNames(candidates)
	if len(groups) == 0 {
		return Choice{}, false
	}
	return SelectGroup(groups[0], packageManager, isRoot)
}

// SelectGroup applies the selection rules to an already grouped set.
func SelectGroup(g Group, packageManager string, isRoot bool) (Choice, bool) {
	if len(g.Candidates) == 0 {
		return Choice{}, false
	}

	base := path.Base(g.Logical)
	if base == PnpmWorkspace && packageManager != "pnpm" {
		return Choice{}, false
	}
	if base == RootManifest && !isRoot {
		return Choice{}, false
	}

	var tagged, fallback, untagged *Parsed
	for i := range g.Candidates {
		c := &g.Candidates[i]
		switch {
		case c.Variant == "":
			untagged = c
		case c.Variant == packageManager:
			tagged = c
		case c.Variant == Base:
			fallback = c
		}
	}

	chosen := tagged
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		chosen = untagged
	}
	if chosen == nil {
		return Choice{}, false
	}

	dest := g.Logical
	if base == RootManifest && isRoot {
		dest = RootManifest
	}
	return Choice{Name: chosen.Name, Dest: dest}, true
}

// SkipStatic reports whether a non-template file at rel should be left out.
// Only the pnpm workspace file is conditional.
func SkipStatic(rel, packageManager string) bool {
	return path.Base(rel) == PnpmWorkspace && packageManager != "pnpm"
}
