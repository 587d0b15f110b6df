package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managers = []string{"npm", "yarn", "pnpm", "bun"}

func TestParseName(t *testing.T) {
	tests := []struct {
		name        string
		wantLogical string
		wantVariant string
		wantOK      bool
	}{
		{"package.json.pnpm.tmpl", "package.json", "pnpm", true},
		{"package.json.base.tmpl", "package.json", "base", true},
		{"src/README.md.tmpl", "src/README.md", "", true},
		{"tsconfig.json", "", "", false},
		{".tmpl", "", "", false},
		{"apps/web/next.config.mjs.tmpl", "apps/web/next.config.mjs", "", true},
		{"config.deno.tmpl", "config.deno", "", true},
		{"npm.tmpl", "npm", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParseName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.wantLogical, p.Logical)
			assert.Equal(t, tt.wantVariant, p.Variant)
		})
	}
}

func TestGroupNames(t *testing.T) {
	groups := GroupNames([]string{
		"package.json.pnpm.tmpl",
		"README.md.tmpl",
		"package.json.base.tmpl",
		"turbo.json",
		"package.json.npm.tmpl",
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "README.md", groups[0].Logical)
	assert.Equal(t, []string{"README.md.tmpl"}, groups[0].Names())
	assert.Equal(t, "package.json", groups[1].Logical)
	assert.Equal(t, []string{"package.json.base.tmpl", "package.json.npm.tmpl", "package.json.pnpm.tmpl"}, groups[1].Names())
}

func TestSelect_PrefersActiveManager(t *testing.T) {
	candidates := []string{"package.json.npm.tmpl", "package.json.pnpm.tmpl", "package.json.base.tmpl"}

	choice, ok := Select(candidates, "pnpm", true)
	require.True(t, ok)
	assert.Equal(t, Choice{Name: "package.json.pnpm.tmpl", Dest: "package.json"}, choice)

	choice, ok = Select(candidates, "yarn", true)
	require.True(t, ok)
	assert.Equal(t, "package.json.base.tmpl", choice.Name)
}

func TestSelect_VariantExclusivity(t *testing.T) {
	candidates := []string{"package.json.npm.tmpl", "package.json.pnpm.tmpl", "package.json.base.tmpl"}

	for i := 0; i < 10; i++ {
		choice, ok := Select(candidates, "pnpm", true)
		require.True(t, ok)
		assert.NotEqual(t, "package.json.npm.tmpl", choice.Name)
		assert.NotEqual(t, "package.json.base.tmpl", choice.Name)
	}
}

func TestSelect_NoMatchIsSilentSkip(t *testing.T) {
	_, ok := Select([]string{"package.json.npm.tmpl", "package.json.pnpm.tmpl"}, "bun", true)
	assert.False(t, ok)

	_, ok = Select(nil, "npm", true)
	assert.False(t, ok)
}

func TestSelect_UntaggedIsBase(t *testing.T) {
	choice, ok := Select([]string{"README.md.tmpl"}, "bun", false)
	require.True(t, ok)
	assert.Equal(t, Choice{Name: "README.md.tmpl", Dest: "README.md"}, choice)

	choice, ok = Select([]string{"index.ts.tmpl", "index.ts.base.tmpl"}, "npm", false)
	require.True(t, ok)
	assert.Equal(t, "index.ts.base.tmpl", choice.Name)
	assert.Equal(t, "index.ts", choice.Dest)
}

func TestSelect_RootManifestOnlyAtRoot(t *testing.T) {
	groups := [][]string{
		{"package.json.base.tmpl", "package.json.npm.tmpl"},
		{"package.json.tmpl"},
		{"apps/web/package.json.tmpl"},
	}
	for _, candidates := range groups {
		for _, pm := range managers {
			_, ok := Select(candidates, pm, false)
			assert.False(t, ok, "%v %s", candidates, pm)
		}
	}

	choice, ok := Select([]string{"package.json.tmpl"}, "npm", true)
	require.True(t, ok)
	assert.Equal(t, Choice{Name: "package.json.tmpl", Dest: "package.json"}, choice)
}

func TestSelect_PnpmWorkspaceOnlyForPnpm(t *testing.T) {
	for _, pm := range managers {
		_, ok := Select([]string{"pnpm-workspace.yaml.tmpl"}, pm, true)
		assert.Equal(t, pm == "pnpm", ok, pm)
		assert.Equal(t, pm != "pnpm", SkipStatic("pnpm-workspace.yaml", pm), pm)
	}
	assert.False(t, SkipStatic("turbo.json", "npm"))
}

func TestSelect_KeepsDirectory(t *testing.T) {
	choice, ok := Select([]string{"src/env.ts.bun.tmpl", "src/env.ts.base.tmpl"}, "bun", false)
	require.True(t, ok)
	assert.Equal(t, Choice{Name: "src/env.ts.bun.tmpl", Dest: "src/env.ts"}, choice)
}
