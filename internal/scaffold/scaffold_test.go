package scaffold

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/cleanup"
	"github.com/simonhull/create-v1-app/internal/templates"
	"github.com/simonhull/create-v1-app/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenKV renders fine for the root and email, then fails on kv.
var brokenKV = fstest.MapFS{
	"package.json.base.tmpl":          {Data: []byte(`{"name": "{{ .ProjectName }}", "workspaces": ["apps/*", "packages/*"]}` + "\n")},
	"services/email/package.json":     {Data: []byte(`{"name": "@v1/email", "private": true}` + "\n")},
	"services/email/src/index.ts":     {Data: []byte("export const sendEmail = () => {};\n")},
	"services/kv/package.json":        {Data: []byte(`{"name": "@v1/kv"}` + "\n")},
	"services/kv/src/index.ts.tmpl":   {Data: []byte("export const prefix = \"{{ .Nope }}\";\n")},
	"services/analytics/package.json": {Data: []byte(`{"name": "@v1/analytics"}` + "\n")},
}

type harness struct {
	s       *Scaffolder
	cleanup *cleanup.Manager
	out     *bytes.Buffer
	ops     *bytes.Buffer
}

func newHarness(t *testing.T, fsys fs.FS, dryRun bool) *harness {
	t.Helper()
	reg, err := templates.NewRegistry(fsys)
	require.NoError(t, err)

	var out, ops bytes.Buffer
	t.Cleanup(output.SetOutput(&out, &out))

	cm := cleanup.NewManager(cleanup.Reverse, nil)
	return &harness{
		s: New(Deps{
			Registry: reg,
			Cleanup:  cm,
			OpWriter: &ops,
			DryRun:   dryRun,
		}),
		cleanup: cm,
		out:     &out,
		ops:     &ops,
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mkfile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCreate(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := filepath.Join(t.TempDir(), "acme")

	res, err := h.s.Create(context.Background(), CreateOptions{
		Name:           dir,
		Services:       []string{"email", "kv"},
		PackageManager: "pnpm",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", res.ProjectName)
	assert.Equal(t, dir, res.ProjectDir)
	assert.Nil(t, res.Outcomes)

	names := make([]string, len(res.Workspaces))
	for i, ws := range res.Workspaces {
		names[i] = ws.Name
	}
	assert.Equal(t, "root", names[0])
	assert.Equal(t, []string{"email", "kv"}, names[len(names)-2:])

	assert.True(t, exists(filepath.Join(dir, "package.json")))
	assert.True(t, exists(filepath.Join(dir, "pnpm-workspace.yaml")))
	assert.True(t, exists(filepath.Join(dir, "packages", "email", "package.json")))
	assert.True(t, exists(filepath.Join(dir, "packages", "kv", "package.json")))
	assert.Contains(t, readFile(t, filepath.Join(dir, "package.json")), `"pnpm@`)

	assert.Contains(t, h.out.String(), "Processing workspace: root")
	assert.Equal(t, 1, h.cleanup.Len(), "only the project directory is recorded")
}

func TestCreate_GitInit(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := filepath.Join(t.TempDir(), "acme")

	_, err := h.s.Create(context.Background(), CreateOptions{Name: dir, PackageManager: "npm", GitInit: true})
	require.NoError(t, err)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Reference(plumbing.HEAD, false)
	require.NoError(t, err)
	assert.Equal(t, plumbing.Main, head.Target())
}

func TestCreate_DryRun(t *testing.T) {
	h := newHarness(t, templates.Default(), true)
	dir := filepath.Join(t.TempDir(), "acme")

	_, err := h.s.Create(context.Background(), CreateOptions{Name: dir, PackageManager: "npm", GitInit: true})
	require.NoError(t, err)

	assert.False(t, exists(dir))
	assert.Zero(t, h.cleanup.Len())
	assert.Contains(t, h.ops.String(), "[DRY RUN]")
}

func TestCreate_RejectsNonEmptyDirectory(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := filepath.Join(t.TempDir(), "acme")
	mkfile(t, filepath.Join(dir, "notes.txt"), "keep me")

	_, err := h.s.Create(context.Background(), CreateOptions{Name: dir, PackageManager: "npm"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
	assert.Zero(t, h.cleanup.Len())
	assert.Equal(t, "keep me", readFile(t, filepath.Join(dir, "notes.txt")))
}

func TestCreate_AdoptsEmptyDirectory(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := filepath.Join(t.TempDir(), "acme")
	require.NoError(t, os.Mkdir(dir, 0755))

	_, err := h.s.Create(context.Background(), CreateOptions{Name: dir, PackageManager: "yarn"})
	require.NoError(t, err)
	assert.True(t, exists(filepath.Join(dir, "package.json")))
}

func TestCreate_ValidationHappensBeforeMutation(t *testing.T) {
	tests := []struct {
		name string
		opts CreateOptions
	}{
		{"unknown service", CreateOptions{Services: []string{"blockchain"}, PackageManager: "npm"}},
		{"unknown manager", CreateOptions{PackageManager: "pip"}},
		{"missing service template", CreateOptions{Services: []string{"jobs"}, PackageManager: "npm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, brokenKV, false)
			dir := filepath.Join(t.TempDir(), "acme")
			tt.opts.Name = dir

			_, err := h.s.Create(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
			assert.False(t, exists(dir))
			assert.Zero(t, h.cleanup.Len())
		})
	}
}

func TestCreate_EmptyName(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	_, err := h.s.Create(context.Background(), CreateOptions{Name: "  ", PackageManager: "npm"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
}

func TestCreate_RenderFailureRollsBack(t *testing.T) {
	h := newHarness(t, brokenKV, false)
	dir := filepath.Join(t.TempDir(), "acme")

	_, err := h.s.Create(context.Background(), CreateOptions{
		Name:           dir,
		Services:       []string{"email", "kv"},
		PackageManager: "npm",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindRender, apperr.KindOf(err))
	assert.True(t, apperr.TriggersCleanup(err))

	// earlier workspaces were written before kv failed
	assert.True(t, exists(filepath.Join(dir, "packages", "email", "package.json")))
	assert.False(t, exists(filepath.Join(dir, "packages", "kv")))

	require.NoError(t, h.cleanup.Run())
	assert.False(t, exists(dir))
}

func TestCreate_Interrupted(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := filepath.Join(t.TempDir(), "acme")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.s.Create(ctx, CreateOptions{Name: dir, PackageManager: "npm"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInterrupt, apperr.KindOf(err))
	assert.Equal(t, apperr.ExitInterrupt, apperr.ExitCode(err))

	require.NoError(t, h.cleanup.Run())
	assert.False(t, exists(dir))
}

func newProject(t *testing.T, pm string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "acme")
	mkfile(t, filepath.Join(dir, "package.json"), `{
  "name": "acme",
  "private": true,
  "workspaces": ["apps/*", "packages/email"],
  "packageManager": "`+pm+`"
}
`)
	mkfile(t, filepath.Join(dir, "apps", "api", "src", "index.ts"), `import { Hono } from "hono";
import { sendEmail } from "@v1/email";

export default new Hono();
`)
	return dir
}

func TestAddServices(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := newProject(t, "bun@1.1.0")

	res, err := h.s.AddServices(context.Background(), AddOptions{ProjectDir: dir, Services: []string{"kv"}})
	require.NoError(t, err)

	assert.Equal(t, "acme", res.ProjectName)
	require.Len(t, res.Workspaces, 1)
	assert.Equal(t, "kv", res.Workspaces[0].Name)
	assert.True(t, exists(filepath.Join(dir, "packages", "kv", "package.json")))
	assert.Contains(t, h.out.String(), "Adding service: kv")

	tasks := h.cleanup.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, cleanup.RemoveService{ProjectDir: dir, Service: "kv"}, tasks[0])
}

func TestAddServices_AlreadyPresent(t *testing.T) {
	h := newHarness(t, templates.Default(), false)
	dir := newProject(t, "npm@10.9.0")
	mkfile(t, filepath.Join(dir, "packages", "email", "package.json"), "{}\n")

	_, err := h.s.AddServices(context.Background(), AddOptions{ProjectDir: dir, Services: []string{"email"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
	assert.Zero(t, h.cleanup.Len())
}

func TestAddServices_NotAProject(t *testing.T) {
	h := newHarness(t, templates.Default(), false)

	_, err := h.s.AddServices(context.Background(), AddOptions{ProjectDir: t.TempDir(), Services: []string{"kv"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Are you in a v1 project directory?")
}

func TestAddServices_FailureLeavesNoTrace(t *testing.T) {
	h := newHarness(t, brokenKV, false)
	dir := newProject(t, "npm@10.9.0")
	before := readFile(t, filepath.Join(dir, "apps", "api", "src", "index.ts"))

	_, err := h.s.AddServices(context.Background(), AddOptions{ProjectDir: dir, Services: []string{"email", "kv"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindRender, apperr.KindOf(err))
	assert.Equal(t, 2, h.cleanup.Len())

	require.NoError(t, h.cleanup.Run())

	assert.False(t, exists(filepath.Join(dir, "packages", "email")))
	assert.False(t, exists(filepath.Join(dir, "packages", "kv")))

	pkg := readFile(t, filepath.Join(dir, "package.json"))
	assert.NotContains(t, pkg, "packages/email")
	assert.Contains(t, pkg, `"apps/*"`)

	api := readFile(t, filepath.Join(dir, "apps", "api", "src", "index.ts"))
	assert.NotContains(t, api, "@v1/email")
	assert.NotEqual(t, before, api)
	assert.Contains(t, api, `import { Hono } from "hono";`)
}
