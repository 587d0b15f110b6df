package generator_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/simonhull/create-v1-app/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestOp(dir, content string) *generator.WriteFileOp {
	return &generator.WriteFileOp{Path: filepath.Join(dir, "apps", "web", "package.json"), Content: []byte(content), Mode: 0644}
}

func TestExecute_Modes(t *testing.T) {
	tests := []struct {
		name     string
		existing string // content already on disk, empty for none
		opts     generator.ExecuteOptions
		wantErr  bool
		want     string // file content afterwards, empty for absent
		wantLine string
	}{
		{name: "writes new file", want: "{}", wantLine: "✓ Create "},
		{name: "dry run writes nothing", opts: generator.ExecuteOptions{DryRun: true}, wantLine: "✓ [DRY RUN] Create "},
		{name: "refuses to overwrite", existing: "old", wantErr: true, want: "old"},
		{name: "force overwrites", existing: "old", opts: generator.ExecuteOptions{Force: true}, want: "{}", wantLine: "(2 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			op := manifestOp(dir, "{}")
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(op.Path), 0755))
				require.NoError(t, os.WriteFile(op.Path, []byte(tt.existing), 0644))
			}

			var buf bytes.Buffer
			tt.opts.Writer = &buf
			err := generator.Execute(context.Background(), []generator.Operation{op}, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			data, readErr := os.ReadFile(op.Path)
			if tt.want == "" {
				assert.True(t, os.IsNotExist(readErr))
				_, statErr := os.Stat(filepath.Join(dir, "apps"))
				assert.True(t, os.IsNotExist(statErr), "no parent directories either")
			} else {
				require.NoError(t, readErr)
				assert.Equal(t, tt.want, string(data))
			}
			if tt.wantLine != "" {
				assert.Contains(t, buf.String(), tt.wantLine)
			}
		})
	}
}

func TestExecute_ValidatesEverythingFirst(t *testing.T) {
	dir := t.TempDir()
	ops := []generator.Operation{
		manifestOp(dir, "{}"),
		&generator.CopyFileOp{Source: fstest.MapFS{}, SourcePath: "biome.json", Path: filepath.Join(dir, "biome.json")},
	}

	err := generator.Execute(context.Background(), ops, generator.ExecuteOptions{Force: true, Writer: &bytes.Buffer{}})

	var opErr *generator.OperationError
	require.True(t, errors.As(err, &opErr), "got %v", err)
	assert.Equal(t, "validate", opErr.Phase)
	assert.Equal(t, filepath.Join(dir, "biome.json"), opErr.Op.Target())
	assert.NoFileExists(t, ops[0].Target())
}

func TestExecute_ParentIsFile(t *testing.T) {
	// the blocking file may be any ancestor of the target
	for _, blocker := range []string{"apps", filepath.Join("apps", "web")} {
		t.Run(blocker, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, blocker)), 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, blocker), []byte("x"), 0644))

			err := generator.Execute(context.Background(), []generator.Operation{manifestOp(dir, "{}")},
				generator.ExecuteOptions{Force: true, Writer: &bytes.Buffer{}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parent is a file")

			var opErr *generator.OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, "validate", opErr.Phase)
		})
	}
}

func TestExecute_NilContentRejected(t *testing.T) {
	op := &generator.WriteFileOp{Path: filepath.Join(t.TempDir(), "empty.ts")}
	err := generator.Execute(context.Background(), []generator.Operation{op}, generator.ExecuteOptions{Writer: &bytes.Buffer{}})
	assert.Error(t, err)

	op.Content = []byte{}
	require.NoError(t, generator.Execute(context.Background(), []generator.Operation{op}, generator.ExecuteOptions{Writer: &bytes.Buffer{}}))
	assert.FileExists(t, op.Path)
}

func TestExecute_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	op := manifestOp(t.TempDir(), "{}")

	err := generator.Execute(ctx, []generator.Operation{op}, generator.ExecuteOptions{Force: true, Writer: &bytes.Buffer{}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, op.Path)
}

func TestCopyFileOp(t *testing.T) {
	src := fstest.MapFS{
		"public/favicon.ico": {Data: []byte{0x00, 0x00, 0x01, 0x00, 0xff}},
		"scripts/setup.sh":   {Data: []byte("#!/bin/sh\n"), Mode: 0755},
	}
	dir := t.TempDir()
	ops := []generator.Operation{
		&generator.CopyFileOp{Source: src, SourcePath: "public/favicon.ico", Path: filepath.Join(dir, "public", "favicon.ico")},
		&generator.CopyFileOp{Source: src, SourcePath: "scripts/setup.sh", Path: filepath.Join(dir, "scripts", "setup.sh")},
	}
	require.NoError(t, generator.Execute(context.Background(), ops, generator.ExecuteOptions{Force: true, Writer: &bytes.Buffer{}}))

	got, err := os.ReadFile(ops[0].Target())
	require.NoError(t, err)
	assert.Equal(t, src["public/favicon.ico"].Data, got)

	info, err := os.Stat(ops[1].Target())
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100, "executable bit kept")
	assert.Equal(t, "Copy scripts/setup.sh -> "+ops[1].Target(), ops[1].Description())
}

func TestCopyFileOp_DirectorySource(t *testing.T) {
	src := fstest.MapFS{"apps/web/page.tsx": {Data: []byte("x")}}
	op := &generator.CopyFileOp{Source: src, SourcePath: "apps/web", Path: filepath.Join(t.TempDir(), "web")}
	assert.Error(t, op.Validate(context.Background(), true))
}
