// Package filesystem provides directory traversal with ignore rules and depth
// limits, over both the OS filesystem and any fs.FS (embedded template trees,
// fstest.MapFS in tests).
//
// # Walking
//
//	err := filesystem.Walk(projectDir, filesystem.WalkOptions{}, func(path string, d fs.DirEntry) error {
//	    fmt.Println(path)
//	    return nil
//	})
//
// Return filepath.SkipDir (or fs.SkipDir) from the visitor to skip a directory.
//
// # Depth
//
// MaxDepth limits how deep the walk descends. Depth 1 visits only the
// immediate children of the root, which is how the root workspace of a
// template tree is enumerated without re-visiting nested workspaces.
package filesystem
