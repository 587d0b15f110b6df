package templates

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/simonhull/create-v1-app/internal/apperr"
)

//go:embed all:skeleton
var skeleton embed.FS

// Default returns the template tree shipped with the binary.
func Default() fs.FS {
	sub, err := fs.Sub(skeleton, "skeleton")
	if err != nil {
		panic(err) // embedded path is fixed
	}
	return sub
}

// Source is an opened template tree. Close releases anything Open created.
type Source struct {
	FS     fs.FS
	Origin string
	close  func() error
}

// Close removes temporary checkouts. It is safe to call more than once.
func (s *Source) Close() error {
	if s.close == nil {
		return nil
	}
	c := s.close
	s.close = nil
	return c()
}

// OpenOptions configures Open.
type OpenOptions struct {
	Progress io.Writer // git clone progress; nil discards it
}

// Open resolves a template source:
//
//	""                                   embedded skeleton
//	https://host/org/repo.git[#branch]   shallow git clone into a temp dir
//	./path/to/templates                  local directory
func Open(ctx context.Context, src string, opts OpenOptions) (*Source, error) {
	switch {
	case src == "":
		return &Source{FS: Default(), Origin: "embedded"}, nil
	case IsGitURL(src):
		return openGit(ctx, src, opts)
	default:
		info, err := os.Stat(src)
		if err != nil {
			return nil, &apperr.ConfigError{Msg: fmt.Sprintf("template directory %s", src), Err: err}
		}
		if !info.IsDir() {
			return nil, apperr.Configf("template source %s is not a directory", src)
		}
		return &Source{FS: os.DirFS(src), Origin: src}, nil
	}
}

// IsGitURL reports whether src should be cloned rather than read from disk.
func IsGitURL(src string) bool {
	for _, p := range []string{"https://", "http://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(src, p) {
			return true
		}
	}
	return false
}

func openGit(ctx context.Context, src string, opts OpenOptions) (*Source, error) {
	url, ref, _ := strings.Cut(src, "#")

	dir, err := os.MkdirTemp("", "create-v1-app-templates-")
	if err != nil {
		return nil, &apperr.FilesystemError{Op: "mkdir", Path: os.TempDir(), Err: err}
	}

	cloneOpts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     opts.Progress,
	}
	if ref != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, cloneOpts); err != nil {
		_ = os.RemoveAll(dir)
		if ctx.Err() != nil {
			return nil, &apperr.InterruptError{Err: ctx.Err()}
		}
		return nil, &apperr.ConfigError{Msg: fmt.Sprintf("failed to clone templates from %s", url), Err: err}
	}

	return &Source{
		FS:     os.DirFS(dir),
		Origin: src,
		close:  func() error { return os.RemoveAll(dir) },
	}, nil
}
