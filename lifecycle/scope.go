package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
)

// Resource is one registered filesystem path.
type Resource struct {
	Path      string
	CreatedAt time.Time

	released bool
	err      error
}

// Released reports whether removal has been attempted for this path.
func (r *Resource) Released() bool { return r.released }

// Err returns the removal error, if removal was attempted and failed.
func (r *Resource) Err() error { return r.err }

// Scope owns the temporary resources of one job.
type Scope struct {
	mu        sync.Mutex
	dir       string
	resources []*Resource
	released  bool

	log    *logger.Logger
	remove func(path string) error
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger used for cleanup failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scope) { s.log = l }
}

// WithRemover replaces os.RemoveAll. Intended for tests.
func WithRemover(fn func(path string) error) Option {
	return func(s *Scope) { s.remove = fn }
}

// NewScope creates a scope that allocates new paths under dir.
// An empty dir means os.TempDir().
func NewScope(dir string, opts ...Option) *Scope {
	if dir == "" {
		dir = os.TempDir()
	}
	s := &Scope{
		dir:    dir,
		remove: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("lifecycle")
	}
	return s
}

// Dir returns the directory new paths are allocated in.
func (s *Scope) Dir() string { return s.dir }

// Register takes ownership of path. Registering a path twice returns the
// first Resource. Registering on a scope that has already been released
// removes the path immediately.
func (s *Scope) Register(path string) *Resource {
	res := &Resource{Path: path, CreatedAt: time.Now()}

	s.mu.Lock()
	if !s.released {
		if i := slices.IndexFunc(s.resources, func(r *Resource) bool { return r.Path == path }); i >= 0 {
			res = s.resources[i]
			s.mu.Unlock()
			return res
		}
		s.resources = append(s.resources, res)
		s.mu.Unlock()
		return res
	}
	s.mu.Unlock()

	s.releaseOne(res)
	return res
}

// NewPath allocates and registers a unique file path in the scope
// directory. The file itself is not created.
func (s *Scope) NewPath(prefix, ext string) *Resource {
	return s.Register(filepath.Join(s.dir, UniqueName(prefix, ext)))
}

// NewDir creates and registers a unique directory in the scope directory.
// The path is registered before creation so a partially created directory
// is still removed.
func (s *Scope) NewDir(prefix string) (*Resource, error) {
	res := s.Register(filepath.Join(s.dir, UniqueName(prefix, "")))
	if err := os.MkdirAll(res.Path, 0o700); err != nil {
		return res, errors.IOFailure("scratch directory creation", err)
	}
	return res, nil
}

// Resources returns a snapshot of the registered resources in
// registration order.
func (s *Scope) Resources() []*Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// ReleaseAll removes every registered path, newest first, and returns the
// failures. Only the first call does any work; later calls return nil.
func (s *Scope) ReleaseAll() []error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	resources := s.resources
	s.mu.Unlock()

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := s.releaseOne(resources[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *Scope) releaseOne(res *Resource) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic removing %s: %v", res.Path, r)
		}
		res.released = true
		res.err = err
		if err != nil {
			s.log.Warn("failed to remove temporary resource", logger.Fields(
				logger.FieldPath, res.Path,
				logger.FieldError, err.Error(),
			))
		}
	}()
	return s.remove(res.Path)
}
