package source

import (
	"context"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/denismitr/zmigrate/migration"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
	"strings"
	"sync"
)

const DefaultMigrationsFolder = "./migration"

const (
	UpScript     = "up.sql"
	DownScript   = "down.sql"
	SeedScript   = "seed.sql"
	ReadmeScript = "readme"
)

var (
	ErrNotADirectory    = errors.New("migration root is not a directory")
	ErrDuplicateVersion = errors.New("duplicate migration version")
)

// LocalSource reads versioned migration directories from a filesystem root.
// Every immediate subdirectory of the root is a version, named "major.minor.patch".
type LocalSource struct {
	fs   vfs.FileSystem
	root string
	lg   logger.Logger

	mu   sync.RWMutex
	dirs map[migration.Version]string
}

func NewLocalSource(fs vfs.FileSystem, root string, lg logger.Logger) *LocalSource {
	if lg == nil {
		lg = logger.NullLogger{}
	}

	return &LocalSource{
		fs:   fs,
		root: root,
		lg:   lg,
		dirs: make(map[migration.Version]string),
	}
}

// Versions lists every version directory under the root in ascending order
func (s *LocalSource) Versions(ctx context.Context) (migration.Versions, error) {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, errors.Wrapf(ErrNotADirectory, "[%s] does not exist", s.root)
		}
		return nil, errors.Wrapf(err, "could not stat migration root [%s]", s.root)
	}

	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotADirectory, "[%s]", s.root)
	}

	entries, err := vfs.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read migration root [%s]", s.root)
	}

	dirs := make(map[migration.Version]string, len(entries))
	versions := make(migration.Versions, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !entry.IsDir() {
			s.lg.Debugf("ignoring file %s in migration root", s.join(entry.Name()))
			continue
		}

		v, err := migration.ParseVersion(entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "in migration root [%s]", s.root)
		}

		if prev, ok := dirs[v]; ok {
			return nil, errors.Wrapf(ErrDuplicateVersion, "[%s] and [%s] are both %s", prev, entry.Name(), v)
		}

		dirs[v] = entry.Name()
		versions = append(versions, v)
	}

	versions.SortFor(migration.Up)

	s.mu.Lock()
	s.dirs = dirs
	s.mu.Unlock()

	return versions, nil
}

// Script returns the trimmed contents of a script in the version directory,
// ok is false when there is no such file
func (s *LocalSource) Script(v migration.Version, name string) (string, bool, error) {
	b, ok, err := s.read(v, name)
	if err != nil || !ok {
		return "", ok, err
	}

	return strings.TrimSpace(string(b)), true, nil
}

// Readme returns the non blank lines of the version readme
func (s *LocalSource) Readme(v migration.Version) ([]string, error) {
	b, ok, err := s.read(v, ReadmeScript)
	if err != nil || !ok {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (s *LocalSource) Path(v migration.Version, name string) string {
	return s.join(s.dirName(v), name)
}

func (s *LocalSource) read(v migration.Version, name string) ([]byte, bool, error) {
	path := s.Path(v, name)

	info, err := s.fs.Stat(path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "could not stat [%s]", path)
	}

	if info.IsDir() {
		return nil, false, nil
	}

	b, err := vfs.ReadFile(s.fs, path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "could not read [%s]", path)
	}

	return b, true, nil
}

func (s *LocalSource) dirName(v migration.Version) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name, ok := s.dirs[v]; ok {
		return name
	}

	return v.String()
}

func (s *LocalSource) join(elems ...string) string {
	return vfs.Join(s.fs, append([]string{s.root}, elems...)...)
}
