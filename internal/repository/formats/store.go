package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

type codec interface {
	write(path string, ds Dataset, o options) error
	read(path string, o options) (Dataset, error)
}

var codecs = map[Format]codec{
	JSON:   jsonCodec{},
	CSV:    csvCodec{},
	TXT:    txtCodec{},
	YAML:   yamlCodec{},
	SQLite: sqliteCodec{},
}

// Repository is the persistence contract the managers depend on.
type Repository interface {
	Save(ds Dataset, format Format, target string, opts ...Option) error
	Load(format Format, source string, opts ...Option) (Dataset, error)
}

// Store reads and writes datasets under a base directory. Every failure is
// returned wrapped in models.ErrPersistence and a failed save leaves the
// previous file untouched.
type Store struct {
	baseDir   string
	backupDir string
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore builds a Store rooted at baseDir. backupDir is resolved against baseDir
// when relative.
func NewStore(baseDir, backupDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backupDir == "" {
		backupDir = "backups"
	}
	return &Store{
		baseDir:   baseDir,
		backupDir: backupDir,
		logger:    logger,
		now:       time.Now,
	}
}

// Path resolves name against the base directory.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) || s.baseDir == "" {
		return name
	}
	return filepath.Join(s.baseDir, name)
}

// Save writes ds to target in the given format.
func (s *Store) Save(ds Dataset, format Format, target string, opts ...Option) error {
	c, ok := codecs[format]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
	o := collectOptions(s.now, opts)
	path := s.Path(target)

	if format.SingleTable() && o.table == "" && len(ds.nonEmpty()) > 1 {
		return models.PersistenceError("save", path, fmt.Errorf("%w: %d tables", models.ErrMultipleCollections, len(ds.nonEmpty())))
	}

	if err := writeAtomic(path, func(tmp string) error { return c.write(tmp, ds, o) }); err != nil {
		s.logger.Warn("save failed", zap.String("path", path), zap.String("format", string(format)), zap.Error(err))
		return models.PersistenceError("save", path, err)
	}

	s.logger.Debug("dataset saved",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", ds.Len()),
	)
	return nil
}

// Load reads source in the given format. Either the whole dataset is returned or
// an error; a partially parsed file is never returned.
func (s *Store) Load(format Format, source string, opts ...Option) (Dataset, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
	o := collectOptions(s.now, opts)
	path := s.Path(source)

	info, err := os.Stat(path)
	if err != nil {
		return nil, models.PersistenceError("load", path, err)
	}
	if info.IsDir() {
		return nil, models.PersistenceError("load", path, errors.New("is a directory"))
	}

	ds, err := c.read(path, o)
	if err != nil {
		s.logger.Warn("load failed", zap.String("path", path), zap.String("format", string(format)), zap.Error(err))
		return nil, models.PersistenceError("load", path, err)
	}

	s.logger.Debug("dataset loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("tables", len(ds)),
		zap.Int("rows", ds.Len()),
	)
	return ds, nil
}

// Convert loads source and saves it as target. The target is not created or
// modified when the load fails or yields no rows.
func (s *Store) Convert(source string, sourceFormat Format, target string, targetFormat Format, opts ...Option) error {
	ds, err := s.Load(sourceFormat, source, opts...)
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return models.PersistenceError("convert", s.Path(source), models.ErrEmptyDataset)
	}
	if err := s.Save(ds, targetFormat, target, opts...); err != nil {
		return err
	}
	s.logger.Info("dataset converted",
		zap.String("source", s.Path(source)),
		zap.String("source_format", string(sourceFormat)),
		zap.String("target", s.Path(target)),
		zap.String("target_format", string(targetFormat)),
	)
	return nil
}

// Backup copies name into the backup directory with a timestamp suffix and
// returns the backup path.
func (s *Store) Backup(name string) (string, error) {
	source := s.Path(name)
	in, err := os.Open(source)
	if err != nil {
		return "", models.PersistenceError("backup", source, err)
	}
	defer in.Close()

	dir := s.backupDir
	if !filepath.IsAbs(dir) {
		dir = s.Path(dir)
	}
	target := filepath.Join(dir, fmt.Sprintf("%s.%s", filepath.Base(name), s.now().Format("20060102_150405")))

	err = writeAtomic(target, func(tmp string) error {
		return writeFile(tmp, func(w io.Writer) error {
			_, err := io.Copy(w, in)
			return err
		})
	})
	if err != nil {
		return "", models.PersistenceError("backup", source, err)
	}

	s.logger.Info("backup created", zap.String("source", source), zap.String("backup", target))
	return target, nil
}

// FileInfo describes a data file.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Format   string    `json:"format"`
}

// FileInfo stats name under the base directory.
func (s *Store) FileInfo(name string) (FileInfo, error) {
	path := s.Path(name)
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, models.PersistenceError("stat", path, err)
	}
	format := "unknown"
	if f, err := FormatFromPath(path); err == nil {
		format = string(f)
	}
	return FileInfo{
		Name:     name,
		Size:     st.Size(),
		Modified: st.ModTime(),
		Format:   format,
	}, nil
}

// List returns files below the base directory whose base name matches pattern,
// relative to the base directory and sorted.
func (s *Store) List(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q", models.ErrValidation, pattern)
	}
	root := s.baseDir
	if root == "" {
		root = "."
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, models.PersistenceError("list", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// writeAtomic runs write against a temporary sibling of target and renames it
// into place only when write succeeds.
func writeAtomic(target string, write func(tmp string) error) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := write(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
