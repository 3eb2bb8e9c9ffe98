// Package levels loads static level definitions from YAML files and from the
// built-in set embedded in the binary.
package levels

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/levels/formats"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrLevelNotFound is returned when no level has the requested id.
var ErrLevelNotFound = errors.New("level not found")

// Level is a loaded level definition and where it came from.
type Level struct {
	Definition level.Definition
	Metadata   map[string]string
	FilePath   string // empty for built-in levels
	Builtin    bool
}

// ID returns the level id.
func (l Level) ID() string {
	return l.Definition.ID
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root   string
	Logger *log.Logger
}

// NewLoader creates a new level loader. An empty root loads nothing from disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, Logger: log.New(io.Discard)}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering. Files that fail to
// parse are skipped; definitions that fail validation are kept and logged.
func (l *Loader) LoadAll() ([]Level, error) {
	if l.Root == "" {
		return nil, nil
	}
	var levels []Level

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		lvl, err := l.LoadFile(path)
		if err != nil {
			l.logger().Warn("skipping level file", "path", path, "err", err)
			return nil
		}
		levels = append(levels, lvl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sortLevels(levels)
	return levels, nil
}

// LoadFile loads a single level file.
func (l *Loader) LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	l.check(parsed.Definition, path)

	return Level{
		Definition: parsed.Definition,
		Metadata:   parsed.Metadata,
		FilePath:   path,
	}, nil
}

// LoadByID loads a specific level by ID, from disk first, then built-ins.
func (l *Loader) LoadByID(id string) (Level, error) {
	all, err := l.LoadWithBuiltin()
	if err != nil {
		return Level{}, err
	}
	for _, lvl := range all {
		if lvl.ID() == id {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// LoadWithBuiltin returns levels from disk followed by built-ins whose ids
// are not shadowed by a file.
func (l *Loader) LoadWithBuiltin() ([]Level, error) {
	disk, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(disk))
	for _, lvl := range disk {
		seen[lvl.ID()] = true
	}
	for _, lvl := range builtin {
		if !seen[lvl.ID()] {
			disk = append(disk, lvl)
		}
	}
	return disk, nil
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID()
	}
	return ids, nil
}

// Builtin returns the embedded levels in file order.
func Builtin() ([]Level, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("reading built-in levels: %w", err)
	}

	var levels []Level
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading built-in level %s: %w", e.Name(), err)
		}
		parsed, err := formats.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing built-in level %s: %w", e.Name(), err)
		}
		levels = append(levels, Level{
			Definition: parsed.Definition,
			Metadata:   parsed.Metadata,
			Builtin:    true,
		})
	}
	return levels, nil
}

func (l *Loader) check(def level.Definition, path string) {
	if err := level.Validate(def); err != nil {
		l.logger().Warn("level has problems", "path", path, "id", def.ID, "err", err)
	}
}

func (l *Loader) logger() *log.Logger {
	if l.Logger == nil {
		l.Logger = log.New(io.Discard)
	}
	return l.Logger
}

func sortLevels(levels []Level) {
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID() < levels[j].ID()
	})
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
