package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// Baseline is the ordered set of migrations the settlement engine cannot run
// without. Orders reference listings and ledger rows reference orders, so the
// order matters.
var Baseline = []string{
	"create_listings",
	"create_orders",
	"create_ledger_events",
	"create_notifications",
	"create_outbox",
}

// File is one goose SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
	Up      string
	Down    string
}

// Scan reads every .sql migration in dir, sorted by version. It fails on bad
// filenames, reused versions or names, and files missing either goose section.
func Scan(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []File
	versions := map[int64]string{}
	names := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		base := e.Name()
		m := migrationFileRe.FindStringSubmatch(base)
		if m == nil {
			return nil, fmt.Errorf("migration %q: want <YYYYMMDDHHMMSS>_<name>.sql", base)
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", base, err)
		}
		if prev, ok := versions[version]; ok {
			return nil, fmt.Errorf("version %d used by both %q and %q", version, prev, base)
		}
		if prev, ok := names[m[2]]; ok {
			return nil, fmt.Errorf("name %q used by both %q and %q", m[2], prev, base)
		}
		versions[version] = base
		names[m[2]] = base

		path := filepath.Join(dir, base)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		up, down, err := splitSections(string(raw))
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", base, err)
		}
		files = append(files, File{Version: version, Name: m[2], Path: path, Up: up, Down: down})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func splitSections(sql string) (up, down string, err error) {
	upAt := strings.Index(sql, upMarker)
	downAt := strings.Index(sql, downMarker)
	switch {
	case upAt < 0:
		return "", "", fmt.Errorf("missing %q", upMarker)
	case downAt < 0:
		return "", "", fmt.Errorf("missing %q", downMarker)
	case downAt < upAt:
		return "", "", fmt.Errorf("%q must come before %q", upMarker, downMarker)
	}
	return sql[upAt+len(upMarker) : downAt], sql[downAt+len(downMarker):], nil
}

// ValidateDir checks that dir holds a well-formed migration set for the
// settlement schema: the baseline in order, and an Up section declaring every
// constraint the API maps to a domain error.
func ValidateDir(dir string) error {
	files, err := Scan(dir)
	if err != nil {
		return err
	}

	position := make(map[string]int, len(files))
	for i, f := range files {
		position[f.Name] = i
	}
	last := -1
	for _, name := range Baseline {
		at, ok := position[name]
		if !ok {
			return fmt.Errorf("missing baseline migration %q", name)
		}
		if at < last {
			return fmt.Errorf("baseline migration %q is out of order", name)
		}
		last = at
	}

	for _, constraint := range pkgerrors.GuardConstraints() {
		if !declaresConstraint(files, constraint) {
			return fmt.Errorf("no migration declares constraint %q", constraint)
		}
	}
	return nil
}

func declaresConstraint(files []File, name string) bool {
	needle := "CONSTRAINT " + name
	for _, f := range files {
		if strings.Contains(f.Up, needle) {
			return true
		}
	}
	return false
}
