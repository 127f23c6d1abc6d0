package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: name CHECK and UNIQUE constraints so the API can map violations.
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`

// MigrationName normalises a free-form description into a migration name.
func MigrationName(raw string) (string, error) {
	name := nameCleanRe.ReplaceAllString(strings.ToLower(raw), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", raw)
	}
	return name, nil
}

// Create writes an empty goose migration into dir and returns its path. The
// version is taken from now, bumped past the newest existing version so
// migrations always apply in creation order.
func Create(dir, raw string, now time.Time) (string, error) {
	name, err := MigrationName(raw)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := Scan(dir)
	if err != nil {
		return "", err
	}

	version, err := strconv.ParseInt(now.UTC().Format(versionLayout), 10, 64)
	if err != nil {
		return "", err
	}
	for _, f := range existing {
		if f.Name == name {
			return "", fmt.Errorf("migration %q already exists at %s", name, f.Path)
		}
		if f.Version >= version {
			version = f.Version + 1
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, name))
	if err := os.WriteFile(path, []byte(fmt.Sprintf(migrationTemplate, name)), 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	return path, nil
}
