// Package cmd provides shared factories for the command-line entrypoints.
package cmd

import (
	"strings"

	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/persistence/file"
	"github.com/bigbit/approvalflow/pkg/persistence/memory"
)

// NewPersistence selects a storage backend from the database URL scheme.
// "memory://" serves the built-in fixture dataset; anything else is treated
// as a file store root.
func NewPersistence(databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "memory":
		return memory.NewPersistence()
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	switch parts[0] {
	case "memory", "file":
		return parts[0]
	}

	return "file"
}
