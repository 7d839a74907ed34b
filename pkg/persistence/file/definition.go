package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// DefinitionRepository handles workflow-definition file operations.
type DefinitionRepository struct {
	root string
}

// NewDefinitionRepository creates a new definition repository.
func NewDefinitionRepository(root string) *DefinitionRepository {
	return &DefinitionRepository{root: root}
}

// Definitions returns all stored workflow definitions sorted by key.
func (dr *DefinitionRepository) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	root := os.DirFS(path.Join(dr.root, "definitions"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list definition files: %w", err)
	}

	defs := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		key := file[:len(file)-5] // Remove .json extension

		def, err := dr.DefinitionByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load definition %s: %w", key, err)
		}

		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Key < defs[j].Key
	})

	return defs, nil
}

// DefinitionByKey retrieves a workflow definition by its key.
func (dr *DefinitionRepository) DefinitionByKey(_ context.Context, key string) (*models.WorkflowDefinition, error) {
	filePath := filepath.Clean(path.Join(dr.root, "definitions", key+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewDefinitionError("DefinitionByKey", key, persistence.ErrDefinitionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch definition %s: %w", key, err)
	}

	var def models.WorkflowDefinition

	err = json.Unmarshal(body, &def)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition %s: %w", key, err)
	}

	return &def, nil
}

// SaveDefinition writes a definition to the file system, overwriting any
// previous version. Saving the same definition twice is a no-op.
func (dr *DefinitionRepository) SaveDefinition(_ context.Context, def *models.WorkflowDefinition) error {
	err := os.MkdirAll(path.Join(dr.root, "definitions"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", def.Key, err)
	}

	filePath := path.Join(dr.root, "definitions", def.Key+".json")

	return os.WriteFile(filePath, data, 0600)
}
