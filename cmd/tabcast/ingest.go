package main

import (
	"encoding/json"
	"fmt"
	"os"

	"tabcast/internal/normalize"
	"tabcast/pkg/schema"
)

// loadCollection reads host-side JSON records (an array of objects) and
// ingests them through header correction. The core never opens data files
// itself; this is the host boundary.
func loadCollection(kind schema.CollectionKind, path string) (*schema.Collection, error) {
	if path == "" {
		return schema.NewCollection(kind), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s records: %w", kind, err)
	}
	return normalize.Collection(kind, rows), nil
}

func loadDataset() (*schema.Dataset, error) {
	clients, err := loadCollection(schema.KindClients, clientsPath)
	if err != nil {
		return nil, err
	}
	workers, err := loadCollection(schema.KindWorkers, workersPath)
	if err != nil {
		return nil, err
	}
	tasks, err := loadCollection(schema.KindTasks, tasksPath)
	if err != nil {
		return nil, err
	}
	return schema.NewDataset(clients, workers, tasks), nil
}

func loadCollectionByKind(kind schema.CollectionKind) (*schema.Collection, error) {
	switch kind {
	case schema.KindClients:
		return loadCollection(kind, clientsPath)
	case schema.KindWorkers:
		return loadCollection(kind, workersPath)
	case schema.KindTasks:
		return loadCollection(kind, tasksPath)
	}
	return nil, fmt.Errorf("unknown collection %q", kind)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
