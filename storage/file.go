package storage

import (
	"encoding/json"
	"os"

	"court-sniper/types"
)

// File is the secondary store: a local JSON snapshot that keeps the data
// readable when Redis is down.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) LoadAll() ([]types.Slot, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slots []types.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (f *File) ReplaceAll(slots []types.Slot) error {
	if slots == nil {
		slots = []types.Slot{}
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}
