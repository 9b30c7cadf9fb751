package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

type Storage struct{}

// SaveFile writes content to filePath, creating parent directories as needed.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("error creating parent directory: %w", err)
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil || !os.IsNotExist(err)
}
