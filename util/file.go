package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func SaveJson(path string, data interface{}) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	_, err = file.Write(bs)
	return err
}

// ReadYaml decodes the file at path into out. Fields absent from the file
// keep the values out already holds.
func ReadYaml(path string, out interface{}) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(bs, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func SaveYaml(path string, data interface{}) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	bs, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
