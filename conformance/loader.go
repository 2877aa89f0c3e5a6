package conformance

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// TestPath is the directory of the YAML suites, relative to this package
const TestPath = "testdata"

// LoadedCase is a case with the file and suite it came from
type LoadedCase struct {
	File  string
	Suite string
	Case  Case
}

// LoadAll walks dir and loads every case of every .yaml file, in file
// name order
func LoadAll(dir string) ([]LoadedCase, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	var loaded []LoadedCase
	for _, path := range files {
		suite, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		rel, _ := filepath.Rel(dir, path)
		for _, c := range suite.Tests {
			loaded = append(loaded, LoadedCase{File: rel, Suite: suite.Name, Case: c})
		}
	}

	return loaded, nil
}

func loadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	return &suite, nil
}
