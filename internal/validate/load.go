package validate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glowheal/catalog/data"
	"github.com/glowheal/catalog/internal/catalog"
)

// DefaultDir is where the catalog documents live relative to the repository root.
const DefaultDir = "data/catalog"

// LoadDir reads <dir>/<city>.json and <dir>/addons.<city>.json for every
// supported city. Missing files are returned as nil content.
func LoadDir(dir string) ([]Input, error) {
	return load(os.DirFS(dir), func(name string) string { return filepath.Join(dir, name) })
}

// LoadFS reads the same layout from fsys. label prefixes the reported paths.
func LoadFS(fsys fs.FS, label string) ([]Input, error) {
	return load(fsys, func(name string) string { return label + "/" + name })
}

func load(fsys fs.FS, display func(string) string) ([]Input, error) {
	inputs := make([]Input, 0, len(catalog.Cities))
	for _, city := range catalog.Cities {
		name := catalog.CatalogFile(city)
		doc, err := readOptional(fsys, name, display)
		if err != nil {
			return nil, err
		}
		addons, err := readOptional(fsys, catalog.AddonsFile(city), display)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{City: city, Path: display(name), Catalog: doc, Addons: addons})
	}
	return inputs, nil
}

func readOptional(fsys fs.FS, name string, display func(string) string) ([]byte, error) {
	b, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", display(name), err)
	}
	return b, nil
}

// Run validates the catalogs in dir, prints the report to w and returns the
// process exit status: 1 if any error was recorded, 0 otherwise.
func Run(dir string, w io.Writer) int {
	inputs, err := LoadDir(dir)
	return finish(inputs, err, w)
}

// RunDefault validates DefaultDir when it exists under the working directory
// and the catalogs embedded in the binary otherwise.
func RunDefault(w io.Writer) int {
	if info, err := os.Stat(DefaultDir); err == nil && info.IsDir() {
		return Run(DefaultDir, w)
	}
	fmt.Fprintf(w, "%s not found in the working directory, validating embedded catalogs\n", DefaultDir)
	inputs, err := LoadFS(data.Catalog(), "embedded")
	return finish(inputs, err, w)
}

func finish(inputs []Input, err error, w io.Writer) int {
	if err != nil {
		fmt.Fprintf(w, "error: load catalogs: %v\n", err)
		return 1
	}
	report := Validate(inputs)
	report.Print(w)
	if report.Failed() {
		return 1
	}
	return 0
}
