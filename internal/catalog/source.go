package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/glowheal/catalog/data"
	"github.com/glowheal/catalog/internal/model"
)

// Source loads catalog documents by city.
type Source interface {
	// Catalog loads the city's catalog document.
	Catalog(city City) (*model.CatalogCity, error)

	// Addons loads the city's add-on list. A missing file returns an error
	// wrapping fs.ErrNotExist.
	Addons(city City) ([]model.CatalogAddon, error)
}

// FSSource reads <city>.json and addons.<city>.json from a file system.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource returns a Source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// NewDirSource returns a Source over a catalog directory on disk.
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

// NewEmbeddedSource returns a Source over the catalogs compiled into the binary.
func NewEmbeddedSource() *FSSource {
	return NewFSSource(data.Catalog())
}

func (s *FSSource) Catalog(city City) (*model.CatalogCity, error) {
	var doc model.CatalogCity
	if err := s.decode(CatalogFile(city), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *FSSource) Addons(city City) ([]model.CatalogAddon, error) {
	var addons []model.CatalogAddon
	if err := s.decode(AddonsFile(city), &addons); err != nil {
		return nil, err
	}
	return addons, nil
}

func (s *FSSource) decode(name string, v any) error {
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
