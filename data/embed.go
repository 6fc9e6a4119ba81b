// Package data embeds the static price catalogs shipped with the site.
package data

import (
	"embed"
	"io/fs"
)

//go:embed catalog/*.json
var files embed.FS

// Catalog returns the embedded catalog directory, laid out as
// <city>.json and addons.<city>.json.
func Catalog() fs.FS {
	sub, err := fs.Sub(files, "catalog")
	if err != nil {
		panic(err)
	}
	return sub
}
