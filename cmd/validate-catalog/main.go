// Command validate-catalog checks the city catalogs and exits 1 on any error.
//
// With a directory argument it validates that directory. Without one it
// validates data/catalog under the working directory, so run it from the
// repository root; elsewhere it falls back to the catalogs embedded at build
// time.
package main

import (
	"os"

	"github.com/glowheal/catalog/internal/validate"
)

func main() {
	if len(os.Args) > 1 {
		os.Exit(validate.Run(os.Args[1], os.Stdout))
	}
	os.Exit(validate.RunDefault(os.Stdout))
}
