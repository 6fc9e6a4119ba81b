package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/glowheal/catalog/internal/validate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate catalog files",
		Long:  "Checks every city catalog and add-on file in dir. Without dir, checks data/catalog under the working directory, or the embedded catalogs when it is absent. Exits 1 if any error is found.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runValidate,
	}

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		os.Exit(validate.Run(args[0], os.Stdout))
	}
	os.Exit(validate.RunDefault(os.Stdout))
}
