package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/glowheal/catalog/internal/lead"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import leads from JSON or JSON Lines",
		Long:  "Import leads from a file or stdin. Accepts the array written by export or the leads-log.jsonl written by the file store. Existing ids are skipped.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	leadsCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		r = f
	}

	s := openLeadStore()
	defer s.Close()

	imported, skipped, err := lead.Import(cmd.Context(), s, r)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf(`{"ok":true,"imported":%d,"skipped":%d}`+"\n", imported, skipped)
}
