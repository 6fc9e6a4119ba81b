package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/quote"
)

func init() {
	resolveCmd := &cobra.Command{
		Use:   "resolve <city>",
		Short: "Show which catalog a city resolves to",
		Args:  cobra.ExactArgs(1),
		Run:   runResolve,
	}
	resolveCmd.Flags().Bool("full", false, "Include the whole catalog document")

	itemCmd := &cobra.Command{
		Use:   "item <city> <code>",
		Short: "Look up an item by code",
		Args:  cobra.ExactArgs(2),
		Run:   runItem,
	}

	specialtyCmd := &cobra.Command{
		Use:   "specialty <city> <slug>",
		Short: "List a specialty's items",
		Args:  cobra.ExactArgs(2),
		Run:   runSpecialty,
	}

	quoteCmd := &cobra.Command{
		Use:   "quote <city> <code>...",
		Short: "Price a selection of items",
		Args:  cobra.MinimumNArgs(2),
		Run:   runQuote,
	}

	RootCmd.AddCommand(resolveCmd, itemCmd, specialtyCmd, quoteCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	full, _ := cmd.Flags().GetBool("full")
	res := quietCatalog().Resolve(args[0])
	if res.Catalog == nil {
		exitErr("resolve", fmt.Errorf("no catalog available for %q", args[0]))
	}

	if formatFlag == "text" {
		fmt.Printf("requested: %s\nresolved:  %s\nfallback:  %v\n", res.RequestedCity, res.Catalog.CitySlug, res.DidFallback)
		if n := res.Notice(); n != "" {
			fmt.Println(n)
		}
		return
	}
	if full {
		printJSON(res)
		return
	}
	printJSON(map[string]any{
		"requestedCity": res.RequestedCity,
		"resolvedCity":  res.Catalog.CitySlug,
		"didFallback":   res.DidFallback,
		"notice":        res.Notice(),
	})
}

func runItem(cmd *cobra.Command, args []string) {
	it := quietCatalog().GetItem(args[0], args[1])
	if it == nil {
		fmt.Fprintf(os.Stderr, "item not found: %s\n", args[1])
		os.Exit(1)
	}
	if formatFlag == "text" {
		fmt.Printf("%s  %s  %s / %s\n", it.Code, it.Name, catalog.FormatPrice(it.Price), it.Unit)
		return
	}
	printJSON(it)
}

func runSpecialty(cmd *cobra.Command, args []string) {
	items := quietCatalog().GetItemsBySpecialty(args[0], args[1])
	if formatFlag == "text" {
		for _, it := range items {
			fmt.Printf("%-24s %-40s %10s / %s\n", it.Code, it.Name, catalog.FormatPrice(it.Price), it.Unit)
		}
		return
	}
	printJSON(items)
}

func runQuote(cmd *cobra.Command, args []string) {
	q := quote.Build(quietCatalog(), args[0], args[1:])
	if formatFlag != "text" {
		printJSON(q)
		return
	}

	if q.Notice != "" {
		fmt.Println(q.Notice)
	}
	for _, l := range q.Lines {
		fmt.Printf("%-24s %-40s %10s\n", l.Code, l.Name, l.PriceLabel)
	}
	fmt.Printf("%-65s %10s\n", "Subtotal", q.SubtotalLabel)
	fmt.Printf("%-65s %10s\n", "First teleconsultation", q.FirstConsult)
	for _, code := range q.UnknownItems {
		fmt.Printf("unknown item: %s\n", code)
	}
}
