package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glowheal/catalog/internal/lead"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect captured leads",
}

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		Run:   runLeadsList,
	}
	listCmd.Flags().StringP("city", "c", "", "Filter by city")
	listCmd.Flags().StringP("source", "s", "", "Filter by source")
	listCmd.Flags().IntP("limit", "l", 20, "Max results")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one lead",
		Args:  cobra.ExactArgs(1),
		Run:   runLeadsGet,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export leads as JSON or CSV",
		Run:   runLeadsExport,
	}
	exportCmd.Flags().StringP("city", "c", "", "Filter by city")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().String("as", "json", "Export format: json or csv")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Count leads per city and source",
		Run:   runLeadsStats,
	}

	leadsCmd.AddCommand(listCmd, getCmd, exportCmd, statsCmd)
	RootCmd.AddCommand(leadsCmd)
}

// exportLimit bounds export and stats scans.
const exportLimit = 1 << 20

func openLeadStore() lead.Store {
	s, err := openLeads(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

func runLeadsList(cmd *cobra.Command, args []string) {
	city, _ := cmd.Flags().GetString("city")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	s := openLeadStore()
	defer s.Close()

	leads, err := s.List(cmd.Context(), lead.ListParams{City: city, Source: source, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}

	if formatFlag == "text" {
		for _, l := range leads {
			fmt.Printf("%s  %s  %-10s %-20s %s\n",
				l.ID, l.CreatedAt.Local().Format(time.DateTime), l.City, l.Source, l.Name)
		}
		return
	}
	printJSON(leads)
}

func runLeadsGet(cmd *cobra.Command, args []string) {
	s := openLeadStore()
	defer s.Close()

	l, err := s.Get(cmd.Context(), args[0])
	if errors.Is(err, lead.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "lead not found: %s\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		exitErr("get", err)
	}
	printJSON(l)
}

func runLeadsExport(cmd *cobra.Command, args []string) {
	city, _ := cmd.Flags().GetString("city")
	output, _ := cmd.Flags().GetString("output")
	as, _ := cmd.Flags().GetString("as")

	s := openLeadStore()
	defer s.Close()

	leads, err := s.List(cmd.Context(), lead.ListParams{City: city, Limit: exportLimit})
	if err != nil {
		exitErr("export", err)
	}

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	switch as {
	case "csv":
		if err := lead.WriteCSV(w, leads); err != nil {
			exitErr("export", err)
		}
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(leads); err != nil {
			exitErr("export", err)
		}
	default:
		exitErr("export", fmt.Errorf("unknown format %q (use json or csv)", as))
	}

	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported %d leads to %s\n", len(leads), output)
	}
}

func runLeadsStats(cmd *cobra.Command, args []string) {
	s := openLeadStore()
	defer s.Close()

	leads, err := s.List(cmd.Context(), lead.ListParams{Limit: exportLimit})
	if err != nil {
		exitErr("stats", err)
	}
	printJSON(lead.Summarize(leads))
}
