package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"sunatscraper/lib/scrapers/sunat/extract"

	"github.com/jedib0t/go-pretty/v6/table"
)

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func renderRecords(w io.Writer, records []extract.Record, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"RUC", "Razón social", "Estado", "Condición", "Dirección", "Ubicación", "Documento", "Contribuyente"})
	for _, r := range records {
		if !r.Found() {
			continue
		}
		t.AppendRow(table.Row{
			*r.RUC,
			orDash(r.Name),
			orDash(r.Status),
			orDash(r.Condition),
			orDash(r.Address),
			orDash(r.Location),
			orDash(r.DocumentType),
			orDash(r.TaxpayerType),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func renderResults(w io.Writer, results []extract.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, results)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"RUC", "Razón social", "Ubicación", "Estado"})
	for _, r := range results {
		t.AppendRow(table.Row{r.RUC, orDash(r.Name), orDash(r.Location), orDash(r.Status)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func printRecords(ctx context.Context, records ...extract.Record) error {
	found := 0
	for _, r := range records {
		if r.Found() {
			found++
		}
	}
	if found == 0 {
		return errNotFound
	}

	err := archiveRecords(ctx, records)
	if err != nil {
		return err
	}
	return renderRecords(os.Stdout, records, asJSON)
}

func printResults(results []extract.SearchResult) error {
	if len(results) == 0 {
		return errNotFound
	}
	return renderResults(os.Stdout, results, asJSON)
}

func archiveRecords(ctx context.Context, records []extract.Record) error {
	db, err := openArchive(ctx)
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	saved, err := db.Save(ctx, records...)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "archived records", "count", saved, "db", dbPath)
	return nil
}
