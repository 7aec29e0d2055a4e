// Command replay feeds recorded model responses through extraction and merge
// without calling a model, then prints the resulting invoice as JSON.
//
//	replay [-from invoice.json] response1.txt [response2.txt ...]
//
// Responses are applied in order to the same invoice, like consecutive chat
// turns on an opened invoice.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/llm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	from := flag.String("from", "", "JSON invoice to start from (default: a new empty invoice)")
	flag.Parse()
	if flag.NArg() == 0 {
		logger.Error("usage: replay [-from invoice.json] <response.txt> [...]")
		os.Exit(2)
	}

	current := entity.NewInvoice(time.Now())
	if *from != "" {
		data, err := os.ReadFile(*from)
		if err != nil {
			logger.Error("read starting invoice", "path", *from, "error", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &current); err != nil {
			logger.Error("decode starting invoice", "path", *from, "error", err)
			os.Exit(1)
		}
		if current.Items == nil {
			current.Items = []entity.LineItem{}
		}
	}

	merger := invoice.NewMerger(logger)
	for i, path := range flag.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read response", "path", path, "error", err)
			os.Exit(1)
		}
		resp := llm.ParseAIResponse(string(raw))
		logger.Info("replay.turn",
			"turn", i+1,
			"path", path,
			"message", resp.Message,
			"has_update", resp.HasUpdate(),
		)
		if resp.HasUpdate() {
			current = merger.Merge(current, resp.InvoiceUpdate)
		}
	}

	out := struct {
		entity.Invoice
		Total float64 `json:"total"`
	}{current, invoice.CalculateTotal(current.Items)}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode invoice", "error", err)
		os.Exit(1)
	}
}
