package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/proxe-ai/leadbridge/internal/app"
)

// Runs one reconciliation pass over unlinked channel sessions, same logic as
// the POST /api/admin/backfill-leads endpoint but usable from cron.
func main() {
	var brand string
	var limit int
	var statusOnly bool
	flag.StringVar(&brand, "brand", "", "brand to reconcile (defaults to DEFAULT_BRAND)")
	flag.IntVar(&limit, "limit", 0, "max sessions to process in this pass")
	flag.BoolVar(&statusOnly, "status", false, "print remaining work without reconciling")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if brand == "" {
		brand = application.Cfg.DefaultBrand
	}
	if brand == "" {
		fmt.Println("no brand provided and DEFAULT_BRAND is unset")
		os.Exit(1)
	}

	ctx := context.Background()

	if statusOnly {
		status, err := application.Services.Backfill.Status(ctx, brand)
		if err != nil {
			fmt.Printf("backfill status: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("brand=%s unlinked_sessions=%d total_leads=%d needs_backfill=%v\n",
			brand, status.UnlinkedSessions, status.TotalLeads, status.NeedsBackfill)
		return
	}

	result, err := application.Services.Backfill.ReconcileUnlinkedSessions(ctx, brand, limit)
	if err != nil {
		fmt.Printf("backfill: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("brand=%s processed=%d created=%d updated=%d linked=%d errors=%d\n",
		brand, result.Processed, result.Created, result.Updated, result.Linked, result.Errors)
	if result.Errors > 0 {
		os.Exit(2)
	}
}
