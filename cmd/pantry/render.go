package pantry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return timeutil.FormatDate(*t)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func status(ing model.Ingredient, now time.Time) string {
	parts := make([]string, 0, 3)
	if days, ok := freshness.DaysLeft(ing, now); ok {
		parts = append(parts, freshness.DayLabel(days))
	}
	if ing.IsFrozen() {
		parts = append(parts, "frozen")
	}
	if ing.Open {
		parts = append(parts, "open")
	}
	if ing.Maturity.Level != model.RipenessNone {
		parts = append(parts, ing.Maturity.Level.String())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func printIngredients(w io.Writer, items []model.Ingredient, now time.Time) {
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tCATEGORY\tLOCATION\tAMOUNT\tEXPIRES\tSTATUS")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, orDash(it.Brand), orDash(string(it.Category)), orDash(string(it.Location)), model.FormatAmount(it.Amount), dateOrDash(it.ExpirationDate), status(it, now))
	}
}

func printIngredient(w io.Writer, it model.Ingredient, now time.Time) {
	fmt.Fprintf(w, "ID: %s\n", it.ID)
	fmt.Fprintf(w, "Name: %s\n", it.Name)
	fmt.Fprintf(w, "Brand: %s\n", orDash(it.Brand))
	fmt.Fprintf(w, "Category: %s\n", orDash(string(it.Category)))
	fmt.Fprintf(w, "Location: %s\n", orDash(string(it.Location)))
	fmt.Fprintf(w, "Confection: %s\n", orDash(string(it.ConfectionType)))
	fmt.Fprintf(w, "Amount: %s\n", model.FormatAmount(it.Amount))
	fmt.Fprintf(w, "Added: %s\n", timeutil.FormatDate(it.AddedDate))
	fmt.Fprintf(w, "Expires: %s\n", dateOrDash(it.ExpirationDate))
	if it.Frozen != nil {
		fmt.Fprintf(w, "Frozen with: %d days left\n", *it.Frozen)
	}
	fmt.Fprintf(w, "Open: %t\n", it.Open)
	fmt.Fprintf(w, "Ripeness: %s (checked %s)\n", it.Maturity.Level, timeutil.FormatDate(it.Maturity.Edited))
	fmt.Fprintf(w, "Status: %s\n", status(it, now))
}

func printGrocery(w io.Writer, items []model.GroceryListItem) {
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tCATEGORY\tAMOUNT")
	for _, g := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.Item.Name, orDash(g.Item.Brand), orDash(string(g.Item.Category)), model.FormatAmount(g.Item.Amount))
	}
}

// renderBuckets writes the grouped expiring view.
func renderBuckets(w io.Writer, buckets []freshness.Bucket, now time.Time) {
	if len(buckets) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return
	}
	for i, b := range buckets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s (%d) ==\n", b.Label, len(b.Items))
		for _, it := range b.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Name, dateOrDash(it.ExpirationDate), status(it, now))
		}
	}
}

// renderExpiring writes the flat threshold view.
func renderExpiring(w io.Writer, items []model.Ingredient, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return
	}
	fmt.Fprintln(w, "ID\tNAME\tEXPIRES\tSTATUS")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Name, dateOrDash(it.ExpirationDate), status(it, now))
	}
}
