package pantry

import (
	"strings"
	"testing"
)

func TestGroceryBuyMovesItem(t *testing.T) {
	e := newCLI(t)
	id := e.idOf(e.mustRun("grocery", "add", "Eggs", "--category", "dairy", "--expires-in", "2w"))

	out := e.mustRun("grocery", "buy", id)
	if !strings.Contains(out, "Added ingredient") || !strings.Contains(out, "expires 2026-03-24") {
		t.Fatalf("unexpected buy output:\n%s", out)
	}
	if out := e.mustRun("grocery", "list"); strings.Contains(out, "Eggs") {
		t.Fatalf("bought item should leave the list:\n%s", out)
	}
	if out := e.mustRun("ingredient", "list"); !strings.Contains(out, "Eggs") {
		t.Fatalf("bought item should be in the pantry:\n%s", out)
	}
	if _, err := e.run("grocery", "buy", id); err == nil {
		t.Fatalf("expected buying twice to fail")
	}
}

func TestGroceryBuyMerge(t *testing.T) {
	e := newCLI(t)
	e.mustRun("ingredient", "add", "Lemons", "--amount", "2")
	id := e.idOf(e.mustRun("grocery", "add", "lemons", "--amount", "3"))

	out := e.mustRun("grocery", "buy", id, "--merge")
	if !strings.Contains(out, "Merged into ingredient") {
		t.Fatalf("expected merge:\n%s", out)
	}
	if out := e.mustRun("ingredient", "list"); !strings.Contains(out, "5 pcs") {
		t.Fatalf("expected summed amount:\n%s", out)
	}
}

func TestGroceryEditAndClear(t *testing.T) {
	e := newCLI(t)
	id := e.idOf(e.mustRun("grocery", "add", "Flour"))
	e.mustRun("grocery", "add", "Sugar")

	e.mustRun("grocery", "edit", id, "--name", "Rye Flour", "--category", "pantry staple")
	out := e.mustRun("grocery", "show", id)
	if !strings.Contains(out, "Name: Rye Flour") || !strings.Contains(out, "Category: Pantry Staple") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	if _, err := e.run("grocery", "clear"); err == nil {
		t.Fatalf("expected clear without --yes to fail")
	}
	out = e.mustRun("grocery", "clear", "--yes")
	if !strings.Contains(out, "Cleared 2 grocery item(s)") {
		t.Fatalf("unexpected clear output:\n%s", out)
	}
}

func TestGroceryListNear(t *testing.T) {
	e := newCLI(t)
	e.mustRun("shop", "add", "--name", "Butcher Bob", "--type", "butcher", "--categories", "meat", "--lat", "52.5200", "--lon", "13.4050")
	e.mustRun("shop", "add", "--name", "Far Mart", "--lat", "52.6000", "--lon", "13.4050")
	e.mustRun("grocery", "add", "Steak", "--category", "meat")
	e.mustRun("grocery", "add", "Apples", "--category", "fruit")

	out := e.mustRun("grocery", "list", "--near", "--lat", "52.5210", "--lon", "13.4050")
	if !strings.Contains(out, "Nearby: Butcher Bob") || !strings.Contains(out, "Steak") || strings.Contains(out, "Apples") {
		t.Fatalf("near filter mismatch:\n%s", out)
	}

	out = e.mustRun("grocery", "list", "--near", "--lat", "52.5210", "--lon", "13.4050", "--all")
	if !strings.Contains(out, "Apples") {
		t.Fatalf("--all should list everything:\n%s", out)
	}

	out = e.mustRun("grocery", "list", "--near", "--lat", "10", "--lon", "10")
	if !strings.Contains(out, "No shops within 0.50 km.") {
		t.Fatalf("expected no shops:\n%s", out)
	}

	if _, err := e.run("grocery", "list", "--near"); err == nil || !strings.Contains(err.Error(), "no location available") {
		t.Fatalf("expected missing location error, got %v", err)
	}
}
