package pantry

import (
	"os"
	"strings"
	"testing"
)

func TestShopCommands(t *testing.T) {
	e := newCLI(t)
	id := e.idOf(e.mustRun("shop", "add", "--lat", "48.8566", "--lon", "2.3522"))
	e.mustRun("shop", "add", "--name", "Boulangerie", "--type", "bakery", "--categories", "pantry staple", "--lat", "48.8570", "--lon", "2.3522")

	out := e.mustRun("shop", "list")
	if !strings.Contains(out, "New Shop\tOther\tall") || !strings.Contains(out, "Boulangerie\tBakery\tPantry Staple") {
		t.Fatalf("unexpected shop list:\n%s", out)
	}

	out = e.mustRun("shop", "nearby", "--lat", "48.8566", "--lon", "2.3522", "--radius", "0.1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], id) {
		t.Fatalf("expected both shops, nearest first:\n%s", out)
	}

	if _, err := e.run("shop", "nearby", "--lat", "48.8566", "--lon", "2.3522", "--radius", "6"); err == nil {
		t.Fatalf("expected radius over the maximum to fail")
	}
	if _, err := e.run("shop", "add", "--lat", "95", "--lon", "0"); err == nil {
		t.Fatalf("expected invalid latitude to fail")
	}

	e.mustRun("shop", "delete", id)
	if _, err := e.run("shop", "delete", id); err == nil {
		t.Fatalf("expected deleting twice to fail")
	}
}

func TestWatchOnceUsesConfiguredLocation(t *testing.T) {
	e := newCLI(t)
	if err := os.WriteFile(e.config, []byte("location:\n  latitude: 48.8566\n  longitude: 2.3522\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	e.mustRun("shop", "add", "--name", "Corner", "--lat", "48.8567", "--lon", "2.3522")
	e.mustRun("grocery", "add", "Baguette")

	out := e.mustRun("watch", "--once")
	for _, want := range []string{"Shop nearby: You are near Corner", "Baguette", "Outcome: alerted"} {
		if !strings.Contains(out, want) {
			t.Fatalf("watch output missing %q:\n%s", want, out)
		}
	}
}

func TestWatchOnceWithoutLocation(t *testing.T) {
	e := newCLI(t)
	out := e.mustRun("watch", "--once")
	if !strings.Contains(out, "Outcome: denied") {
		t.Fatalf("expected denied outcome:\n%s", out)
	}
}
