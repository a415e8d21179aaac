package card

import (
	"strings"
	"testing"
)

func TestContextStringCapsRulingsAtThree(t *testing.T) {
	c := Card{
		Name:       "Dockside Extortionist",
		TypeLine:   "Creature — Goblin Pirate",
		OracleText: "When Dockside Extortionist enters the battlefield...",
		Rulings:    []string{"ruling one", "ruling two", "ruling three", "ruling four"},
	}
	out := c.ContextString()
	if strings.Contains(out, "ruling four") {
		t.Fatalf("expected rulings to be capped at 3, got: %s", out)
	}
	if !strings.Contains(out, "ruling three") {
		t.Fatalf("expected the third ruling to be included, got: %s", out)
	}
}

func TestContextStringOmitsEmptyManaCost(t *testing.T) {
	c := Card{Name: "Forest", TypeLine: "Basic Land", OracleText: "({T}: Add {G}.)"}
	out := c.ContextString()
	if strings.Contains(out, "Mana Cost:") {
		t.Fatalf("expected no Mana Cost line for a land, got: %s", out)
	}
}
