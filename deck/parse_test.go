package deck

import "testing"

func TestParseDecklistBasic(t *testing.T) {
	text := "4 Lightning Bolt\n2x Counterspell\nForest\n"
	main, side := ParseDecklist(text)
	if len(side) != 0 {
		t.Fatalf("expected no sideboard entries, got %v", side)
	}
	if len(main) != 3 {
		t.Fatalf("expected 3 mainboard entries, got %v", main)
	}
	if main[0].Name != "Lightning Bolt" || main[0].Quantity != 4 {
		t.Fatalf("unexpected first card: %+v", main[0])
	}
	if main[1].Name != "Counterspell" || main[1].Quantity != 2 {
		t.Fatalf("unexpected second card: %+v", main[1])
	}
	if main[2].Name != "Forest" || main[2].Quantity != 1 {
		t.Fatalf("unexpected third card, expected quantity 1: %+v", main[2])
	}
}

func TestParseDecklistSideboardMarker(t *testing.T) {
	text := "4 Lightning Bolt\nSideboard\n2 Rest in Peace\n"
	main, side := ParseDecklist(text)
	if len(main) != 1 {
		t.Fatalf("expected 1 mainboard entry, got %v", main)
	}
	if len(side) != 1 || side[0].Name != "Rest in Peace" {
		t.Fatalf("expected Rest in Peace in sideboard, got %v", side)
	}
}

func TestParseDecklistSkipsCommentsAndBlankLines(t *testing.T) {
	text := "# my deck\n\n// comment\n4 Lightning Bolt\n"
	main, _ := ParseDecklist(text)
	if len(main) != 1 {
		t.Fatalf("expected comments and blanks skipped, got %v", main)
	}
}

func TestParseDecklistSBColonMarker(t *testing.T) {
	text := "4 Lightning Bolt\nsb:\n1 Pyroblast\n"
	main, side := ParseDecklist(text)
	if len(main) != 1 {
		t.Fatalf("expected 1 mainboard entry, got %v", main)
	}
	if len(side) != 1 || side[0].Name != "Pyroblast" {
		t.Fatalf("expected Pyroblast in sideboard, got %v", side)
	}
}
