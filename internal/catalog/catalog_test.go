package catalog

import "testing"

func TestLoad(t *testing.T) {
    c, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    counts := c.Counts()
    if counts[LayoutLifestyle] == 0 || counts[LayoutRealEstateFood] == 0 {
        t.Fatalf("expected stalls in both layouts, got %v", counts)
    }
    if got := len(c.Layouts()); got != 2 {
        t.Fatalf("expected 2 layouts, got %d", got)
    }
    if total := len(c.ListAll()); total != counts[LayoutLifestyle]+counts[LayoutRealEstateFood] {
        t.Fatalf("ListAll length %d does not match layout counts %v", total, counts)
    }
}

func TestListByLayout(t *testing.T) {
    c, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    for _, layout := range []Layout{LayoutLifestyle, LayoutRealEstateFood} {
        first, err := c.ListByLayout(layout)
        if err != nil {
            t.Fatalf("ListByLayout(%s): %v", layout, err)
        }
        if len(first) == 0 {
            t.Fatalf("ListByLayout(%s) is empty", layout)
        }
        seen := make(map[string]bool, len(first))
        for _, s := range first {
            if seen[s.ID] {
                t.Errorf("duplicate id %q in layout %s", s.ID, layout)
            }
            seen[s.ID] = true
            if s.Layout != layout {
                t.Errorf("stall %s carries layout %q, want %q", s.ID, s.Layout, layout)
            }
        }
        // Repeated calls return the same sequence.
        second, _ := c.ListByLayout(layout)
        if len(second) != len(first) {
            t.Fatalf("list length changed between calls: %d vs %d", len(first), len(second))
        }
        for i := range first {
            if first[i].ID != second[i].ID {
                t.Fatalf("ordering not stable at %d: %q vs %q", i, first[i].ID, second[i].ID)
            }
        }
    }
    if _, err := c.ListByLayout(Layout("garden")); err == nil {
        t.Error("expected error for unknown layout")
    }
}

func TestLayoutCategoryConsistency(t *testing.T) {
    c, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    for _, s := range c.ListAll() {
        switch s.Layout {
        case LayoutLifestyle:
            if s.Category != CategoryLifestyle {
                t.Errorf("stall %s: category %q in lifestyle layout", s.ID, s.Category)
            }
        case LayoutRealEstateFood:
            if s.Category != CategoryFood && s.Category != CategoryRealEstate {
                t.Errorf("stall %s: category %q in real-estate-food layout", s.ID, s.Category)
            }
        default:
            t.Errorf("stall %s: unexpected layout %q", s.ID, s.Layout)
        }
    }
}

func TestFindByID(t *testing.T) {
    c, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    s, ok := c.FindByID("L-101")
    if !ok {
        t.Fatal("expected stall L-101 in the catalog")
    }
    if s.Layout != LayoutLifestyle || s.Label != "101" {
        t.Errorf("unexpected stall for L-101: %+v", s)
    }
    if _, ok := c.FindByID("L-does-not-exist"); ok {
        t.Error("expected miss for unknown id")
    }
}
