// Package catalog is the static stall geometry registry.  The coordinate
// tables were measured once, offline, against the two venue layout images
// and live in an embedded JSON asset; the catalog itself is read-only and
// never mutated at runtime.
package catalog

import (
    "bytes"
    _ "embed"
    "encoding/json"
    "fmt"
)

//go:embed data/stalls.json
var rawStalls []byte

// Catalog exposes the stall geometry for both layouts.  Construct one with
// Load at startup and pass it to whatever needs geometry; there is no
// package-level instance.
type Catalog struct {
    layouts  []LayoutInfo
    byLayout map[Layout][]Stall
    byID     map[string]Stall
    order    []string // ids in authoring order across all layouts
    warnings []string
}

type assetFile struct {
    Layouts []LayoutInfo `json:"layouts"`
    Stalls  []Stall      `json:"stalls"`
}

// Load parses the embedded asset and validates it.  Duplicate ids and
// layout/category mismatches are authoring mistakes and fail the load;
// geometry that overflows the image frame only produces a warning because
// the coordinates are hand-tuned.
func Load() (*Catalog, error) {
    dec := json.NewDecoder(bytes.NewReader(rawStalls))
    dec.DisallowUnknownFields()
    var file assetFile
    if err := dec.Decode(&file); err != nil {
        return nil, fmt.Errorf("parse stall asset: %w", err)
    }
    if len(file.Layouts) == 0 || len(file.Stalls) == 0 {
        return nil, fmt.Errorf("stall asset is empty")
    }

    c := &Catalog{
        layouts:  file.Layouts,
        byLayout: make(map[Layout][]Stall),
        byID:     make(map[string]Stall, len(file.Stalls)),
    }
    allowed := make(map[Layout]map[Category]bool, len(file.Layouts))
    for _, l := range file.Layouts {
        cats := make(map[Category]bool, len(l.Categories))
        for _, cat := range l.Categories {
            cats[cat] = true
        }
        allowed[l.ID] = cats
    }

    for _, s := range file.Stalls {
        if s.ID == "" {
            return nil, fmt.Errorf("stall with empty id (label %q)", s.Label)
        }
        if _, dup := c.byID[s.ID]; dup {
            return nil, fmt.Errorf("duplicate stall id %q", s.ID)
        }
        cats, ok := allowed[s.Layout]
        if !ok {
            return nil, fmt.Errorf("stall %s: unknown layout %q", s.ID, s.Layout)
        }
        if !cats[s.Category] {
            return nil, fmt.Errorf("stall %s: category %q not allowed in layout %q", s.ID, s.Category, s.Layout)
        }
        if p := s.Position; p.Left+p.Width > 100 || p.Top+p.Height > 100 || p.Left < 0 || p.Top < 0 {
            c.warnings = append(c.warnings,
                fmt.Sprintf("stall %s: geometry extends past the layout frame", s.ID))
        }
        c.byID[s.ID] = s
        c.byLayout[s.Layout] = append(c.byLayout[s.Layout], s)
        c.order = append(c.order, s.ID)
    }
    return c, nil
}

// ListByLayout returns the stalls of one layout in authoring order.  The
// returned slice is a copy; callers may reorder or overlay it freely.
func (c *Catalog) ListByLayout(layout Layout) ([]Stall, error) {
    stalls, ok := c.byLayout[layout]
    if !ok {
        return nil, fmt.Errorf("unknown layout %q", layout)
    }
    out := make([]Stall, len(stalls))
    copy(out, stalls)
    return out, nil
}

// ListAll returns every stall across all layouts in authoring order.
func (c *Catalog) ListAll() []Stall {
    out := make([]Stall, 0, len(c.order))
    for _, id := range c.order {
        out = append(out, c.byID[id])
    }
    return out
}

// FindByID looks a stall up across all layouts.
func (c *Catalog) FindByID(id string) (Stall, bool) {
    s, ok := c.byID[id]
    return s, ok
}

// Layouts returns the floor plan metadata in authoring order.
func (c *Catalog) Layouts() []LayoutInfo {
    out := make([]LayoutInfo, len(c.layouts))
    copy(out, c.layouts)
    return out
}

// LayoutInfo returns the metadata for a single layout.
func (c *Catalog) LayoutInfo(layout Layout) (LayoutInfo, bool) {
    for _, l := range c.layouts {
        if l.ID == layout {
            return l, true
        }
    }
    return LayoutInfo{}, false
}

// Counts reports how many stalls each layout carries.
func (c *Catalog) Counts() map[Layout]int {
    out := make(map[Layout]int, len(c.byLayout))
    for l, stalls := range c.byLayout {
        out[l] = len(stalls)
    }
    return out
}

// Warnings lists the data-quality findings from Load, one line per stall.
func (c *Catalog) Warnings() []string {
    return append([]string(nil), c.warnings...)
}
