package catalog

// Layout identifies one of the two venue floor plans.  Each layout has its
// own coordinate space and its own partition of the stall catalog; reads,
// writes and live subscriptions are always scoped to exactly one layout.
type Layout string

const (
    LayoutLifestyle      Layout = "lifestyle"
    LayoutRealEstateFood Layout = "real-estate-food"
)

// Valid reports whether l is one of the two known layouts.
func (l Layout) Valid() bool {
    return l == LayoutLifestyle || l == LayoutRealEstateFood
}

// Category classifies what a stall sells.  The lifestyle layout carries only
// lifestyle stalls; the real-estate-and-food layout carries the other two.
type Category string

const (
    CategoryLifestyle  Category = "lifestyle"
    CategoryFood       Category = "food"
    CategoryRealEstate Category = "real-estate"
)

// StallType describes how many sides of a stall are open.  Purely
// informational; booking logic never looks at it.
type StallType string

const (
    StallOneSideOpen StallType = "one-side-open"
    StallTwoSideOpen StallType = "two-side-open"
    StallStandard    StallType = "standard"
)

// Status is a stall's availability.  Only two values are ever persisted; a
// transient "selected" state exists in session memory but never reaches the
// store.
type Status string

const (
    StatusAvailable Status = "available"
    StatusBooked    Status = "booked"
)

// Valid reports whether s is a persistable status.
func (s Status) Valid() bool {
    return s == StatusAvailable || s == StatusBooked
}

// Position places a stall on its layout image.  Left, Top, Width and Height
// are percentages (0-100) of the image dimensions; Rotation is degrees about
// the stall's own center and nil when the stall is axis-aligned.  The data
// is hand-tuned against the reference images, so a stall may poke slightly
// past the frame; Load reports that as a warning, not an error.
type Position struct {
    Left     float64  `json:"left"`
    Top      float64  `json:"top"`
    Width    float64  `json:"width"`
    Height   float64  `json:"height"`
    Rotation *float64 `json:"rotation,omitempty"`
}

// Stall is one immutable geometry record.  All status mutation happens in
// the availability overlay, never here.
//
// Fields:
//  ID        – globally unique, namespaced by layout prefix ("L-", "RE-", "F-").
//  Label     – display string painted on the overlay cell (not unique).
//  Layout    – which floor plan the stall belongs to.
//  Category  – what the stall sells; consistent with Layout.
//  Position  – overlay placement, percentages of the layout image.
//  StallType – open-side count, cosmetic.
//  Size      – free-form description such as "3x2m".
type Stall struct {
    ID        string    `json:"id"`
    Label     string    `json:"label"`
    Layout    Layout    `json:"layout"`
    Category  Category  `json:"category"`
    Position  Position  `json:"position"`
    StallType StallType `json:"stall_type"`
    Size      string    `json:"size"`
}

// LayoutInfo is the authoring-time metadata for one floor plan: the display
// name shown in the layout selector and the pixel dimensions of the source
// image the percentages were measured against.
type LayoutInfo struct {
    ID          Layout     `json:"id"`
    Name        string     `json:"name"`
    Description string     `json:"description"`
    Categories  []Category `json:"categories"`
    ImageWidth  int        `json:"imageWidth"`
    ImageHeight int        `json:"imageHeight"`
}
