// Package layout implements the masonry placement algorithm, the viewport
// profile registry and the content version fingerprint.
package layout

// ViewportProfile is a named responsive breakpoint configuration. Profiles are
// fixed at compile time and never mutated at runtime.
type ViewportProfile struct {
	Name           string `json:"name"`
	Columns        int    `json:"columns"`
	Gap            int    `json:"gap"`
	ColumnWidth    int    `json:"columnWidth"`
	MaxScreenWidth int    `json:"maxScreenWidth"`
}

var profiles = map[string]ViewportProfile{
	"mobile":  {Name: "mobile", Columns: 2, Gap: 8, ColumnWidth: 180, MaxScreenWidth: 767},
	"tablet":  {Name: "tablet", Columns: 2, Gap: 12, ColumnWidth: 320, MaxScreenWidth: 1023},
	"desktop": {Name: "desktop", Columns: 4, Gap: 16, ColumnWidth: 300, MaxScreenWidth: 0},
}

// ResolveProfile looks up a viewport profile by name. Absent or unrecognized
// names fall back to desktop.
func ResolveProfile(name string) ViewportProfile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles["desktop"]
}

// ProfileForColumns returns the profile whose column count matches, falling
// back to desktop. Used to pick the nominal column width for height estimation.
func ProfileForColumns(columns int) ViewportProfile {
	for _, name := range []string{"mobile", "tablet", "desktop"} {
		if p := profiles[name]; p.Columns == columns {
			return p
		}
	}
	return profiles["desktop"]
}
