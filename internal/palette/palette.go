// Package palette assigns display colors to calendar users. Colors are
// cosmetic only and carry no scheduling meaning.
package palette

// Own-slot colors; other users draw from the palettes below.
const (
	OwnSlotColor  = "#2563eb"
	OwnSlotBorder = "#1d4ed8"
)

var userColors = []string{
	"#34d399", // emerald
	"#f87171", // red
	"#60a5fa", // blue
	"#c084fc", // purple
	"#fbbf24", // amber
	"#34d399", // emerald
	"#f472b6", // pink
	"#818cf8", // indigo
	"#fb923c", // orange
	"#4ade80", // green
}

var userBorderColors = []string{
	"#059669",
	"#dc2626",
	"#2563eb",
	"#9333ea",
	"#d97706",
	"#059669",
	"#db2777",
	"#4f46e5",
	"#ea580c",
	"#16a34a",
}

// ColorFor deterministically picks a palette color for a user ID; the same
// ID always maps to the same color.
func ColorFor(userID string) string {
	return userColors[hash(userID)%len(userColors)]
}

// BorderFor picks the darker border variant matching ColorFor.
func BorderFor(userID string) string {
	return userBorderColors[hash(userID)%len(userBorderColors)]
}

func hash(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}
