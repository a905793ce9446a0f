package config

// Paths locates the table files on disk. An empty path falls back to the
// embedded default for that table.
type Paths struct {
	Responses string
	Emotions  string
	Tips      string
}

// Tables is the static advice data, loaded once at startup.
type Tables struct {
	// Order is the emotion seed order used for accumulation and tie-breaks.
	Order []string

	// Advice maps a lower-case emotion name to its advice lines.
	Advice map[string][]string

	// Tips is the general wellness tip list.
	Tips []string
}

type seed struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
