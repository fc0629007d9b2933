package pattern

// DefaultMarker is the rule entry that selects both configured defaults.
const DefaultMarker = "default"

// Entry is one rule entry of a file, before resolution. Empty strings mean
// the field was not given.
type Entry struct {
	Default    bool
	Search     string
	SearchRaw  string
	Replace    string
	ReplaceRaw string
}

// Defaults names the search pattern and replacement template used when a
// rule does not choose one.
type Defaults struct {
	Search      string `json:"search" yaml:"search" toml:"search"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
}

// DefaultDefaults is used when the configuration declares no defaults.
var DefaultDefaults = Defaults{Search: "full", Replacement: "full"}

// Rule is a resolved search/replace pair. Rules built from the same source
// text by one Registry compare equal.
type Rule struct {
	Search  *Pattern
	Replace *Template
}
