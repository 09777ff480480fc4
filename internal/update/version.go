package update

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// DevVersion is the version of builds without ldflags.
const DevVersion = "dev"

// Direction labels how a candidate version relates to the current one.
type Direction string

const (
	DirectionNone      Direction = "none"
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
	DirectionChanged   Direction = "changed" // Differs but not comparable
)

// NormalizeVersion trims whitespace and the 'v' prefix
func NormalizeVersion(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "v")
}

// ShouldUpdate reports whether candidate should replace current.
// Any difference qualifies, including a lower version.
func ShouldUpdate(current, candidate string) bool {
	return NormalizeVersion(current) != NormalizeVersion(candidate)
}

// Classify describes the change from current to candidate. It only feeds
// logs and prompts; ShouldUpdate makes the decision.
func Classify(current, candidate string) Direction {
	if !ShouldUpdate(current, candidate) {
		return DirectionNone
	}

	cur, err := goversion.NewVersion(NormalizeVersion(current))
	if err != nil {
		return DirectionChanged
	}
	cand, err := goversion.NewVersion(NormalizeVersion(candidate))
	if err != nil {
		return DirectionChanged
	}

	switch cand.Compare(cur) {
	case 1:
		return DirectionUpgrade
	case -1:
		return DirectionDowngrade
	default:
		// e.g. 1.0 vs 1.0.0: different tokens, same version
		return DirectionChanged
	}
}

// newInfo fills the comparison fields shared by all checkers.
func newInfo(current, latest string) *Info {
	return &Info{
		Available:      ShouldUpdate(current, latest),
		Direction:      Classify(current, latest),
		CurrentVersion: NormalizeVersion(current),
		LatestVersion:  NormalizeVersion(latest),
	}
}
