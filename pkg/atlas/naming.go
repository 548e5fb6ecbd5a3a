package atlas

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

const (
	// maxNameLength is the longest project or cluster name Atlas accepts.
	maxNameLength = 64

	projectNamePrefix = "hackathon"
	usernamePrefix    = "team"

	// ClusterName is the name of the one cluster every hackathon project holds.
	ClusterName = "hackathon-cluster"
)

var (
	// replaced with a hyphen before transliteration
	symbols              = regexp.MustCompile(`[^\p{L}\p{M}\p{N}-]+`)
	disallowedCharacters = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphens      = regexp.MustCompile(`-{2,}`)
)

// SanitizeName turns raw into a name which is valid for Atlas projects and clusters. It replaces
// anything but letters, digits and hyphens with a hyphen, lower cases and transliterates letters,
// collapses repeated hyphens, trims leading and trailing hyphens and truncates the result to 64
// characters.
func SanitizeName(raw string) string {
	name := slug.Make(symbols.ReplaceAllString(raw, "-"))
	name = disallowedCharacters.ReplaceAllString(name, "-")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], "-")
	}
	return name
}

// ProjectName returns the Atlas project name of the given event and team. The name only depends
// on its inputs which is what allows provisioning to adopt a project created by an earlier
// attempt.
func ProjectName(eventID, teamID string) string {
	return SanitizeName(projectNamePrefix + "-" + lastSix(eventID) + "-" + lastSix(teamID))
}

// Username returns the database username of the given team.
func Username(teamID string) string {
	return SanitizeName(usernamePrefix + "-" + lastSix(teamID))
}

func lastSix(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
