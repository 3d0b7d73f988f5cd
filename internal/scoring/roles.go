package scoring

import (
	"strings"

	"github.com/alimgiray/leaderboard/internal/models"
)

// RoleClassifier derives a contributor role from static membership sets.
// Lookups are case-insensitive.
type RoleClassifier struct {
	maintainers map[string]struct{}
	alumni      map[string]struct{}
}

// NewRoleClassifier builds the lookup sets from a team definition
func NewRoleClassifier(team models.Team) *RoleClassifier {
	return &RoleClassifier{
		maintainers: toSet(team.Maintainers),
		alumni:      toSet(team.Alumni),
	}
}

// Classify returns Maintainer, Alumni or Contributor for the username.
// Maintainer membership wins when a username appears in both sets.
func (r *RoleClassifier) Classify(username string) models.Role {
	key := strings.ToLower(username)
	if _, ok := r.maintainers[key]; ok {
		return models.RoleMaintainer
	}
	if _, ok := r.alumni[key]; ok {
		return models.RoleAlumni
	}
	return models.RoleContributor
}

func toSet(usernames []string) map[string]struct{} {
	set := make(map[string]struct{}, len(usernames))
	for _, username := range usernames {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		set[strings.ToLower(username)] = struct{}{}
	}
	return set
}
