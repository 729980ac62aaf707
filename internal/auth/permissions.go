// Package auth holds the permission matrix and the request identity that the
// authorization gate binds into the request context. Matching is pure: a
// normalized path plus method either exists in the static table or the
// request is denied.
package auth

import (
	"log"
	"regexp"
	"strings"
)

// AnyRole marks a rule as satisfied by any authenticated identity,
// independent of its roles.
const AnyRole = "*"

// Permissions maps normalized path -> method -> allowed role names. The
// table is immutable after process start; absence of an entry means deny.
var Permissions = map[string]map[string][]string{
	"/api/v1/users": {
		"GET":  {"admin"},
		"POST": {AnyRole},
	},
	"/api/v1/users/login": {
		"POST": {AnyRole},
	},
	"/api/v1/users/{user_id}": {
		"GET":    {AnyRole},
		"PATCH":  {AnyRole},
		"DELETE": {"admin"},
	},
	"/api/v1/roles": {
		"GET":  {AnyRole},
		"POST": {AnyRole},
	},
	"/api/v1/roles/{role_id}": {
		"PATCH":  {"admin"},
		"DELETE": {"admin"},
	},
	"/api/v1/auth/refresh": {
		"POST": {AnyRole},
	},
	"/api/v1/auth/revoke": {
		"POST": {AnyRole},
	},
	"/api/v1/health": {
		"GET": {AnyRole},
	},
	"/api/v1/classes": {
		"GET":  {AnyRole},
		"POST": {AnyRole},
	},
	"/api/v1/book": {
		"POST": {AnyRole},
	},
	"/api/v1/bookings": {
		"GET": {AnyRole},
	},
}

var uuidSegment = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// NormalizePath replaces UUID-shaped path segments with the `{user_id}`
// placeholder. Under the roles namespace the first placeholder becomes
// `{role_id}` instead: the two wildcard kinds match the same shape but are
// distinct table keys, so the namespace decides the substitution.
func NormalizePath(path string) string {
	normalized := uuidSegment.ReplaceAllString(path, "{user_id}")
	if strings.Contains(path, "/roles/") {
		normalized = strings.Replace(normalized, "{user_id}", "{role_id}", 1)
	}
	return normalized
}

// Allowed reports whether a caller holding the given roles may invoke
// method on path. The path is normalized first. Matching is exact and
// fail-closed: a path or method with no entry is denied and logged as a
// configuration gap.
func Allowed(path, method string, roles []string) bool {
	normalized := NormalizePath(path)

	methods, ok := Permissions[normalized]
	if !ok {
		log.Printf("permissions: no rules for path %s", normalized)
		return false
	}
	allowed, ok := methods[method]
	if !ok {
		log.Printf("permissions: no rule for %s %s", method, normalized)
		return false
	}
	for _, r := range allowed {
		if r == AnyRole {
			return true
		}
	}
	for _, have := range roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}
