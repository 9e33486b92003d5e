package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Resource names used as cache key prefixes.
const (
	ResourceTasks    = "tasks"
	ResourceStats    = "stats"
	ResourceUsers    = "users"
	ResourceProjects = "projects"
	ResourceMeetings = "meetings"
)

// MutationResources are invalidated together after every successful
// mutation, whichever entity it touched.
var MutationResources = []string{
	ResourceTasks,
	ResourceStats,
	ResourceProjects,
	ResourceMeetings,
}

// Key identifies one cached query: a resource plus its query parameters.
type Key struct {
	Resource string
	Params   map[string]string
}

// NewKey builds a key from alternating param names and values. Params with
// an empty value are dropped so that "no filter" has a single spelling.
func NewKey(resource string, kv ...string) Key {
	k := Key{Resource: resource}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		if k.Params == nil {
			k.Params = make(map[string]string)
		}
		k.Params[kv[i]] = kv[i+1]
	}
	return k
}

// String returns the canonical form "resource?a=1&b=2" with params sorted
// by name. Two keys are equal exactly when their strings are.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Resource
	}

	names := make([]string, 0, len(k.Params))
	for name, value := range k.Params {
		if value != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return k.Resource
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(k.Resource)
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(k.Params[name]))
	}
	return b.String()
}
