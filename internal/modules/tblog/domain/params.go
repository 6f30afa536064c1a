package domain

import (
	"strconv"
	"strings"
)

// Params holds the `key: value` pairs of a record. Parts without a colon, such
// as the dashes after REBOOT, are kept in Bare.
type Params struct {
	values map[string]string
	order  []string
	Bare   []string
}

func ParseParams(raw string) Params {
	p := Params{values: map[string]string{}}
	for _, part := range strings.Split(raw, ",") {
		idx := strings.Index(part, ":")
		if idx < 0 {
			if bare := strings.TrimSpace(part); bare != "" {
				p.Bare = append(p.Bare, bare)
			}
			continue
		}
		key := strings.TrimSpace(part[:idx])
		if key == "" {
			continue
		}
		if _, seen := p.values[key]; !seen {
			p.order = append(p.order, key)
		}
		p.values[key] = unquote(strings.TrimSpace(part[idx+1:]))
	}
	return p
}

func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

func (p Params) String(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p Params) Int(key string) (int, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// First returns the value of the first key present.
func (p Params) First(keys ...string) (string, string, bool) {
	for _, key := range keys {
		if v, ok := p.values[key]; ok {
			return key, v, true
		}
	}
	return "", "", false
}

func (p Params) Keys() []string {
	return append([]string(nil), p.order...)
}
