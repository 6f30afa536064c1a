package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generator creates opaque identifiers from the values that identify a thing.
type Generator interface {
	New(parts ...string) string
}

// Namespace scopes every identifier derived by NameBased.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://literacybridge.org/tbstats"))

// NameBased derives version 5 UUIDs. Equal parts always yield the same id.
type NameBased struct{}

func (NameBased) New(parts ...string) string {
	return uuid.NewSHA1(Namespace, []byte(strings.Join(parts, "\x1f"))).String()
}
