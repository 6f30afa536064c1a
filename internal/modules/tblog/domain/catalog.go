package domain

import (
	"path"
	"strings"
)

// Deployment is the content catalog loaded onto a device. It is shared
// read-only between sessions, so lookups must never mutate it.
type Deployment struct {
	Name     string
	Packages []Package
}

type Package struct {
	Name      string
	Playlists []Playlist
}

type Playlist struct {
	Title    string
	Messages []Message
}

type Message struct {
	ID       string
	FileName string
	// Placeholder marks a message synthesized from a file name because the
	// catalog lookup failed.
	Placeholder bool
}

func (d *Deployment) FindPackage(name string) (*Package, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Packages {
		if strings.EqualFold(d.Packages[i].Name, name) {
			return &d.Packages[i], true
		}
	}
	return nil, false
}

func (p *Package) FindPlaylist(title string) (*Playlist, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Playlists {
		if strings.EqualFold(p.Playlists[i].Title, title) {
			return &p.Playlists[i], true
		}
	}
	return nil, false
}

func (p *Package) PlaylistAt(index int) (*Playlist, bool) {
	if p == nil || index < 0 || index >= len(p.Playlists) {
		return nil, false
	}
	return &p.Playlists[index], true
}

func (pl *Playlist) MessageAt(index int) (Message, bool) {
	if pl == nil || index < 0 || index >= len(pl.Messages) {
		return Message{}, false
	}
	return pl.Messages[index], true
}

// MessageIDFromFile derives a message id from a content file name by dropping
// the directory and extension.
func MessageIDFromFile(fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
