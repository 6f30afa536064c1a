package domain

import "fmt"

// resolveMessage maps a PlayMsg record to a catalog message inside the
// current package. The playlist is addressed by title (Subj) or by position
// (iS); the message by position (iM).
func resolveMessage(pkg *Package, params Params) (Message, string, error) {
	if pkg == nil {
		return Message{}, "", fmt.Errorf("no current package")
	}
	var (
		playlist *Playlist
		found    bool
	)
	if subject, ok := params.String("Subj"); ok && subject != "" {
		playlist, found = pkg.FindPlaylist(subject)
		if !found {
			return Message{}, "", fmt.Errorf("playlist %q not in package %s", subject, pkg.Name)
		}
	} else if index, ok := params.Int("iS"); ok {
		playlist, found = pkg.PlaylistAt(index)
		if !found {
			return Message{}, "", fmt.Errorf("playlist #%d not in package %s", index, pkg.Name)
		}
	} else {
		return Message{}, "", fmt.Errorf("no playlist in record")
	}
	index, ok := params.Int("iM")
	if !ok {
		return Message{}, playlist.Title, fmt.Errorf("no message index in record")
	}
	msg, ok := playlist.MessageAt(index)
	if !ok {
		return Message{}, playlist.Title, fmt.Errorf("message #%d not in playlist %q", index, playlist.Title)
	}
	return msg, playlist.Title, nil
}

// placeholderMessage stands in for a message the catalog does not know, so
// its play statistics are not lost.
func placeholderMessage(fileName string) (Message, bool) {
	id := MessageIDFromFile(fileName)
	if id == "" {
		return Message{}, false
	}
	return Message{ID: id, FileName: fileName, Placeholder: true}, true
}
