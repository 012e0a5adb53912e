package ap

import (
	"strings"

	"github.com/go-ap/activitypub"
)

// LocalActor returns the ActivityPub actor of a local user under baseURL.
func LocalActor(baseURL, nickname string) *activitypub.Person {
	baseURL = strings.TrimRight(baseURL, "/")
	id := activitypub.IRI(baseURL + "/profile/" + nickname)

	actor := activitypub.PersonNew(id)
	actor.URL = id
	actor.Inbox = activitypub.IRI(baseURL + "/inbox/" + nickname)
	actor.Outbox = activitypub.IRI(baseURL + "/outbox/" + nickname)
	actor.Followers = activitypub.IRI(baseURL + "/followers/" + nickname)
	actor.Following = activitypub.IRI(baseURL + "/following/" + nickname)
	return actor
}

// Addr is the webfinger address of a local user.
func Addr(nickname, host string) string {
	return nickname + "@" + host
}
