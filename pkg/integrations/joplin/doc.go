// Package joplin is a client for the Joplin Data API, the local REST
// service exposed by the Joplin desktop app's Web Clipper.
//
// Time slips live in notes tagged "time-slip" whose body is the CSV
// written by the time-tracking plugin. [Client.SearchTag] returns every
// such note, following has_more pagination:
//
//	c := joplin.NewClient(joplin.DefaultURL, token, cache, cache.TTLHTTP)
//	notes, err := c.SearchTag(ctx, joplin.DefaultTag, false)
//
// The API token is sent as the token query parameter on every request.
package joplin
