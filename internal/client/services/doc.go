// Package services holds the pinboard client's application services: the
// session store, the engagement cache and the pin/comment services the CLI
// drives. Backend access goes through client.Client; local state is kept in
// the SQLite metadata table.
package services
