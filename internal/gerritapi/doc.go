// Package gerritapi implements a minimal Gerrit REST client.
//
// It exposes Client for fetching change metadata and posting reviews, typed
// errors for operation and decoding failures, and the wire structures Gerrit
// returns for changes, revisions, and accounts.
package gerritapi
