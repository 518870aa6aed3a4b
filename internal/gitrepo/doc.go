// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryManager for fetching refs, resolving revisions,
// describing commits, and walking ancestry, along with repository URL parsing
// consumed by change classification and the feedback endpoint.
package gitrepo
