package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gerritops/changeflow/internal/execshell"
)

const (
	gitFetchSubcommandConstant           = "fetch"
	gitNoTagsFlagConstant                = "--no-tags"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitVerifyFlagConstant                = "--verify"
	gitFetchHeadReferenceConstant        = "FETCH_HEAD"
	gitCommitPeelSuffixConstant          = "^{commit}"
	gitDescribeSubcommandConstant        = "describe"
	gitTagsFlagConstant                  = "--tags"
	gitLogSubcommandConstant             = "log"
	gitFirstParentFlagConstant           = "--first-parent"
	gitLogFormatFlagConstant             = "--format=%H%x1f%B%x1e"
	commitRecordSeparatorConstant        = "\x1e"
	commitFieldSeparatorConstant         = "\x1f"
	executorMissingMessageConstant       = "git executor not configured"
	fetchErrorTemplateConstant           = "unable to fetch %s from %s: %w"
	revisionParseErrorTemplateConstant   = "unable to resolve %s: %w"
	emptyRevisionMessageTemplateConstant = "reference %s resolved to an empty revision"
	describeErrorTemplateConstant        = "unable to describe %s: %w"
	ancestryErrorTemplateConstant        = "unable to walk ancestry from %s: %w"
)

// GitCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitRecord pairs a commit identifier with its full message.
type CommitRecord struct {
	SHA     string
	Message string
}

// AncestryVisit receives one commit per ancestry step and reports whether traversal should continue.
type AncestryVisit func(record CommitRecord) (bool, error)

// RepositoryManager coordinates git invocations against a local repository clone.
type RepositoryManager struct {
	executor GitCommandExecutor
}

var errGitExecutorMissing = errors.New(executorMissingMessageConstant)

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, errGitExecutorMissing
	}
	return &RepositoryManager{executor: executor}, nil
}

// FetchReference fetches the supplied refspec from the remote and returns the fetched commit identifier.
func (manager *RepositoryManager) FetchReference(executionContext context.Context, repositoryPath string, remoteURL string, reference string) (string, error) {
	_, fetchError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitNoTagsFlagConstant, remoteURL, reference},
		WorkingDirectory: repositoryPath,
	})
	if fetchError != nil {
		return "", fmt.Errorf(fetchErrorTemplateConstant, reference, remoteURL, fetchError)
	}

	return manager.ResolveRevision(executionContext, repositoryPath, gitFetchHeadReferenceConstant)
}

// ResolveRevision resolves a local reference to a commit identifier.
func (manager *RepositoryManager) ResolveRevision(executionContext context.Context, repositoryPath string, reference string) (string, error) {
	executionResult, resolveError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, reference + gitCommitPeelSuffixConstant},
		WorkingDirectory: repositoryPath,
	})
	if resolveError != nil {
		return "", fmt.Errorf(revisionParseErrorTemplateConstant, reference, resolveError)
	}

	resolvedRevision := strings.TrimSpace(executionResult.StandardOutput)
	if len(resolvedRevision) == 0 {
		return "", fmt.Errorf(emptyRevisionMessageTemplateConstant, reference)
	}

	return resolvedRevision, nil
}

// DescribeCommit produces a human-readable description of a commit from the nearest tag.
func (manager *RepositoryManager) DescribeCommit(executionContext context.Context, repositoryPath string, commitSHA string) (string, error) {
	executionResult, describeError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDescribeSubcommandConstant, gitTagsFlagConstant, commitSHA},
		WorkingDirectory: repositoryPath,
	})
	if describeError != nil {
		return "", fmt.Errorf(describeErrorTemplateConstant, commitSHA, describeError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// WalkAncestry visits commits reachable from the starting revision in first-parent order.
//
// The starting revision itself is the first visited commit. Traversal stops
// when the visitor reports false, when history is exhausted, or when the
// underlying log invocation fails.
func (manager *RepositoryManager) WalkAncestry(executionContext context.Context, repositoryPath string, startRevision string, visit AncestryVisit) error {
	executionResult, logError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitFirstParentFlagConstant, gitLogFormatFlagConstant, startRevision},
		WorkingDirectory: repositoryPath,
	})
	if logError != nil {
		return fmt.Errorf(ancestryErrorTemplateConstant, startRevision, logError)
	}

	for _, rawRecord := range strings.Split(executionResult.StandardOutput, commitRecordSeparatorConstant) {
		record, recordPresent := parseCommitRecord(rawRecord)
		if !recordPresent {
			continue
		}

		continueTraversal, visitError := visit(record)
		if visitError != nil {
			return visitError
		}
		if !continueTraversal {
			return nil
		}
	}

	return nil
}

func parseCommitRecord(rawRecord string) (CommitRecord, bool) {
	trimmedRecord := strings.TrimSpace(rawRecord)
	if len(trimmedRecord) == 0 {
		return CommitRecord{}, false
	}

	fieldSplitIndex := strings.Index(trimmedRecord, commitFieldSeparatorConstant)
	if fieldSplitIndex < 0 {
		return CommitRecord{SHA: trimmedRecord}, true
	}

	return CommitRecord{
		SHA:     strings.TrimSpace(trimmedRecord[:fieldSplitIndex]),
		Message: strings.TrimSpace(trimmedRecord[fieldSplitIndex+1:]),
	}, true
}
