package gitrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gerritops/changeflow/internal/execshell"
	"github.com/gerritops/changeflow/internal/gitrepo"
)

const (
	testRepositoryPathConstant  = "/tmp/mirror"
	testRemoteURLConstant       = "https://review.example.com/mirror"
	testChangeRefConstant       = "refs/changes/47/3947/2"
	testFetchedRevisionConstant = "0123456789abcdef0123456789abcdef01234567"
	testDescribeOutputConstant  = "v1.4.0-12-g0123456"
	testRecordSeparatorConstant = "\x1e"
	testFieldSeparatorConstant  = "\x1f"
)

type scriptedGitExecutor struct {
	resultsBySubcommand map[string]execshell.ExecutionResult
	errorsBySubcommand  map[string]error
	recordedDetails     []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	subcommand := details.Arguments[0]
	if executionError, errorPresent := executor.errorsBySubcommand[subcommand]; errorPresent {
		return execshell.ExecutionResult{}, executionError
	}
	return executor.resultsBySubcommand[subcommand], nil
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Error(testInstance, creationError)
	require.Nil(testInstance, manager)
}

func TestFetchReferenceResolvesFetchHead(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		resultsBySubcommand: map[string]execshell.ExecutionResult{
			"fetch":     {ExitCode: 0},
			"rev-parse": {StandardOutput: testFetchedRevisionConstant + "\n", ExitCode: 0},
		},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	fetchedRevision, fetchError := manager.FetchReference(context.Background(), testRepositoryPathConstant, testRemoteURLConstant, testChangeRefConstant)
	require.NoError(testInstance, fetchError)
	require.Equal(testInstance, testFetchedRevisionConstant, fetchedRevision)

	require.Len(testInstance, executor.recordedDetails, 2)
	require.Equal(testInstance, []string{"fetch", "--no-tags", testRemoteURLConstant, testChangeRefConstant}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
	require.Contains(testInstance, executor.recordedDetails[1].Arguments, "FETCH_HEAD^{commit}")
}

func TestFetchReferenceSurfacesTransportFailure(testInstance *testing.T) {
	transportFailure := errors.New("remote unreachable")
	executor := &scriptedGitExecutor{
		errorsBySubcommand: map[string]error{"fetch": transportFailure},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, fetchError := manager.FetchReference(context.Background(), testRepositoryPathConstant, testRemoteURLConstant, testChangeRefConstant)
	require.Error(testInstance, fetchError)
	require.ErrorIs(testInstance, fetchError, transportFailure)
}

func TestResolveRevisionRejectsEmptyOutput(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		resultsBySubcommand: map[string]execshell.ExecutionResult{
			"rev-parse": {StandardOutput: "   \n", ExitCode: 0},
		},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, resolveError := manager.ResolveRevision(context.Background(), testRepositoryPathConstant, "main")
	require.Error(testInstance, resolveError)
}

func TestDescribeCommitTrimsOutput(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		resultsBySubcommand: map[string]execshell.ExecutionResult{
			"describe": {StandardOutput: testDescribeOutputConstant + "\n", ExitCode: 0},
		},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	describeOutput, describeError := manager.DescribeCommit(context.Background(), testRepositoryPathConstant, testFetchedRevisionConstant)
	require.NoError(testInstance, describeError)
	require.Equal(testInstance, testDescribeOutputConstant, describeOutput)
}

func buildAncestryLogOutput(records []gitrepo.CommitRecord) string {
	var outputBuilder strings.Builder
	for _, record := range records {
		outputBuilder.WriteString(record.SHA)
		outputBuilder.WriteString(testFieldSeparatorConstant)
		outputBuilder.WriteString(record.Message)
		outputBuilder.WriteString(testRecordSeparatorConstant)
		outputBuilder.WriteString("\n")
	}
	return outputBuilder.String()
}

func TestWalkAncestryVisitsCommitsInOrder(testInstance *testing.T) {
	ancestryRecords := []gitrepo.CommitRecord{
		{SHA: "aaa", Message: "third commit"},
		{SHA: "bbb", Message: "second commit"},
		{SHA: "ccc", Message: "first commit"},
	}

	executor := &scriptedGitExecutor{
		resultsBySubcommand: map[string]execshell.ExecutionResult{
			"log": {StandardOutput: buildAncestryLogOutput(ancestryRecords), ExitCode: 0},
		},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	var visitedRecords []gitrepo.CommitRecord
	walkError := manager.WalkAncestry(context.Background(), testRepositoryPathConstant, "aaa", func(record gitrepo.CommitRecord) (bool, error) {
		visitedRecords = append(visitedRecords, record)
		return true, nil
	})
	require.NoError(testInstance, walkError)
	require.Equal(testInstance, ancestryRecords, visitedRecords)
}

func TestWalkAncestryStopsWhenVisitorDeclines(testInstance *testing.T) {
	ancestryRecords := []gitrepo.CommitRecord{
		{SHA: "aaa", Message: "third commit"},
		{SHA: "bbb", Message: "second commit"},
		{SHA: "ccc", Message: "first commit"},
	}

	executor := &scriptedGitExecutor{
		resultsBySubcommand: map[string]execshell.ExecutionResult{
			"log": {StandardOutput: buildAncestryLogOutput(ancestryRecords), ExitCode: 0},
		},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	visitCount := 0
	walkError := manager.WalkAncestry(context.Background(), testRepositoryPathConstant, "aaa", func(record gitrepo.CommitRecord) (bool, error) {
		visitCount++
		return visitCount < 2, nil
	})
	require.NoError(testInstance, walkError)
	require.Equal(testInstance, 2, visitCount)
}

func TestWalkAncestrySurfacesLogFailure(testInstance *testing.T) {
	logFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "unknown revision"},
	}
	executor := &scriptedGitExecutor{
		errorsBySubcommand: map[string]error{"log": logFailure},
	}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	walkError := manager.WalkAncestry(context.Background(), testRepositoryPathConstant, "missing", func(gitrepo.CommitRecord) (bool, error) {
		return true, nil
	})
	require.Error(testInstance, walkError)
	var commandFailure execshell.CommandFailedError
	require.ErrorAs(testInstance, walkError, &commandFailure)
}
