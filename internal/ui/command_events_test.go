package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gerritops/changeflow/internal/execshell"
	"github.com/gerritops/changeflow/internal/ui"
)

const (
	testStartedCaseNameConstant          = "started"
	testCompletedCaseNameConstant        = "completed"
	testFailureCaseNameConstant          = "failure_exit_code"
	testExecutionFailureCaseNameConstant = "execution_failure"
	testFetchArgumentConstant            = "fetch"
	testWorkingDirectoryConstant         = "/tmp/mirror"
)

func buildTestCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{testFetchArgumentConstant},
			WorkingDirectory: testWorkingDirectoryConstant,
		},
	}
}

func TestConsoleCommandEventLoggerMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		emitEvent       func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedMessage string
	}{
		{
			name: testStartedCaseNameConstant,
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(buildTestCommand())
			},
			expectedMessage: "Running git fetch (in /tmp/mirror)",
		},
		{
			name: testCompletedCaseNameConstant,
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(buildTestCommand(), execshell.ExecutionResult{ExitCode: 0})
			},
			expectedMessage: "Completed git fetch (in /tmp/mirror)",
		},
		{
			name: testFailureCaseNameConstant,
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(buildTestCommand(), execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not found"})
			},
			expectedMessage: "git fetch (in /tmp/mirror) failed with exit code 128: fatal: not found",
		},
		{
			name: testExecutionFailureCaseNameConstant,
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(buildTestCommand(), errors.New("binary missing"))
			},
			expectedMessage: "git fetch (in /tmp/mirror) failed: binary missing",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.emitEvent(eventLogger)

			require.Equal(testInstance, 1, observedLogs.Len())
			require.Equal(testInstance, testCase.expectedMessage, observedLogs.All()[0].Message)
		})
	}
}
