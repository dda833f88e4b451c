package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ectokit/ectokit/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant     = "success"
	testExecutionFailureCaseNameConstant     = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant = "runner_error"
	testCommandArgumentConstant              = "version"
	testWorkingDirectoryConstant             = "."
	testStandardErrorOutputConstant          = "failure"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectedError error
	}{
		{name: "logger_validation", logger: nil, runner: &recordingCommandRunner{}, expectedError: execshell.ErrLoggerNotConfigured},
		{name: "runner_validation", logger: zap.NewNop(), runner: nil, expectedError: execshell.ErrCommandRunnerNotConfigured},
		{name: "successful_initialization", logger: zap.NewNop(), runner: &recordingCommandRunner{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectedError == nil {
				require.NoError(subTest, creationError)
				require.NotNil(subTest, executor)
				return
			}
			require.ErrorIs(subTest, creationError, testCase.expectedError)
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectFailure    bool
		expectExecution  bool
		expectedLogCount int
	}{
		{
			name:             testExecutionSuccessCaseNameConstant,
			runnerResult:     execshell.ExecutionResult{StandardOutput: "ok", ExitCode: 0},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionFailureCaseNameConstant,
			runnerResult:     execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
			expectFailure:    true,
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectExecution:  true,
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner)
			require.NoError(subTest, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGo(context.Background(), commandDetails)

			switch {
			case testCase.expectFailure:
				var commandFailed execshell.CommandFailedError
				require.ErrorAs(subTest, executionError, &commandFailed)
				require.Equal(subTest, testCase.runnerResult.ExitCode, executionResult.ExitCode)
			case testCase.expectExecution:
				var executionFailure execshell.CommandExecutionError
				require.ErrorAs(subTest, executionError, &executionFailure)
				require.ErrorIs(subTest, executionError, testCase.runnerError)
			default:
				require.NoError(subTest, executionError)
				require.Equal(subTest, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(subTest, recordingRunner.recordedCommands, 1)
			require.Equal(subTest, execshell.ToolGo, recordingRunner.recordedCommands[0].Name)
			require.Len(subTest, observedLogs.All(), testCase.expectedLogCount)
		})
	}
}
