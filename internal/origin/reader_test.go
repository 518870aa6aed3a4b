package origin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gerritops/changeflow/internal/origin"
)

type stubBaselineStrategy struct {
	baselines      []origin.Revision
	findError      error
	requestedStart origin.Revision
	requestedLimit int
}

func (strategy *stubBaselineStrategy) FindBaselinesWithoutLabel(executionContext context.Context, startRevision origin.Revision, limit int) ([]origin.Revision, error) {
	strategy.requestedStart = startRevision
	strategy.requestedLimit = limit
	if strategy.findError != nil {
		return nil, strategy.findError
	}
	return strategy.baselines, nil
}

type stubEndpointStrategy struct {
	endpoint      *origin.FeedbackEndpoint
	endpointError error
}

func (strategy *stubEndpointStrategy) FeedbackEndpoint() (*origin.FeedbackEndpoint, error) {
	if strategy.endpointError != nil {
		return nil, strategy.endpointError
	}
	return strategy.endpoint, nil
}

func TestNewReaderValidation(testInstance *testing.T) {
	testCases := []struct {
		name         string
		dependencies origin.ReaderDependencies
		expectedErr  error
	}{
		{
			name:         "missing_baseline_strategy",
			dependencies: origin.ReaderDependencies{EndpointStrategy: &stubEndpointStrategy{}},
			expectedErr:  origin.ErrBaselineStrategyMissing,
		},
		{
			name:         "missing_endpoint_strategy",
			dependencies: origin.ReaderDependencies{BaselineStrategy: &stubBaselineStrategy{}},
			expectedErr:  origin.ErrEndpointStrategyMissing,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			reader, creationError := origin.NewReader(testCase.dependencies, origin.ReaderOptions{})
			require.Nil(testInstance, reader)
			require.ErrorIs(testInstance, creationError, testCase.expectedErr)
		})
	}
}

func TestReaderDelegatesBaselineDiscovery(testInstance *testing.T) {
	expectedBaselines := []origin.Revision{
		origin.NewRevision("sha-1", "sha-1", origin.NewLabelSet()),
		origin.NewRevision("sha-3", "sha-3", origin.NewLabelSet()),
	}
	baselineStrategy := &stubBaselineStrategy{baselines: expectedBaselines}
	reader, creationError := origin.NewReader(origin.ReaderDependencies{
		Logger:           zap.NewNop(),
		BaselineStrategy: baselineStrategy,
		EndpointStrategy: &stubEndpointStrategy{},
	}, origin.ReaderOptions{IncludeBranchCommitLogs: true})
	require.NoError(testInstance, creationError)

	startRevision := origin.NewRevision("sha-start", "sha-start", origin.NewLabelSet())
	baselines, findError := reader.FindBaselinesWithoutLabel(context.Background(), startRevision, 2)
	require.NoError(testInstance, findError)
	require.Equal(testInstance, expectedBaselines, baselines)
	require.Equal(testInstance, startRevision, baselineStrategy.requestedStart)
	require.Equal(testInstance, 2, baselineStrategy.requestedLimit)
	require.True(testInstance, reader.IncludesBranchCommitLogs())
}

func TestReaderSurfacesEndpointFactoryFailures(testInstance *testing.T) {
	endpointStrategy := &stubEndpointStrategy{
		endpointError: origin.EndpointRejectedError{RepositoryURL: testRepositoryURLConstant},
	}
	reader, creationError := origin.NewReader(origin.ReaderDependencies{
		BaselineStrategy: &stubBaselineStrategy{},
		EndpointStrategy: endpointStrategy,
	}, origin.ReaderOptions{})
	require.NoError(testInstance, creationError)

	endpoint, endpointError := reader.FeedbackEndpoint()
	require.Nil(testInstance, endpoint)

	var rejectedError origin.EndpointRejectedError
	require.ErrorAs(testInstance, endpointError, &rejectedError)
}
