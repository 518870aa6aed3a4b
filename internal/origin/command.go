package origin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gerritops/changeflow/internal/execshell"
	"github.com/gerritops/changeflow/internal/gerritapi"
	"github.com/gerritops/changeflow/internal/gitrepo"
	"github.com/gerritops/changeflow/internal/ui"
)

const (
	resolveCommandUseConstant              = "resolve <reference>"
	resolveCommandShortDescriptionConstant = "Resolve a Gerrit change reference or git ref into a revision"
	resolveCommandLongDescriptionConstant  = "resolve classifies the supplied reference, consults Gerrit for change references, fetches the matching ref, and prints the resolved revision with its labels."
	baselinesCommandUseConstant            = "baselines <revision>"
	baselinesCommandShortDescription       = "List ancestor revisions lacking the migration marker"
	baselinesCommandLongDescription        = "baselines walks first-parent history from the supplied revision and prints commits whose messages lack the migration marker trailer."
	resolveArgumentsMessageConstant        = "resolve requires exactly one reference argument"
	baselinesArgumentsMessageConstant      = "baselines requires exactly one revision argument"
	repositoryURLRequiredMessageConstant   = "origin repository URL is not configured"
	resolveErrorTemplateConstant           = "resolve failed: %w"
	baselinesErrorTemplateConstant         = "baseline discovery failed: %w"
	changeSkippedMessageTemplateConstant   = "Skipped: %s\n"
	labelOutputTemplateConstant            = "%s=%s\n"
	describeOutputTemplateConstant         = "%s (%s)\n"
	revisionOutputTemplateConstant         = "%s\n"
	flagBranchNameConstant                 = "branch"
	flagBranchDescriptionConstant          = "Only resolve changes targeting this branch"
	flagDescribeNameConstant               = "describe"
	flagDescribeDescriptionConstant        = "Decorate the resolved revision with git describe output"
	flagRepositoryURLNameConstant          = "repository-url"
	flagRepositoryURLDescriptionConstant   = "Gerrit repository URL the references resolve against"
	flagRepositoryPathNameConstant         = "repository-path"
	flagRepositoryPathDescription          = "Path to the local repository clone"
	flagLimitNameConstant                  = "limit"
	flagLimitDescriptionConstant           = "Maximum number of baselines to collect"
	flagLabelNameConstant                  = "label"
	flagLabelDescriptionConstant           = "Commit-message trailer that marks migrated commits"
	gerritHTTPTimeoutConstant              = 30 * time.Second
)

var (
	errResolveArguments   = errors.New(resolveArgumentsMessageConstant)
	errBaselinesArguments = errors.New(baselinesArgumentsMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective origin configuration.
type ConfigurationProvider func() Configuration

// ResolveCommandBuilder assembles the Cobra command for reference resolution.
type ResolveCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Repository            RepositoryOperations
	Gerrit                ChangeFetcher
}

// Build constructs the resolve command.
func (builder *ResolveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   resolveCommandUseConstant,
		Short: resolveCommandShortDescriptionConstant,
		Long:  resolveCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().Bool(flagDescribeNameConstant, false, flagDescribeDescriptionConstant)
	command.Flags().String(flagRepositoryURLNameConstant, "", flagRepositoryURLDescriptionConstant)
	command.Flags().String(flagRepositoryPathNameConstant, "", flagRepositoryPathDescription)

	return command, nil
}

func (builder *ResolveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errResolveArguments
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := builder.effectiveConfiguration(command)
	if len(strings.TrimSpace(configuration.RepositoryURL)) == 0 {
		return errors.New(repositoryURLRequiredMessageConstant)
	}

	repository, gerritClient, collaboratorError := builder.resolveCollaborators(logger, configuration)
	if collaboratorError != nil {
		return collaboratorError
	}

	resolver, resolverError := NewResolver(ResolverDependencies{
		Logger:     logger,
		Repository: repository,
		Gerrit:     gerritClient,
	}, ResolverOptions{
		RepositoryPath:  configuration.RepositoryPath,
		RepositoryURL:   configuration.RepositoryURL,
		TargetBranch:    configuration.Branch,
		DescribeVersion: configuration.DescribeVersion,
	})
	if resolverError != nil {
		return resolverError
	}

	revision, resolutionError := resolver.Resolve(command.Context(), arguments[0])
	if resolutionError != nil {
		if IsEmptyChange(resolutionError) {
			fmt.Fprintf(command.OutOrStdout(), changeSkippedMessageTemplateConstant, resolutionError)
			return nil
		}
		return fmt.Errorf(resolveErrorTemplateConstant, resolutionError)
	}

	if describeValue, describePresent := revision.DescribeVersionValue(); describePresent {
		fmt.Fprintf(command.OutOrStdout(), describeOutputTemplateConstant, revision.SHA, describeValue)
	} else {
		fmt.Fprintf(command.OutOrStdout(), revisionOutputTemplateConstant, revision.SHA)
	}

	for _, labelEntry := range revision.Labels.Entries() {
		fmt.Fprintf(command.OutOrStdout(), labelOutputTemplateConstant, labelEntry.Key, labelEntry.Value)
	}

	return nil
}

func (builder *ResolveCommandBuilder) effectiveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagBranchNameConstant) {
		configuration.Branch, _ = command.Flags().GetString(flagBranchNameConstant)
	}
	if command.Flags().Changed(flagDescribeNameConstant) {
		configuration.DescribeVersion, _ = command.Flags().GetBool(flagDescribeNameConstant)
	}
	if command.Flags().Changed(flagRepositoryURLNameConstant) {
		configuration.RepositoryURL, _ = command.Flags().GetString(flagRepositoryURLNameConstant)
	}
	if command.Flags().Changed(flagRepositoryPathNameConstant) {
		configuration.RepositoryPath, _ = command.Flags().GetString(flagRepositoryPathNameConstant)
	}
	if len(strings.TrimSpace(configuration.RepositoryPath)) == 0 {
		configuration.RepositoryPath = defaultRepositoryPathConstant
	}

	return configuration
}

func (builder *ResolveCommandBuilder) resolveCollaborators(logger *zap.Logger, configuration Configuration) (RepositoryOperations, ChangeFetcher, error) {
	repository := builder.Repository
	if repository == nil {
		builtRepository, repositoryError := buildRepositoryManager(logger)
		if repositoryError != nil {
			return nil, nil, repositoryError
		}
		repository = builtRepository
	}

	gerritClient := builder.Gerrit
	if gerritClient == nil {
		builtClient, clientError := buildGerritClient(logger, configuration.RepositoryURL)
		if clientError != nil {
			return nil, nil, clientError
		}
		gerritClient = builtClient
	}

	return repository, gerritClient, nil
}

// BaselinesCommandBuilder assembles the Cobra command for baseline discovery.
type BaselinesCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Repository            RepositoryOperations
	Gerrit                ReviewPoster
}

// Build constructs the baselines command.
func (builder *BaselinesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   baselinesCommandUseConstant,
		Short: baselinesCommandShortDescription,
		Long:  baselinesCommandLongDescription,
		RunE:  builder.run,
	}

	command.Flags().Int(flagLimitNameConstant, defaultBaselineLimitConstant, flagLimitDescriptionConstant)
	command.Flags().String(flagLabelNameConstant, MigrationOriginLabel, flagLabelDescriptionConstant)
	command.Flags().String(flagRepositoryPathNameConstant, "", flagRepositoryPathDescription)

	return command, nil
}

func (builder *BaselinesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errBaselinesArguments
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagLimitNameConstant) {
		configuration.BaselineLimit, _ = command.Flags().GetInt(flagLimitNameConstant)
	}
	if command.Flags().Changed(flagLabelNameConstant) {
		configuration.MigrationLabel, _ = command.Flags().GetString(flagLabelNameConstant)
	}
	if command.Flags().Changed(flagRepositoryPathNameConstant) {
		configuration.RepositoryPath, _ = command.Flags().GetString(flagRepositoryPathNameConstant)
	}
	if len(strings.TrimSpace(configuration.RepositoryPath)) == 0 {
		configuration.RepositoryPath = defaultRepositoryPathConstant
	}

	repository := builder.Repository
	if repository == nil {
		builtRepository, repositoryError := buildRepositoryManager(logger)
		if repositoryError != nil {
			return repositoryError
		}
		repository = builtRepository
	}

	reader, readerError := builder.composeReader(logger, repository, configuration)
	if readerError != nil {
		return readerError
	}

	startSHA, resolveError := repository.ResolveRevision(command.Context(), configuration.RepositoryPath, arguments[0])
	if resolveError != nil {
		return fmt.Errorf(baselinesErrorTemplateConstant, resolveError)
	}

	startRevision := NewRevision(startSHA, arguments[0], NewLabelSet())
	baselines, findError := reader.FindBaselinesWithoutLabel(command.Context(), startRevision, configuration.BaselineLimit)
	if findError != nil {
		return fmt.Errorf(baselinesErrorTemplateConstant, findError)
	}

	for _, baseline := range baselines {
		fmt.Fprintf(command.OutOrStdout(), revisionOutputTemplateConstant, baseline.SHA)
	}

	return nil
}

func (builder *BaselinesCommandBuilder) composeReader(logger *zap.Logger, repository RepositoryOperations, configuration Configuration) (*Reader, error) {
	baselineFinder, finderError := NewBaselineFinder(repository, configuration.RepositoryPath, configuration.MigrationLabel)
	if finderError != nil {
		return nil, finderError
	}

	reviewPoster := builder.Gerrit
	if reviewPoster == nil && len(strings.TrimSpace(configuration.RepositoryURL)) > 0 {
		gerritClient, clientError := buildGerritClient(logger, configuration.RepositoryURL)
		if clientError != nil {
			return nil, clientError
		}
		reviewPoster = gerritClient
	}
	if reviewPoster == nil {
		return nil, errors.New(repositoryURLRequiredMessageConstant)
	}

	endpointFactory, factoryError := NewFeedbackEndpointFactory(reviewPoster, configuration.RepositoryURL, nil, logger)
	if factoryError != nil {
		return nil, factoryError
	}

	return NewReader(ReaderDependencies{
		Logger:           logger,
		BaselineStrategy: baselineFinder,
		EndpointStrategy: endpointFactory,
	}, ReaderOptions{
		IncludeBranchCommitLogs: configuration.IncludeBranchCommitLogs,
	})
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}

	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func buildRepositoryManager(logger *zap.Logger) (*gitrepo.RepositoryManager, error) {
	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}
	shellExecutor.RegisterCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))

	return gitrepo.NewRepositoryManager(shellExecutor)
}

func buildGerritClient(logger *zap.Logger, repositoryURL string) (*gerritapi.Client, error) {
	parsedRepositoryURL, parseError := gitrepo.ParseRepositoryURL(repositoryURL)
	if parseError != nil {
		return nil, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: parseError.Error()}
	}

	httpClient := &http.Client{Timeout: gerritHTTPTimeoutConstant}
	return gerritapi.NewClient(GerritBaseURL(parsedRepositoryURL), httpClient, logger)
}
