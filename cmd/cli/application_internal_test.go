package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n" +
		"  log_level: debug\n" +
		"  log_format: console\n" +
		"origin:\n" +
		"  repository_url: https://review.example.com/mirror\n" +
		"  branch: main\n" +
		"  baseline_limit: 5\n"
)

func writeTestConfiguration(testInstance *testing.T) string {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testConfigurationContentConstant), 0o600))
	return configurationFilePath
}

func TestInitializeConfigurationLoadsFileAndDefaults(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfiguration(testInstance)

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "https://review.example.com/mirror", application.configuration.Origin.RepositoryURL)
	require.Equal(testInstance, "main", application.configuration.Origin.Branch)
	require.Equal(testInstance, 5, application.configuration.Origin.BaselineLimit)

	require.Equal(testInstance, ".", application.configuration.Origin.RepositoryPath)
	require.Equal(testInstance, "ChangeFlow-RevId", application.configuration.Origin.MigrationLabel)

	configurationFilePath, configurationFilePathPresent := application.commandContextAccessor.ConfigurationFilePath(application.rootCommand.Context())
	require.True(testInstance, configurationFilePathPresent)
	require.Equal(testInstance, application.configurationFilePath, configurationFilePath)
}

func TestInitializeConfigurationHonorsFlagOverrides(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfiguration(testInstance)

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "warn"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))
	application.logLevelFlagValue = "warn"
	application.logFormatFlagValue = "structured"

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
}

func TestPersistentFlagChangedDetectsRootFlags(testInstance *testing.T) {
	application := NewApplication()

	require.False(testInstance, application.persistentFlagChanged(application.rootCommand, logLevelFlagNameConstant))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.True(testInstance, application.persistentFlagChanged(application.rootCommand, logLevelFlagNameConstant))
}

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := make([]string, 0, len(application.rootCommand.Commands()))
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames = append(registeredCommandNames, registeredCommand.Name())
	}

	require.Contains(testInstance, registeredCommandNames, "resolve")
	require.Contains(testInstance, registeredCommandNames, "baselines")
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfiguration(testInstance)

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))
	application.logLevelFlagValue = "verbose"

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.Error(testInstance, initializationError)
	require.Contains(testInstance, initializationError.Error(), "unsupported log level")
}
