package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeApplicationConfiguration struct {
	Common readmeCommonConfiguration `yaml:"common"`
	Origin readmeOriginConfiguration `yaml:"origin"`
}

type readmeCommonConfiguration struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type readmeOriginConfiguration struct {
	RepositoryURL           string `yaml:"repository_url"`
	RepositoryPath          string `yaml:"repository_path"`
	Branch                  string `yaml:"branch"`
	DescribeVersion         bool   `yaml:"describe_version"`
	IncludeBranchCommitLogs bool   `yaml:"include_branch_commit_logs"`
	BaselineLimit           int    `yaml:"baseline_limit"`
	MigrationLabel          string `yaml:"migration_label"`
}

func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var parsedConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &parsedConfiguration))

	require.Equal(testInstance, "info", parsedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", parsedConfiguration.Common.LogFormat)
	require.Equal(testInstance, "https://review.example.com/mirror", parsedConfiguration.Origin.RepositoryURL)
	require.Equal(testInstance, "main", parsedConfiguration.Origin.Branch)
	require.True(testInstance, parsedConfiguration.Origin.DescribeVersion)
	require.Equal(testInstance, 10, parsedConfiguration.Origin.BaselineLimit)
	require.Equal(testInstance, "ChangeFlow-RevId", parsedConfiguration.Origin.MigrationLabel)
}
