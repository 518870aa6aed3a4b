package origin

const (
	repositoryURLConfigurationKeyConstant           = ".repository_url"
	repositoryPathConfigurationKeyConstant          = ".repository_path"
	branchConfigurationKeyConstant                  = ".branch"
	describeVersionConfigurationKeyConstant         = ".describe_version"
	includeBranchCommitLogsConfigurationKeyConstant = ".include_branch_commit_logs"
	baselineLimitConfigurationKeyConstant           = ".baseline_limit"
	migrationLabelConfigurationKeyConstant          = ".migration_label"

	defaultRepositoryPathConstant = "."
	defaultBaselineLimitConstant  = 10
)

// Configuration captures origin settings shared by the CLI commands.
type Configuration struct {
	RepositoryURL           string `mapstructure:"repository_url"`
	RepositoryPath          string `mapstructure:"repository_path"`
	Branch                  string `mapstructure:"branch"`
	DescribeVersion         bool   `mapstructure:"describe_version"`
	IncludeBranchCommitLogs bool   `mapstructure:"include_branch_commit_logs"`
	BaselineLimit           int    `mapstructure:"baseline_limit"`
	MigrationLabel          string `mapstructure:"migration_label"`
}

// DefaultConfiguration returns the baseline origin configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		RepositoryPath: defaultRepositoryPathConstant,
		BaselineLimit:  defaultBaselineLimitConstant,
		MigrationLabel: MigrationOriginLabel,
	}
}

// DefaultConfigurationValues exposes defaults keyed beneath the supplied configuration root.
func DefaultConfigurationValues(configurationRootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationRootKey + repositoryURLConfigurationKeyConstant:           defaults.RepositoryURL,
		configurationRootKey + repositoryPathConfigurationKeyConstant:          defaults.RepositoryPath,
		configurationRootKey + branchConfigurationKeyConstant:                  defaults.Branch,
		configurationRootKey + describeVersionConfigurationKeyConstant:         defaults.DescribeVersion,
		configurationRootKey + includeBranchCommitLogsConfigurationKeyConstant: defaults.IncludeBranchCommitLogs,
		configurationRootKey + baselineLimitConfigurationKeyConstant:           defaults.BaselineLimit,
		configurationRootKey + migrationLabelConfigurationKeyConstant:          defaults.MigrationLabel,
	}
}
