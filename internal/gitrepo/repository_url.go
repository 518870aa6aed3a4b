package gitrepo

import (
	"fmt"
	"strings"
)

const (
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshProtocolPrefixConstant           = "ssh://"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	gerritAuthenticatedPrefixConstant   = "a/"
	repositoryURLParseErrorTemplate     = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRepositoryURLMessageConstant = "invalid repository url"
	sshUserDelimiterConstant            = "@"
	sshPortDelimiterConstant            = ":"
)

// RepositoryURLScheme enumerates supported repository URL schemes.
type RepositoryURLScheme string

// Supported repository URL schemes.
const (
	RepositoryURLSchemeHTTPS RepositoryURLScheme = RepositoryURLScheme("https")
	RepositoryURLSchemeHTTP  RepositoryURLScheme = RepositoryURLScheme("http")
	RepositoryURLSchemeSSH   RepositoryURLScheme = RepositoryURLScheme("ssh")
)

// RepositoryURL represents a structured Gerrit repository URL.
type RepositoryURL struct {
	Scheme  RepositoryURLScheme
	Host    string
	Project string
}

// RepositoryURLParseError indicates a repository URL string could not be parsed.
type RepositoryURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RepositoryURLParseError) Error() string {
	return fmt.Sprintf(repositoryURLParseErrorTemplate, parseError.Input, parseError.Message)
}

// ParseRepositoryURL converts a textual repository URL into a structured representation.
//
// Gerrit serves repositories beneath the host root, optionally behind the
// authenticated "/a/" prefix, which is stripped from the project name.
func ParseRepositoryURL(repositoryURL string) (RepositoryURL, error) {
	trimmedURL := strings.TrimSpace(repositoryURL)
	if len(trimmedURL) == 0 {
		return RepositoryURL{}, RepositoryURLParseError{Input: repositoryURL, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedURL, httpsProtocolPrefixConstant):
		return parseHostAndProject(repositoryURL, RepositoryURLSchemeHTTPS, strings.TrimPrefix(trimmedURL, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedURL, httpProtocolPrefixConstant):
		return parseHostAndProject(repositoryURL, RepositoryURLSchemeHTTP, strings.TrimPrefix(trimmedURL, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedURL, sshProtocolPrefixConstant):
		return parseSSHHostAndProject(repositoryURL, strings.TrimPrefix(trimmedURL, sshProtocolPrefixConstant))
	default:
		return RepositoryURL{}, RepositoryURLParseError{Input: repositoryURL, Message: invalidRepositoryURLMessageConstant}
	}
}

func parseHostAndProject(originalURL string, scheme RepositoryURLScheme, hostAndPath string) (RepositoryURL, error) {
	pathComponents := strings.SplitN(hostAndPath, pathSeparatorConstant, 2)
	if len(pathComponents) < 2 {
		return RepositoryURL{}, RepositoryURLParseError{Input: originalURL, Message: invalidRepositoryURLMessageConstant}
	}

	host := strings.TrimSpace(pathComponents[0])
	project := normalizeProjectName(pathComponents[1])
	if len(host) == 0 || len(project) == 0 {
		return RepositoryURL{}, RepositoryURLParseError{Input: originalURL, Message: invalidRepositoryURLMessageConstant}
	}

	return RepositoryURL{Scheme: scheme, Host: host, Project: project}, nil
}

func parseSSHHostAndProject(originalURL string, userHostAndPath string) (RepositoryURL, error) {
	hostAndPath := userHostAndPath
	if userSplitIndex := strings.Index(userHostAndPath, sshUserDelimiterConstant); userSplitIndex >= 0 {
		hostAndPath = userHostAndPath[userSplitIndex+1:]
	}

	pathComponents := strings.SplitN(hostAndPath, pathSeparatorConstant, 2)
	if len(pathComponents) < 2 {
		return RepositoryURL{}, RepositoryURLParseError{Input: originalURL, Message: invalidRepositoryURLMessageConstant}
	}

	host := strings.TrimSpace(pathComponents[0])
	if portSplitIndex := strings.Index(host, sshPortDelimiterConstant); portSplitIndex >= 0 {
		host = host[:portSplitIndex]
	}

	project := normalizeProjectName(pathComponents[1])
	if len(host) == 0 || len(project) == 0 {
		return RepositoryURL{}, RepositoryURLParseError{Input: originalURL, Message: invalidRepositoryURLMessageConstant}
	}

	return RepositoryURL{Scheme: RepositoryURLSchemeSSH, Host: host, Project: project}, nil
}

func normalizeProjectName(projectPath string) string {
	trimmedProject := strings.TrimSpace(projectPath)
	trimmedProject = strings.TrimPrefix(trimmedProject, gerritAuthenticatedPrefixConstant)
	trimmedProject = strings.TrimSuffix(trimmedProject, gitSuffixConstant)
	return strings.Trim(trimmedProject, pathSeparatorConstant)
}
