package git

import (
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"strings"
)

// Link is a page link derived from a repository.
type Link struct {
	URL     string
	Title   string
	Content string
}

// IsGitRepository checks if the current directory is inside a git repository
func IsGitRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	err := cmd.Run()
	return err == nil
}

// GetCurrentBranch returns the name of the checked out branch
func GetCurrentBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetRemoteURL returns the URL of the specified remote (default: origin)
func GetRemoteURL(remote string) (string, error) {
	if remote == "" {
		remote = "origin"
	}
	cmd := exec.Command("git", "remote", "get-url", remote)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get remote URL for '%s': %w", remote, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetLastCommitMessage returns the subject of HEAD
func GetLastCommitMessage() (string, error) {
	cmd := exec.Command("git", "log", "-1", "--format=%s")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get last commit message: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

var (
	azureSSHPattern = regexp.MustCompile(`^git@ssh\.dev\.azure\.com:v3/([^/]+)/([^/]+)/([^/]+)$`)
	scpPattern      = regexp.MustCompile(`^(?:[^@/]+@)?([^:/]+):(.+)$`)
)

// WebURL turns a clone URL into the repository's https page.
//
//	git@github.com:owner/repo.git                -> https://github.com/owner/repo
//	ssh://git@gitlab.com:2222/group/repo.git     -> https://gitlab.com/group/repo
//	git@ssh.dev.azure.com:v3/org/project/repo    -> https://dev.azure.com/org/project/_git/repo
//	https://user@dev.azure.com/org/project/_git/repo -> https://dev.azure.com/org/project/_git/repo
func WebURL(remote string) (string, error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", fmt.Errorf("empty URL")
	}

	if m := azureSSHPattern.FindStringSubmatch(remote); m != nil {
		return fmt.Sprintf("https://dev.azure.com/%s/%s/_git/%s", m[1], m[2], strings.TrimSuffix(m[3], ".git")), nil
	}

	var host, repoPath string
	switch {
	case strings.HasPrefix(remote, "https://"), strings.HasPrefix(remote, "http://"), strings.HasPrefix(remote, "ssh://"), strings.HasPrefix(remote, "git://"):
		rest := remote[strings.Index(remote, "://")+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return "", fmt.Errorf("unable to parse remote URL: %s", remote)
		}
		host, repoPath = rest[:slash], rest[slash+1:]
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		if colon := strings.Index(host, ":"); colon >= 0 {
			host = host[:colon]
		}
	default:
		m := scpPattern.FindStringSubmatch(remote)
		if m == nil {
			return "", fmt.Errorf("unable to parse remote URL: %s", remote)
		}
		host, repoPath = m[1], m[2]
	}

	repoPath = strings.Trim(strings.TrimSuffix(repoPath, ".git"), "/")
	if host == "" || repoPath == "" {
		return "", fmt.Errorf("unable to parse remote URL: %s", remote)
	}
	return "https://" + host + "/" + repoPath, nil
}

// RepositoryName is the last path element of a web URL.
func RepositoryName(webURL string) string {
	return path.Base(strings.TrimSuffix(webURL, "/"))
}

// RepositoryLink builds a link to the repository behind remote. The title
// is the repository name and the branch when it is known.
func RepositoryLink(remote string) (Link, error) {
	if !IsGitRepository() {
		return Link{}, fmt.Errorf("not inside a git repository")
	}
	remoteURL, err := GetRemoteURL(remote)
	if err != nil {
		return Link{}, err
	}
	webURL, err := WebURL(remoteURL)
	if err != nil {
		return Link{}, err
	}

	name := RepositoryName(webURL)
	title := name
	if branch, err := GetCurrentBranch(); err == nil && branch != "HEAD" {
		title = fmt.Sprintf("%s (%s)", name, branch)
	}
	return Link{URL: webURL, Title: title, Content: name}, nil
}
