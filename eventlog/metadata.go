package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/titpetric/verdict/model"
)

// gitTimeout bounds each git invocation.
const gitTimeout = 2 * time.Second

// ciEnv lists, per CI provider, the variables holding commit, branch and
// repository. The first provider with a commit set wins.
var ciEnv = []struct {
	commit, branch, repo string
}{
	{"GITHUB_SHA", "GITHUB_REF_NAME", "GITHUB_REPOSITORY"},
	{"CI_COMMIT_SHA", "CI_COMMIT_REF_NAME", "CI_PROJECT_PATH"},
	{"BUILDKITE_COMMIT", "BUILDKITE_BRANCH", "BUILDKITE_REPO"},
}

// CaptureGitInfo returns the commit, branch and remote of the working
// directory. CI variables take precedence over git, since CI checkouts
// are often detached. Returns nil when nothing is known.
func CaptureGitInfo() *GitInfo {
	info := fromCIEnv()
	if info == nil {
		info = &GitInfo{}
	}

	if info.Commit == "" {
		info.Commit = git("rev-parse", "HEAD")
	}
	if info.Branch == "" {
		info.Branch = git("rev-parse", "--abbrev-ref", "HEAD")
	}
	if info.RemoteURL == "" {
		info.RemoteURL = git("remote", "get-url", "origin")
	}
	if info.Repository == "" && info.RemoteURL != "" {
		info.Repository = repositoryFromURL(info.RemoteURL)
	}

	if *info == (GitInfo{}) {
		return nil
	}
	return info
}

func fromCIEnv() *GitInfo {
	for _, vars := range ciEnv {
		commit := os.Getenv(vars.commit)
		if commit == "" {
			continue
		}
		return &GitInfo{
			Commit:     commit,
			Branch:     os.Getenv(vars.branch),
			Repository: repositoryFromURL(os.Getenv(vars.repo)),
		}
	}
	return nil
}

// git runs a git subcommand and returns its trimmed output, or "" on error.
func git(args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// FillMeta copies the commit and branch of info into empty fields of meta.
// Configured values always win.
func FillMeta(meta model.MetaInfo, info *GitInfo) model.MetaInfo {
	if info == nil {
		return meta
	}
	if meta.CommitHash == "" {
		meta.CommitHash = info.Commit
	}
	if meta.BranchName == "" && info.Branch != "HEAD" {
		meta.BranchName = info.Branch
	}
	return meta
}

// repositoryFromURL reduces a remote URL to host/owner/repo.
// Values without a scheme or user prefix pass through.
func repositoryFromURL(remote string) string {
	if rest, ok := strings.CutPrefix(remote, "git@"); ok {
		remote = strings.Replace(rest, ":", "/", 1)
	}
	for _, scheme := range []string{"https://", "http://", "ssh://git@", "ssh://"} {
		if rest, ok := strings.CutPrefix(remote, scheme); ok {
			remote = rest
			break
		}
	}
	return strings.TrimSuffix(remote, ".git")
}

// CaptureModulePath returns the module path of the nearest go.mod at or
// above the working directory.
func CaptureModulePath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
			return modulePath(data)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func modulePath(gomod []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(gomod))
	for scanner.Scan() {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), `"`)
		}
	}
	return ""
}
