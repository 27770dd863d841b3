// Package paths resolves repository-relative locations used by the checkpoint
// tool. All helpers work from any subdirectory of the working tree.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	// CheckpointRoot is the directory holding everything the tool writes.
	CheckpointRoot = ".checkpoint"

	// SettingsFileName is the name of the project settings file inside CheckpointRoot.
	SettingsFileName = "settings.json"

	// LocalSettingsFileName is the name of the uncommitted override file.
	LocalSettingsFileName = "settings.local.json"

	// LogsDir is where structured logs are written.
	LogsDir = CheckpointRoot + "/logs"

	gitignoreFileName = ".gitignore"
)

// IgnoredEntries are the CheckpointRoot-relative patterns kept out of
// checkpoint commits.
var IgnoredEntries = []string{"logs/", LocalSettingsFileName}

// ErrNotRepository is returned when the working directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// RepoRoot returns the absolute path of the work tree containing the current
// directory.
func RepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return RepoRootFrom(cwd)
}

// RepoRootFrom returns the work tree root for dir, walking up to find .git.
func RepoRootFrom(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("opening repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no work tree to checkpoint.
		return "", ErrNotRepository
	}
	return wt.Filesystem.Root(), nil
}

// AbsPath resolves a repository-relative path against the work tree root.
// Absolute paths are returned unchanged.
func AbsPath(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	root, err := RepoRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// ResolveIn joins rel onto root unless rel is already absolute.
func ResolveIn(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}

// IsInfrastructurePath reports whether a slash-separated, repository-relative
// path belongs to the tool's own directory.
func IsInfrastructurePath(p string) bool {
	p = filepath.ToSlash(p)
	return p == CheckpointRoot || strings.HasPrefix(p, CheckpointRoot+"/")
}

// EnsureGitignore makes sure CheckpointRoot/.gitignore under root lists every
// entry of IgnoredEntries, appending the missing ones.
func EnsureGitignore(root string) error {
	dir := filepath.Join(root, CheckpointRoot)
	//nolint:gosec // G301: project directory needs standard permissions for git
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", CheckpointRoot, err)
	}

	path := filepath.Join(dir, gitignoreFileName)
	existing, err := os.ReadFile(path) //nolint:gosec // path is built from the repository root
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(existing), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	changed := false
	for _, entry := range IgnoredEntries {
		if !present[entry] {
			b.WriteString(entry + "\n")
			changed = true
		}
	}
	if !changed {
		return nil
	}

	//nolint:gosec // G306: .gitignore is committed and must be readable
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
