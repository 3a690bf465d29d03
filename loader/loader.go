// Package loader reads a casm source file from disk into the line slice
// machine.Machine.Load expects, sandboxed to a configured filesystem
// root exactly as the teacher's VM.ValidatePath restricts file syscalls.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves and reads casm program files, rejecting any path that
// would escape Root once symlinks are resolved.
type Loader struct {
	Root string // absolute; New turns an empty root into the current directory
}

// New creates a Loader rooted at root. An empty root defaults to the
// current working directory.
func New(root string) (*Loader, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		root = cwd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving filesystem root: %w", err)
	}
	return &Loader{Root: absRoot}, nil
}

// ValidatePath resolves path against the loader's root and rejects any
// path that escapes it, following symlinks first. Grounded on the
// teacher's VM.ValidatePath, trimmed to read-only use: casm programs only
// ever load source files, never write them.
func (l *Loader) ValidatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty file path")
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path contains '..' component")
	}
	if strings.HasPrefix(path, "/") {
		path = path[1:]
	}

	fullPath := filepath.Clean(filepath.Join(l.Root, path))

	resolvedPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("symlink resolution failed: %w", err)
		}
		resolvedPath = fullPath
	}

	canonicalRoot, err := filepath.EvalSymlinks(l.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve filesystem root: %w", err)
	}
	canonicalRoot = filepath.Clean(canonicalRoot)
	resolvedPath = filepath.Clean(resolvedPath)

	relPath, err := filepath.Rel(canonicalRoot, resolvedPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("path %q is outside allowed filesystem root %q", path, l.Root)
	}

	return fullPath, nil
}

// Load reads path (sandboxed to Root) and splits it into lines, stripping
// the trailing newline from each — exactly the []string shape
// machine.Machine.Load and lang.Preprocess consume.
func (l *Loader) Load(path string) ([]string, error) {
	fullPath, err := l.ValidatePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath) // #nosec G304 -- path validated above
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	return lines, nil
}
