package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	stdinPath  = "-"
	stdinLabel = "<stdin>"
)

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
)

// readInput reads a single input file, or stdin when path is "-".
// The returned label names the input in diagnostics.
func readInput(path string, stdin io.Reader) (content []byte, label string, err error) {
	input, label, err := openInput(path, stdin)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = input.Close() }()

	content, err = io.ReadAll(input)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", label, err)
	}

	return content, label, nil
}

// openInput opens a single input file, or stdin when path is "-".
// Closing the returned reader leaves stdin open.
func openInput(path string, stdin io.Reader) (input io.ReadCloser, label string, err error) {
	if path == stdinPath {
		return io.NopCloser(stdin), stdinLabel, nil
	}

	resolved, err := resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolved is normalized and type checked in resolveUserFilePath.
	file, err := os.Open(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}

	return file, filepath.ToSlash(path), nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}
