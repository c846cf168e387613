// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil keeps data files inside their configured directory.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is returned when a path resolves outside its root.
var ErrEscapesRoot = errors.New("path escapes root")

// ConfineRelPath joins root and rel and checks that the result, with
// symlinks resolved, stays underneath root. rel must be relative.
func ConfineRelPath(root, rel string) (string, error) {
	if strings.Contains(rel, "\\") {
		return "", fmt.Errorf("path contains backslash: %s", rel)
	}
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("path must be relative: %s", rel)
	}
	if isParentRef(clean) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, rel)
	}

	realRoot, err := realDir(root)
	if err != nil {
		return "", err
	}
	return checkUnder(realRoot, filepath.Join(realRoot, clean))
}

func realDir(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root: %w", err)
	}
	rp, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return rp, nil
}

// checkUnder resolves full (or its parent, for files not yet created) and
// verifies it is below realRoot.
func checkUnder(realRoot, full string) (string, error) {
	resolved := full
	if _, err := os.Lstat(full); err == nil {
		rp, err := filepath.EvalSymlinks(full)
		if err != nil {
			return "", fmt.Errorf("resolve path: %w", err)
		}
		resolved = rp
	} else if rp, err := filepath.EvalSymlinks(filepath.Dir(full)); err == nil {
		resolved = filepath.Join(rp, filepath.Base(full))
	}

	rel, err := filepath.Rel(realRoot, resolved)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if isParentRef(rel) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, resolved)
	}
	return resolved, nil
}

func isParentRef(p string) bool {
	return p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator))
}
