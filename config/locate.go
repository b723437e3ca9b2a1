package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ConfigFileNames are the project config file names recognised during the
// upward search, in order of preference within a directory.
var ConfigFileNames = []string{"blackfmt.toml", ".blackfmt.toml"}

// vcsMarkers end the upward search: a repository boundary means no config
// file above it belongs to this project.
var vcsMarkers = []string{".git", ".hg"}

// FindProjectRoot computes the common ancestor of the given paths and walks
// upward from it one directory at a time. It returns the directory the
// search stopped in and the path of the project config file, if one was
// found. Reaching a version control marker or the filesystem root before a
// config file is not an error; configFile is simply empty. An unreadable
// directory along the way ends the search the same way, leaving the caller
// to fall back to the user-global config.
func FindProjectRoot(paths []string) (root string, configFile string, err error) {
	start, err := CommonAncestor(paths)
	if err != nil {
		return "", "", err
	}

	l := log.WithPrefix("config")

	dirs := eachDir(start)
	for _, dir := range dirs {
		if _, statErr := os.Stat(dir); statErr != nil {
			l.Debugf("stopping search, cannot read %s: %v", dir, statErr)

			return dir, "", nil
		}

		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				l.Debugf("found project config %s", path)

				return dir, path, nil
			}
		}

		for _, marker := range vcsMarkers {
			if dirExists(filepath.Join(dir, marker)) {
				l.Debugf("stopping search at repository boundary %s", dir)

				return dir, "", nil
			}
		}
	}

	// the filesystem root is the final stop
	return dirs[len(dirs)-1], "", nil
}

// CommonAncestor resolves each path to an absolute directory (files
// contribute their parent) and returns the deepest directory containing all
// of them. With no paths it returns the working directory.
func CommonAncestor(paths []string) (string, error) {
	if len(paths) == 0 {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}

		return dir, nil
	}

	dirs := make([][]string, 0, len(paths))

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}

		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			abs = filepath.Dir(abs)
		}

		dirs = append(dirs, strings.Split(filepath.Clean(abs), string(os.PathSeparator)))
	}

	common := dirs[0]
	for _, components := range dirs[1:] {
		var i int
		for i < len(common) && i < len(components) && common[i] == components[i] {
			i++
		}

		common = common[:i]
	}

	ancestor := strings.Join(common, string(os.PathSeparator))
	if ancestor == "" {
		ancestor = string(os.PathSeparator)
	}

	return ancestor, nil
}

// FindUp searches for one of fileNames in searchDir and each of its
// ancestors, returning the first match.
func FindUp(searchDir string, fileNames ...string) (path string, dir string, err error) {
	for _, dir := range eachDir(searchDir) {
		for _, f := range fileNames {
			path := filepath.Join(dir, f)
			if fileExists(path) {
				return path, dir, nil
			}
		}
	}

	return "", "", fmt.Errorf("could not find %s in %s", fileNames, searchDir)
}

// FindUserConfig returns the user-global config file, consulting the
// platform's config home variables in their documented order. An empty
// string means no global config exists, which is fine; defaults apply.
func FindUserConfig() string {
	path, err := xdg.SearchConfigFile(filepath.Join("blackfmt", ConfigFileNames[0]))
	if err != nil {
		return ""
	}

	return path
}

// ParseFile reads a TOML config file into a raw key/value mapping. Type and
// name validation happens later, during the merge.
func ParseFile(path string) (map[string]any, error) {
	values := map[string]any{}

	if _, err := toml.DecodeFile(path, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return values, nil
}

func eachDir(path string) (paths []string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}

	paths = []string{path}

	if path == "/" {
		return
	}

	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == os.PathSeparator {
			path = path[:i]
			if path == "" {
				path = "/"
			}

			paths = append(paths, path)
		}
	}

	return
}

func fileExists(path string) bool {
	// Some broken filesystems like SSHFS return file information on stat() but
	// then cannot open the file. So we use os.Open.
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return false
	}

	return fi.Mode().IsRegular()
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.IsDir()
}
