package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// PathResolver finds data directories relative to the running binary
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable
// location. configDir is searched last for vocabularies.
func NewPathResolver(configDir string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     configDir,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, configDir)
	return pr, nil
}

// GetVocabularyDir resolves the directory holding the <tag>.txt word lists.
// It tries, in order:
// 1. User-specified path (if absolute)
// 2. Relative to executable directory
// 3. Relative to current working directory
// 4. Relative to the config directory
// When none holds a word list the executable relative path is returned, so
// missing vocabularies are reported against it.
func (pr *PathResolver) GetVocabularyDir(userSpecifiedPath string) string {
	candidates := pr.vocabularyDirCandidates(userSpecifiedPath)
	for _, path := range candidates {
		if IsVocabularyDir(path) {
			log.Debugf("Found vocabulary directory: %s", path)
			return path
		}
		log.Debugf("Vocabulary directory candidate not valid: %s", path)
	}
	if filepath.IsAbs(userSpecifiedPath) {
		return userSpecifiedPath
	}
	return filepath.Join(pr.executableDir, userSpecifiedPath)
}

func (pr *PathResolver) vocabularyDirCandidates(userSpecifiedPath string) []string {
	if filepath.IsAbs(userSpecifiedPath) {
		return []string{userSpecifiedPath}
	}
	candidates := []string{filepath.Join(pr.executableDir, userSpecifiedPath)}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
	}
	if pr.configDir != "" {
		candidates = append(candidates, filepath.Join(pr.configDir, userSpecifiedPath))
	}
	return candidates
}

// IsVocabularyDir checks if a directory contains at least one word list
func IsVocabularyDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.txt"))
	return err == nil && len(matches) > 0
}
