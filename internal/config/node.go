package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NodeReader reads single-value tunables published as files in a directory.
// Values are re-read on every call; callers must not cache them.
type NodeReader interface {
	ReadNode(name string) (string, error)
}

type dirNode struct {
	dir string
}

func NewDirNode(dir string) NodeReader {
	return &dirNode{dir: dir}
}

func (n *dirNode) ReadNode(name string) (string, error) {
	path := filepath.Join(n.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read node %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
