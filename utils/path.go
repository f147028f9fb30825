package utils

import "path/filepath"

// PathDepth returns the number of components of an absolute path, the
// root "/" counting as the first one.
func PathDepth(path string) int {
	path = filepath.Clean(path)
	if path == "/" {
		return 1
	}

	depth := 1
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			depth++
		}
	}
	return depth + 1
}

// TruncatePath returns the prefix of an absolute path consisting of its
// first n components. Paths shorter than n components are returned
// whole.
func TruncatePath(path string, n int) string {
	path = filepath.Clean(path)
	if n <= 1 {
		return "/"
	}

	completed := 1
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			completed++
			if completed == n {
				return path[:i]
			}
		}
	}
	return path
}
