// Package auth supplies bearer credentials to the connection core.
package auth

import (
	"os"
	"strings"
	"sync"
)

// StaticToken returns a fixed token on every read.
type StaticToken string

// Token implements core.TokenSource.
func (t StaticToken) Token() string {
	return string(t)
}

// FileToken reads the token from a file on every call, so a rotated file is
// picked up at the next connect attempt without restarting the client.
// Already-open connections keep their credential until they reconnect.
type FileToken struct {
	path string

	mu   sync.Mutex
	last string
}

// NewFileToken constructs a file-backed token source.
func NewFileToken(path string) *FileToken {
	return &FileToken{path: path}
}

// Token implements core.TokenSource. A read failure falls back to the last
// successfully read token; an anonymous attempt is still made when none
// exists yet.
func (f *FileToken) Token() string {
	data, err := os.ReadFile(f.path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return f.last
	}
	f.last = strings.TrimSpace(string(data))
	return f.last
}
