// Package spinner shows progress on interactive terminals while checks run.
package spinner

import (
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/thirukguru/check42/shared/terminal"
)

var (
	mu     sync.Mutex
	loader *spinner.Spinner
)

// StartSpinner starts the CLI loading spinner with the given message. It does nothing
// when stderr is not a terminal.
func StartSpinner(message string) {
	if !terminal.IsTerminal(os.Stderr) {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		loader.Lock()
		loader.Suffix = " " + message
		loader.Unlock()
		return
	}
	loader = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	loader.Color("yellow") //nolint:errcheck
	loader.Suffix = " " + message
	loader.Start()
}

// UpdateSpinner replaces the message of a running spinner.
func UpdateSpinner(message string) {
	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		loader.Lock()
		loader.Suffix = " " + message
		loader.Unlock()
	}
}

// StopSpinner stops the CLI loading spinner.
func StopSpinner() {
	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		loader.Stop()
		loader = nil
	}
}
