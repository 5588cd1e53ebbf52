// Package health provides the /healthz liveness check: process-level
// readiness, distinct from /control/status's broadcast-state reporting.
package health

import (
	"fmt"
	"os/exec"
)

// CheckFFmpeg verifies the configured encoder binary resolves to an
// executable. A missing binary means the process can serve API reads but
// can never transition out of idle, which liveness callers should treat as
// not-ready.
func CheckFFmpeg(ffmpegPath string) error {
	if ffmpegPath == "" {
		return fmt.Errorf("no ffmpeg path configured")
	}
	if _, err := exec.LookPath(ffmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not resolvable: %w", err)
	}
	return nil
}
