package encoder

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"time"
)

const testEncodeTimeout = 5 * time.Second

// Probe selects a codec profile. preference is "auto", "cpu", or a named
// profile. "auto" walks candidateProfiles in priority order and returns the
// first one whose short synthetic test encode exits zero; if none succeed,
// software is returned (it is always expected to work). "cpu" always
// selects software. A named preference is tried alone, falling back to
// software on failure.
func Probe(ctx context.Context, ffmpegPath, preference string) Profile {
	switch preference {
	case "", "auto":
		for _, p := range candidateProfiles {
			if p.Name == profileSoftware.Name || testEncode(ctx, ffmpegPath, p) {
				log.Printf("encoder: selected profile %q (auto)", p.Name)
				return p
			}
			log.Printf("encoder: profile %q failed test encode, trying next", p.Name)
		}
		return profileSoftware
	case "cpu":
		return profileSoftware
	default:
		if p, ok := Lookup(preference); ok {
			if p.Name == profileSoftware.Name || testEncode(ctx, ffmpegPath, p) {
				log.Printf("encoder: selected profile %q (pinned)", p.Name)
				return p
			}
			log.Printf("encoder: pinned profile %q failed test encode, falling back to software", preference)
		} else {
			log.Printf("encoder: unknown profile preference %q, falling back to software", preference)
		}
		return profileSoftware
	}
}

// testEncode runs a short synthetic test encode through ffmpeg using the
// profile's codec; success is exit code zero within testEncodeTimeout.
func testEncode(ctx context.Context, ffmpegPath string, p Profile) bool {
	ctx, cancel := context.WithTimeout(ctx, testEncodeTimeout)
	defer cancel()

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, p.ExtraPreInputArgs...)
	args = append(args, "-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=10")
	args = append(args, "-t", "1", "-c:v", p.Codec)
	args = append(args, p.ExtraOutputArgs...)
	args = append(args, "-f", "null", "-")

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}

// LookPath resolves the configured ffmpeg binary, matching PATH semantics
// when the configured value has no path separators.
func LookPath(configured string) (string, error) {
	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("encoder: resolve ffmpeg binary %q: %w", configured, err)
	}
	return path, nil
}
