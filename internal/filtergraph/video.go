package filtergraph

import "fmt"

// normalize scales input idx preserving aspect ratio into a w x h bounding
// box, pads with black to exactly fill it, squares the pixel aspect ratio,
// and resamples to 30 fps. The output is labeled [label].
func normalize(idx int, w, h int, label string) string {
	return fmt.Sprintf(
		"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1,fps=30[%s]",
		idx, w, h, w, h, label,
	)
}

// bordered normalizes input idx into an (w-2*border) x (h-2*border) inner
// box, then pads out to w x h with a border-pixel-wide white frame. If
// border is 0 this is equivalent to normalize. The output is labeled [label].
func bordered(idx int, w, h, border int, label string) []string {
	innerW, innerH := w-2*border, h-2*border
	if border <= 0 {
		return []string{normalize(idx, w, h, label)}
	}
	innerLabel := label + "i"
	return []string{
		normalize(idx, innerW, innerH, innerLabel),
		fmt.Sprintf("[%s]pad=%d:%d:%d:%d:white[%s]", innerLabel, w, h, border, border, label),
	}
}

// buildVideoChain dispatches to the per-kind video filter builder and
// returns the full filter_complex video segment (without the trailing
// ";" that joins it to the audio segment), ending in label [v].
func buildVideoChain(cfg Config, inputs []Input) (string, error) {
	switch cfg.Kind {
	case KindPiP:
		return videoPiP(inputs)
	case KindSplitH:
		return videoSplitH(inputs)
	case KindSplitV:
		return videoSplitV(inputs)
	case KindGrid2x2:
		return videoGrid2x2(inputs)
	case KindMultiPiP2, KindMultiPiP3, KindMultiPiP4:
		return videoMultiPiP(inputs)
	case KindDVDPiP:
		return videoDVDPiP(inputs)
	case KindCustom:
		return videoCustom(cfg, inputs)
	default:
		return "", fmt.Errorf("filtergraph: unhandled layout kind %q", cfg.Kind)
	}
}

func videoPiP(inputs []Input) (string, error) {
	var parts []string
	parts = append(parts, normalize(0, CanvasWidth, CanvasHeight, "main"))
	parts = append(parts, bordered(1, 640, 360, 8, "inset")...)
	x, y := CanvasWidth-640-40, CanvasHeight-360-40
	parts = append(parts, fmt.Sprintf("[main][inset]overlay=%d:%d[v]", x, y))
	return join(parts), nil
}

func videoSplitH(inputs []Input) (string, error) {
	var parts []string
	parts = append(parts, normalize(0, 960, 1080, "l"))
	parts = append(parts, normalize(1, 960, 1080, "r"))
	parts = append(parts, "[l][r]hstack=inputs=2[v]")
	return join(parts), nil
}

func videoSplitV(inputs []Input) (string, error) {
	var parts []string
	parts = append(parts, normalize(0, 1920, 540, "t"))
	parts = append(parts, normalize(1, 1920, 540, "b"))
	parts = append(parts, "[t][b]vstack=inputs=2[v]")
	return join(parts), nil
}

func videoGrid2x2(inputs []Input) (string, error) {
	var parts []string
	labels := []string{"g1", "g2", "g3", "g4"}
	for i, label := range labels {
		parts = append(parts, normalize(i, 960, 540, label))
	}
	parts = append(parts, fmt.Sprintf(
		"[%s][%s][%s][%s]xstack=inputs=4:layout=0_0|w0_0|0_h0|w0_h0[v]",
		labels[0], labels[1], labels[2], labels[3],
	))
	return join(parts), nil
}

// videoMultiPiP arranges k insets (k = len(inputs)-1) along the bottom edge
// right-to-left with a 20px gap and a 40px margin from the frame edges.
func videoMultiPiP(inputs []Input) (string, error) {
	var parts []string
	parts = append(parts, normalize(0, CanvasWidth, CanvasHeight, "main"))
	const insetW, insetH, border, gap, margin = 384, 216, 4, 20, 40

	current := "main"
	x := CanvasWidth - margin - insetW
	y := CanvasHeight - margin - insetH
	for i := 1; i < len(inputs); i++ {
		label := fmt.Sprintf("inset%d", i)
		parts = append(parts, bordered(i, insetW, insetH, border, label)...)
		next := fmt.Sprintf("ov%d", i)
		parts = append(parts, fmt.Sprintf("[%s][%s]overlay=%d:%d[%s]", current, label, x, y, next))
		current = next
		x -= insetW + gap
	}
	parts[len(parts)-1] = renameLastLabel(parts[len(parts)-1], "v")
	return join(parts), nil
}

func renameLastLabel(filter, newLabel string) string {
	// Replace the trailing "[labelName]" with "[newLabel]".
	i := lastIndexByte(filter, '[')
	return filter[:i] + "[" + newLabel + "]"
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func join(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ";" + p
	}
	return out
}
