package filtergraph

import "fmt"

// videoCustom scales each input into its slot's bounding box (preserving
// aspect, letterboxed), optionally wraps it in a 4px white border, and
// overlays it at (x, y) on a black 1920x1080 canvas. Composition follows
// area-descending order (orderedCustomSlots, the order Inputs uses for KindCustom),
// so the largest slot is laid down first and smaller slots paint over it.
func videoCustom(cfg Config, inputs []Input) (string, error) {
	slots := orderedCustomSlots(cfg.CustomSlots)
	byName := make(map[string]CustomSlot, len(slots))
	for _, s := range slots {
		byName[s.Name] = s
	}
	byInputSlot := make(map[string]int, len(inputs))
	for i, in := range inputs {
		byInputSlot[in.Slot] = i
	}

	var parts []string
	current := "canvas"
	parts = append(parts, fmt.Sprintf(
		"color=c=black:s=%dx%d:r=30[%s]", CanvasWidth, CanvasHeight, current,
	))

	for _, s := range slots {
		idx, ok := byInputSlot[s.Name]
		if !ok {
			continue
		}
		border := 0
		if s.Border {
			border = 4
		}
		label := "c_" + s.Name
		parts = append(parts, bordered(idx, s.Width, s.Height, border, label)...)
		next := "ov_" + s.Name
		parts = append(parts, fmt.Sprintf("[%s][%s]overlay=%d:%d[%s]", current, label, s.X, s.Y, next))
		current = next
	}
	parts[len(parts)-1] = renameLastLabel(parts[len(parts)-1], "v")
	return join(parts), nil
}
