package filtergraph

import "fmt"

// buildAudioChain resamples every input's audio to 48kHz stereo with
// asynchronous PTS compensation. If exactly one slot carries non-zero
// volume and it is the audio slot, the output is that stream alone, scaled
// by its volume. Otherwise every assigned slot is scaled by its volume
// (0 for slots with no configured volume — equivalent to substituting
// silence) and mixed without loudness normalization. Ends in label [a].
func buildAudioChain(cfg Config, inputs []Input) string {
	var parts []string
	labels := make([]string, len(inputs))
	for i, in := range inputs {
		label := "a" + in.Slot
		labels[i] = label
		parts = append(parts, fmt.Sprintf(
			"[%d:a]aresample=48000:async=1:first_pts=0,aformat=channel_layouts=stereo[%s]",
			i, label,
		))
	}

	nonZero := nonZeroVolumeSlots(cfg, inputs)
	if len(nonZero) == 1 && nonZero[0] == cfg.AudioSlot {
		idx := slotIndex(inputs, cfg.AudioSlot)
		vol := volumeFor(cfg, cfg.AudioSlot)
		parts = append(parts, fmt.Sprintf("[%s]volume=%g[a]", labels[idx], vol))
		return join(parts)
	}

	scaled := make([]string, len(inputs))
	for i, in := range inputs {
		vol := volumeFor(cfg, in.Slot)
		scaledLabel := "s" + in.Slot
		parts = append(parts, fmt.Sprintf("[%s]volume=%g[%s]", labels[i], vol, scaledLabel))
		scaled[i] = scaledLabel
	}
	mixInputs := ""
	for _, l := range scaled {
		mixInputs += "[" + l + "]"
	}
	parts = append(parts, fmt.Sprintf("%samix=inputs=%d:normalize=0[a]", mixInputs, len(scaled)))
	return join(parts)
}

func volumeFor(cfg Config, slot string) float64 {
	if v, ok := cfg.PerSlotVolume[slot]; ok {
		return ClampVolume(v)
	}
	return 0
}

func nonZeroVolumeSlots(cfg Config, inputs []Input) []string {
	var out []string
	for _, in := range inputs {
		if volumeFor(cfg, in.Slot) > 0 {
			out = append(out, in.Slot)
		}
	}
	return out
}

func slotIndex(inputs []Input, slot string) int {
	for i, in := range inputs {
		if in.Slot == slot {
			return i
		}
	}
	return -1
}
