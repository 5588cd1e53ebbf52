package filtergraph

import (
	"fmt"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/encoder"
)

// Input is one resolved (slot, source URL) pair in canonical slot order.
type Input struct {
	Slot string
	URL  string
}

// Compile turns a layout configuration plus resolved inputs into the
// complete argument vector for the media subprocess. inputs must already
// be in canonical slot order (the caller, C7, resolves channel ids against
// the catalog and orders them via Inputs below).
//
// Compile is pure: for a given (kind, inputs, audio slot, volumes, custom
// slots, profile), the output is byte-identical across calls (invariant 1).
func Compile(cfg Config, inputs []Input, profile encoder.Profile) ([]string, error) {
	if err := validate(cfg, inputs); err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, profile.ExtraPreInputArgs...)
	for _, in := range inputs {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
			"-i", in.URL,
		)
	}

	videoChain, err := buildVideoChain(cfg, inputs)
	if err != nil {
		return nil, apperror.New(apperror.BadLayout, err.Error())
	}
	audioChain := buildAudioChain(cfg, inputs)

	filterComplex := videoChain + ";" + audioChain
	args = append(args, "-filter_complex", filterComplex, "-map", "[v]", "-map", "[a]")
	args = append(args, "-c:v", profile.Codec)
	args = append(args, profile.ExtraOutputArgs...)
	args = append(args, "-f", "mpegts", "pipe:1")
	return args, nil
}

// Inputs resolves a layout configuration's slot_to_channel map into
// canonically-ordered (slot, url) pairs, using resolve to look up each
// channel id's stream URL. Returns bad-layout if a slot references an
// unknown channel id.
func Inputs(cfg Config, resolve func(channelID string) (string, bool)) ([]Input, error) {
	var order []string
	switch cfg.Kind {
	case KindCustom:
		for _, s := range orderedCustomSlots(cfg.CustomSlots) {
			order = append(order, s.Name)
		}
	default:
		so, ok := SlotOrder(cfg.Kind)
		if !ok {
			return nil, apperror.New(apperror.BadLayout, fmt.Sprintf("unknown layout kind %q", cfg.Kind))
		}
		order = so
	}

	var inputs []Input
	for _, slot := range order {
		chID, assigned := cfg.SlotToChannel[slot]
		if !assigned {
			continue
		}
		url, ok := resolve(chID)
		if !ok {
			return nil, apperror.New(apperror.BadLayout, fmt.Sprintf("unknown channel id %q for slot %q", chID, slot))
		}
		inputs = append(inputs, Input{Slot: slot, URL: url})
	}
	if len(inputs) == 0 {
		return nil, apperror.New(apperror.BadLayout, "no slots assigned")
	}
	if len(inputs) > 5 {
		return nil, apperror.New(apperror.BadLayout, "at most 5 streams may be composed")
	}
	return inputs, nil
}

func validate(cfg Config, inputs []Input) error {
	if len(inputs) == 0 {
		return apperror.New(apperror.BadLayout, "no inputs")
	}
	if len(inputs) > 5 {
		return apperror.New(apperror.BadLayout, "at most 5 streams may be composed")
	}

	assignedSlots := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		assignedSlots[in.Slot] = true
	}

	switch cfg.Kind {
	case KindCustom:
		if len(cfg.CustomSlots) == 0 {
			return apperror.New(apperror.BadLayout, "custom layout requires custom_slots")
		}
		names := make(map[string]bool, len(cfg.CustomSlots))
		for _, s := range cfg.CustomSlots {
			names[s.Name] = true
			if err := validateGeometry(s); err != nil {
				return err
			}
		}
		for slot := range cfg.SlotToChannel {
			if !names[slot] {
				return apperror.New(apperror.BadLayout, fmt.Sprintf("slot %q not in custom_slots", slot))
			}
		}
	default:
		order, ok := SlotOrder(cfg.Kind)
		if !ok {
			return apperror.New(apperror.BadLayout, fmt.Sprintf("unknown layout kind %q", cfg.Kind))
		}
		valid := make(map[string]bool, len(order))
		for _, s := range order {
			valid[s] = true
		}
		for slot := range cfg.SlotToChannel {
			if !valid[slot] {
				return apperror.New(apperror.BadLayout, fmt.Sprintf("slot %q not valid for layout %q", slot, cfg.Kind))
			}
		}
	}

	if cfg.AudioSlot == "" || !assignedSlots[cfg.AudioSlot] {
		return apperror.New(apperror.BadLayout, fmt.Sprintf("audio_slot %q is not an assigned slot", cfg.AudioSlot))
	}
	return nil
}

// validateGeometry enforces §3's custom slot bounds: 0<=x, x+width<=1920,
// 0<=y, y+height<=1080, 320<=width<=1920, 180<=height<=1080, and
// width:height = 16:9 within 1%.
func validateGeometry(s CustomSlot) error {
	if s.X < 0 || s.X+s.Width > CanvasWidth {
		return apperror.New(apperror.BadGeometry, fmt.Sprintf("slot %q x/width out of bounds", s.Name))
	}
	if s.Y < 0 || s.Y+s.Height > CanvasHeight {
		return apperror.New(apperror.BadGeometry, fmt.Sprintf("slot %q y/height out of bounds", s.Name))
	}
	if s.Width < 320 || s.Width > CanvasWidth {
		return apperror.New(apperror.BadGeometry, fmt.Sprintf("slot %q width out of bounds", s.Name))
	}
	if s.Height < 180 || s.Height > CanvasHeight {
		return apperror.New(apperror.BadGeometry, fmt.Sprintf("slot %q height out of bounds", s.Name))
	}
	wantRatio := 16.0 / 9.0
	gotRatio := float64(s.Width) / float64(s.Height)
	dev := (gotRatio - wantRatio) / wantRatio
	if dev < 0 {
		dev = -dev
	}
	if dev > 0.01 {
		return apperror.New(apperror.BadGeometry, fmt.Sprintf("slot %q aspect ratio deviates from 16:9 by more than 1%%", s.Name))
	}
	return nil
}
