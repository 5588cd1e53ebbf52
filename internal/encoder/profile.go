// Package encoder selects a codec profile at startup by running a short
// test invocation of the configured media-processing binary per candidate.
// The choice is made once and is immutable thereafter.
package encoder

// Profile is a named bundle of codec arguments, selected once at startup.
type Profile struct {
	Name               string
	Codec              string
	ExtraPreInputArgs  []string
	ExtraOutputArgs    []string
	SupportsHWFilter   bool
}

// profileSoftware is always available: libx264 on the CPU. It is the last
// resort in auto-selection and the only candidate considered for the "cpu"
// preference.
var profileSoftware = Profile{
	Name:             "software",
	Codec:            "libx264",
	ExtraOutputArgs:  []string{"-preset", "veryfast", "-tune", "zerolatency", "-pix_fmt", "yuv420p"},
	SupportsHWFilter: false,
}

// candidateProfiles lists the hardware profiles tried before falling back
// to software, in priority order. Each is a plausible VA-API / NVENC / QSV
// configuration; only the first whose test encode exits zero is selected.
var candidateProfiles = []Profile{
	{
		Name:              "vaapi",
		Codec:             "h264_vaapi",
		ExtraPreInputArgs: []string{"-vaapi_device", "/dev/dri/renderD128"},
		ExtraOutputArgs:   []string{"-vf", "format=nv12,hwupload", "-pix_fmt", "vaapi"},
		SupportsHWFilter:  true,
	},
	{
		Name:             "nvenc",
		Codec:            "h264_nvenc",
		ExtraOutputArgs:  []string{"-preset", "p4", "-pix_fmt", "yuv420p"},
		SupportsHWFilter: true,
	},
	{
		Name:              "qsv",
		Codec:             "h264_qsv",
		ExtraPreInputArgs: []string{"-init_hw_device", "qsv=hw", "-filter_hw_device", "hw"},
		ExtraOutputArgs:   []string{"-pix_fmt", "nv12"},
		SupportsHWFilter:  true,
	},
	profileSoftware,
}

// Lookup returns the named profile (including "software"), or ok=false.
func Lookup(name string) (Profile, bool) {
	if name == "software" || name == "cpu" {
		return profileSoftware, true
	}
	for _, p := range candidateProfiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
