package encoder

import "testing"

func TestLookup(t *testing.T) {
	p, ok := Lookup("software")
	if !ok || p.Codec != "libx264" {
		t.Fatalf("Lookup(software): got %+v, ok=%v", p, ok)
	}
	if _, ok := Lookup("does-not-exist"); ok {
		t.Fatal("Lookup(does-not-exist): expected ok=false")
	}
}

func TestLookup_cpuAliasesSoftware(t *testing.T) {
	p, ok := Lookup("cpu")
	if !ok || p.Name != "software" {
		t.Fatalf("Lookup(cpu): got %+v, ok=%v", p, ok)
	}
}

func TestProbe_cpuPreferenceNeverRunsFFmpeg(t *testing.T) {
	// "cpu" must short-circuit to software without invoking the binary,
	// so an invalid path is safe here.
	p := Probe(nil, "/nonexistent/ffmpeg", "cpu")
	if p.Name != "software" {
		t.Fatalf("got %q, want software", p.Name)
	}
}
