package media

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeRunner struct {
	fn func(name string, args []string) ([]byte, error)
}

func (f fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	return f.fn(name, args)
}

func TestParseRational(t *testing.T) {
	cases := []struct {
		in      string
		num     int64
		den     int64
		wantErr bool
	}{
		{"30000/1001", 30000, 1001, false},
		{"25", 25, 1, false},
		{"0/0", 0, 0, true},
		{"N/A", 0, 0, true},
		{"", 0, 0, true},
		{"-30/1", 0, 0, true},
	}
	for _, tc := range cases {
		r, err := ParseRational(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRational(%q): want error, got %v", tc.in, r)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRational(%q): %v", tc.in, err)
			continue
		}
		if r.Num != tc.num || r.Den != tc.den {
			t.Errorf("ParseRational(%q) = %v, want %d/%d", tc.in, r, tc.num, tc.den)
		}
	}
}

func TestProbeFormatDuration(t *testing.T) {
	probeJSON := `{
		"streams": [{"codec_type": "video", "avg_frame_rate": "30/1", "nb_frames": "3600"}],
		"format": {"duration": "120.000000"}
	}`
	p := NewProber(fakeRunner{fn: func(name string, _ []string) ([]byte, error) {
		if name != "ffprobe" {
			t.Fatalf("unexpected tool %q", name)
		}
		return []byte(probeJSON), nil
	}})

	src, err := p.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if src.Duration != 120 {
		t.Errorf("duration = %v, want 120", src.Duration)
	}
	if src.FrameCount != 3600 {
		t.Errorf("frame count = %d, want 3600", src.FrameCount)
	}
	if src.FrameRate.Float64() != 30 {
		t.Errorf("frame rate = %v, want 30", src.FrameRate.Float64())
	}
}

func TestProbeStreamDurationFallback(t *testing.T) {
	probeJSON := `{
		"streams": [{"codec_type": "video", "duration": "90.5", "avg_frame_rate": "25/1"}],
		"format": {"duration": "N/A"}
	}`
	p := NewProber(fakeRunner{fn: func(string, []string) ([]byte, error) {
		return []byte(probeJSON), nil
	}})

	src, err := p.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if src.Duration != 90.5 {
		t.Errorf("duration = %v, want 90.5", src.Duration)
	}
}

func TestProbeFrameMathFallback(t *testing.T) {
	probeJSON := `{
		"streams": [{"codec_type": "video", "avg_frame_rate": "30000/1001", "nb_read_packets": "30000"}],
		"format": {}
	}`
	p := NewProber(fakeRunner{fn: func(string, []string) ([]byte, error) {
		return []byte(probeJSON), nil
	}})

	src, err := p.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	want := 30000.0 * 1001 / 30000
	if math.Abs(src.Duration-want) > 1e-9 {
		t.Errorf("duration = %v, want %v", src.Duration, want)
	}
}

func TestProbeDecodePassFallback(t *testing.T) {
	probeJSON := `{
		"streams": [{"codec_type": "video", "avg_frame_rate": "30/1"}],
		"format": {}
	}`
	ffmpegOut := "frame=  100 fps=0.0\nframe=  450 fps=450 q=-1.0 Lsize=N/A"
	p := NewProber(fakeRunner{fn: func(name string, _ []string) ([]byte, error) {
		if name == "ffprobe" {
			return []byte(probeJSON), nil
		}
		return []byte(ffmpegOut), nil
	}})

	src, err := p.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if src.FrameCount != 450 {
		t.Errorf("frame count = %d, want 450 (last counter wins)", src.FrameCount)
	}
	if src.Duration != 15 {
		t.Errorf("duration = %v, want 15", src.Duration)
	}
}

func TestProbeFailure(t *testing.T) {
	p := NewProber(fakeRunner{fn: func(string, []string) ([]byte, error) {
		return nil, errors.New("no such file")
	}})
	if _, err := p.Probe(context.Background(), "missing.mp4"); err == nil {
		t.Fatal("want error for failed probe")
	}
}
