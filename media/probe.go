package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"clipstream/core"
)

// Rational is an exact frame rate. Frame rates are kept as fractions
// rather than decimals so clip timing does not drift across many clips.
type Rational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// ParseRational parses ffprobe rate strings such as "30000/1001" or "25".
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return Rational{}, fmt.Errorf("empty rational")
	}
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("rational %q: %w", s, err)
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("rational %q: %w", s, err)
	}
	if n <= 0 || d <= 0 {
		return Rational{}, fmt.Errorf("rational %q: non-positive", s)
	}
	return Rational{Num: n, Den: d}, nil
}

// Float64 returns the decimal frame rate.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsZero reports an unset rate.
func (r Rational) IsZero() bool { return r.Num == 0 || r.Den == 0 }

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// SourceMedia describes a probed source file. Created once per run and
// immutable thereafter.
type SourceMedia struct {
	Path       string   `json:"path"`
	Duration   float64  `json:"duration"`
	FrameRate  Rational `json:"frame_rate"`
	FrameCount int64    `json:"frame_count"`
}

type probeStream struct {
	CodecType     string `json:"codec_type"`
	Duration      string `json:"duration"`
	NBFrames      string `json:"nb_frames"`
	NBReadPackets string `json:"nb_read_packets"`
	RFrameRate    string `json:"r_frame_rate"`
	AvgFrameRate  string `json:"avg_frame_rate"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober determines duration, frame rate and frame count of a source
// file, falling back from container metadata to stream metadata to a
// frames/rate computation to a full decode pass.
type Prober struct {
	runner  Runner
	ffprobe string
	ffmpeg  string
}

// NewProber builds a prober using the host ffprobe/ffmpeg binaries.
func NewProber(runner Runner) *Prober {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Prober{runner: runner, ffprobe: "ffprobe", ffmpeg: "ffmpeg"}
}

// Probe inspects path. Any unrecoverable failure yields *core.ProbeError;
// the caller treats that as zero duration and aborts segmentation.
func (p *Prober) Probe(ctx context.Context, path string) (SourceMedia, error) {
	out, err := p.runner.Run(ctx, p.ffprobe,
		"-v", "error", "-count_packets",
		"-show_format", "-show_streams", "-of", "json", path)
	if err != nil {
		return SourceMedia{}, &core.ProbeError{Path: path, Err: err}
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return SourceMedia{}, &core.ProbeError{Path: path, Err: fmt.Errorf("parse ffprobe output: %w", err)}
	}

	src := SourceMedia{Path: path}
	src.FrameRate = pickFrameRate(parsed.Streams)
	src.FrameCount = pickFrameCount(parsed.Streams)

	// Fallback chain for duration: container, then streams, then
	// frames/rate, then an exact decode-pass frame count.
	if d, ok := parseSeconds(parsed.Format.Duration); ok {
		src.Duration = d
	} else if d, ok := streamDuration(parsed.Streams); ok {
		src.Duration = d
	} else if src.FrameCount > 0 && !src.FrameRate.IsZero() {
		src.Duration = float64(src.FrameCount) * float64(src.FrameRate.Den) / float64(src.FrameRate.Num)
	} else {
		n, err := p.countFrames(ctx, path)
		if err != nil {
			return SourceMedia{}, &core.ProbeError{Path: path, Err: err}
		}
		src.FrameCount = n
		if src.FrameRate.IsZero() {
			return SourceMedia{}, &core.ProbeError{Path: path, Err: fmt.Errorf("no frame rate reported")}
		}
		src.Duration = float64(n) * float64(src.FrameRate.Den) / float64(src.FrameRate.Num)
	}

	if src.FrameCount == 0 && !src.FrameRate.IsZero() {
		src.FrameCount = int64(src.Duration * src.FrameRate.Float64())
	}
	if src.Duration <= 0 {
		return SourceMedia{}, &core.ProbeError{Path: path, Err: fmt.Errorf("zero duration")}
	}
	return src, nil
}

var framePattern = regexp.MustCompile(`frame=\s*(\d+)`)

// countFrames decodes the video stream through the null muxer and reads
// the final frame counter. Slow path, used only when metadata is bare.
func (p *Prober) countFrames(ctx context.Context, path string) (int64, error) {
	out, err := p.runner.Run(ctx, p.ffmpeg,
		"-i", path, "-map", "0:v:0", "-c", "copy", "-f", "null", "-")
	if err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	matches := framePattern.FindAllStringSubmatch(string(out), -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no frame counter in ffmpeg output")
	}
	n, err := strconv.ParseInt(matches[len(matches)-1][1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame counter: %w", err)
	}
	log.Printf("probe: counted %d frames in %s via decode pass", n, path)
	return n, nil
}

func pickFrameRate(streams []probeStream) Rational {
	for _, s := range streams {
		if s.CodecType != "video" {
			continue
		}
		if r, err := ParseRational(s.AvgFrameRate); err == nil {
			return r
		}
		if r, err := ParseRational(s.RFrameRate); err == nil {
			return r
		}
	}
	return Rational{}
}

func pickFrameCount(streams []probeStream) int64 {
	for _, s := range streams {
		if s.CodecType != "video" {
			continue
		}
		for _, field := range []string{s.NBFrames, s.NBReadPackets} {
			if n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func streamDuration(streams []probeStream) (float64, bool) {
	for _, s := range streams {
		if d, ok := parseSeconds(s.Duration); ok {
			return d, true
		}
	}
	return 0, false
}

func parseSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
