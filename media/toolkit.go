package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Frame is one sampled still image with its timestamp inside the clip.
type Frame struct {
	Timestamp float64 `json:"timestamp"`
	Path      string  `json:"path"`
}

// Ops is the per-clip toolkit surface the extractor depends on. Split
// out as an interface so pipeline tests can run without ffmpeg.
type Ops interface {
	ExtractAudio(ctx context.Context, clipPath, audioPath string) error
	SampleEvery(ctx context.Context, clipPath, dir string, intervalSec float64) ([]Frame, error)
	SampleUniform(ctx context.Context, clipPath, dir string, n int, duration float64) ([]Frame, error)
}

// Toolkit implements Ops with ffmpeg.
type Toolkit struct {
	runner Runner
	ffmpeg string
}

func NewToolkit(runner Runner) *Toolkit {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolkit{runner: runner, ffmpeg: "ffmpeg"}
}

// ExtractAudio writes a stereo PCM wav track for transcription.
func (t *Toolkit) ExtractAudio(ctx context.Context, clipPath, audioPath string) error {
	_, err := t.runner.Run(ctx, t.ffmpeg,
		"-i", clipPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-f", "wav",
		"-y",
		audioPath)
	return err
}

// SampleEvery extracts one grayscale frame per interval into dir and
// returns the frames with their timestamps.
func (t *Toolkit) SampleEvery(ctx context.Context, clipPath, dir string, intervalSec float64) ([]Frame, error) {
	if intervalSec <= 0 {
		return nil, fmt.Errorf("sample interval must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	pattern := filepath.Join(dir, "%05d.jpg")
	filter := fmt.Sprintf("fps=1/%s,format=gray", formatSeconds(intervalSec))
	if _, err := t.runner.Run(ctx, t.ffmpeg, "-i", clipPath, "-vf", filter, "-y", pattern); err != nil {
		return nil, err
	}
	return enumerateFrames(dir, intervalSec)
}

// SampleUniform extracts n frames spread evenly across the clip.
func (t *Toolkit) SampleUniform(ctx context.Context, clipPath, dir string, n int, duration float64) ([]Frame, error) {
	if n < 1 || duration <= 0 {
		return nil, fmt.Errorf("invalid uniform sample request: n=%d duration=%f", n, duration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		ts := 0.0
		if n > 1 {
			ts = duration * float64(i) / float64(n-1)
		}
		// Seeking to the exact end often yields no frame; back off a little.
		if ts > duration-0.05 {
			ts = duration - 0.05
		}
		if ts < 0 {
			ts = 0
		}
		out := filepath.Join(dir, fmt.Sprintf("uniform_%02d.jpg", i))
		if _, err := t.runner.Run(ctx, t.ffmpeg,
			"-ss", formatSeconds(ts), "-i", clipPath, "-frames:v", "1", "-y", out); err != nil {
			return frames, err
		}
		frames = append(frames, Frame{Timestamp: ts, Path: out})
	}
	return frames, nil
}

func enumerateFrames(dir string, intervalSec float64) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base := name[:len(name)-len(filepath.Ext(name))]
		idx, err := strconv.Atoi(base)
		if err != nil {
			continue
		}
		frames = append(frames, Frame{
			Timestamp: float64(idx-1) * intervalSec,
			Path:      filepath.Join(dir, name),
		})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Timestamp < frames[j].Timestamp })
	return frames, nil
}
