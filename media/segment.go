package media

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"clipstream/core"
)

// ClipCount returns ceil(total/clipDuration). An exact multiple yields
// exactly total/clipDuration clips with no zero-length trailing clip.
func ClipCount(totalDuration, clipDuration float64) int {
	if totalDuration <= 0 || clipDuration <= 0 {
		return 0
	}
	return int(math.Ceil(totalDuration / clipDuration))
}

// ClipSpans computes the ordered clip specifications covering
// [0, totalDuration) contiguously without overlap. Filenames are
// zero-padded and collision-free within a run.
func ClipSpans(totalDuration, clipDuration float64) []core.ClipSpec {
	count := ClipCount(totalDuration, clipDuration)
	specs := make([]core.ClipSpec, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * clipDuration
		end := math.Min(float64(i+1)*clipDuration, totalDuration)
		specs = append(specs, core.ClipSpec{
			Filename: fmt.Sprintf("clip_%03d.mp4", i+1),
			Start:    start,
			End:      end,
		})
	}
	return specs
}

// Segmenter cuts a source into clip files using lossless stream copy.
type Segmenter struct {
	runner Runner
	ffmpeg string
}

func NewSegmenter(runner Runner) *Segmenter {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Segmenter{runner: runner, ffmpeg: "ffmpeg"}
}

// Segment writes one file per clip span into outDir and returns the
// specs that were cut successfully, in order. A failed cut is logged
// and its index omitted; it never aborts the run.
func (s *Segmenter) Segment(ctx context.Context, src SourceMedia, outDir string, clipDuration float64) ([]core.ClipSpec, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	spans := ClipSpans(src.Duration, clipDuration)
	clips := make([]core.ClipSpec, 0, len(spans))
	for i, spec := range spans {
		if err := s.cut(ctx, src.Path, filepath.Join(outDir, spec.Filename), spec); err != nil {
			log.Printf("segment: %v", &core.SegmentError{Index: i + 1, Err: err})
			continue
		}
		clips = append(clips, spec)
	}
	return clips, nil
}

// SegmentParallel cuts clips over a bounded worker pool. Cutting
// disjoint time ranges shares no mutable state, so this is safe for the
// non-streaming batch mode; the returned specs keep document order.
func (s *Segmenter) SegmentParallel(ctx context.Context, src SourceMedia, outDir string, clipDuration float64, workers int) ([]core.ClipSpec, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	spans := ClipSpans(src.Duration, clipDuration)
	ok := make([]bool, len(spans))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, spec := range spans {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, spec core.ClipSpec) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.cut(ctx, src.Path, filepath.Join(outDir, spec.Filename), spec); err != nil {
				log.Printf("segment: %v", &core.SegmentError{Index: i + 1, Err: err})
				return
			}
			ok[i] = true
		}(i, spec)
	}
	wg.Wait()

	clips := make([]core.ClipSpec, 0, len(spans))
	for i, spec := range spans {
		if ok[i] {
			clips = append(clips, spec)
		}
	}
	return clips, nil
}

// cut trims [start, end) without re-encoding, overwriting any existing
// output path.
func (s *Segmenter) cut(ctx context.Context, input, output string, spec core.ClipSpec) error {
	_, err := s.runner.Run(ctx, s.ffmpeg,
		"-i", input,
		"-ss", formatSeconds(spec.Start),
		"-to", formatSeconds(spec.End),
		"-c", "copy",
		"-y",
		output)
	return err
}
