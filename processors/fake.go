package processors

import (
	"fmt"
	"math"

	vidio "github.com/AlexEidt/Vidio"
	"gonum.org/v1/gonum/stat"

	"clipstream/core"
)

// FakeDetector inspects the source file for signs of manipulation or
// synthetic generation.
type FakeDetector interface {
	Inspect(videoPath string) (*core.FakeDetectionResult, error)
}

// HeuristicFakeDetector samples decoded frames and flags videos whose
// frame rate, sharpness stability or color distribution fall outside
// the range of typical camera footage.
type HeuristicFakeDetector struct {
	// SampleStride picks every Nth frame for analysis.
	SampleStride int
	// MaxSamples bounds the decode work on long videos.
	MaxSamples int
}

func NewHeuristicFakeDetector() *HeuristicFakeDetector {
	return &HeuristicFakeDetector{SampleStride: 10, MaxSamples: 60}
}

func (d *HeuristicFakeDetector) Inspect(videoPath string) (*core.FakeDetectionResult, error) {
	video, err := vidio.NewVideo(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video for inspection: %w", err)
	}
	defer video.Close()

	result := &core.FakeDetectionResult{}

	fps := video.FPS()
	if fps < 24 || fps > 60 {
		result.PotentialManipulation = true
		result.Reasons = append(result.Reasons, fmt.Sprintf("unusual frame rate: %.2f fps", fps))
	}

	stride := d.SampleStride
	if stride < 1 {
		stride = 1
	}
	width, height := video.Width(), video.Height()

	var sharpness, entropies []float64
	for idx := 0; video.Read(); idx++ {
		if idx%stride != 0 {
			continue
		}
		gray := grayPlane(video.FrameBuffer(), width, height)
		sharpness = append(sharpness, laplacianVariance(gray, width, height))
		entropies = append(entropies, histogramEntropy(gray))
		if d.MaxSamples > 0 && len(sharpness) >= d.MaxSamples {
			break
		}
	}

	if len(sharpness) >= 2 {
		if sd := stat.StdDev(sharpness, nil); sd > 100 {
			result.PotentialManipulation = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("inconsistent frame quality: stddev %.2f", sd))
		}
		if sd := stat.StdDev(entropies, nil); sd > 0.5 {
			result.PotentialManipulation = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("unstable color distribution: stddev %.2f", sd))
		}
	}
	return result, nil
}

// grayPlane converts an RGBA frame buffer to a luma plane.
func grayPlane(rgba []byte, width, height int) []float64 {
	gray := make([]float64, width*height)
	for i := range gray {
		r := float64(rgba[i*4])
		g := float64(rgba[i*4+1])
		b := float64(rgba[i*4+2])
		gray[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return gray
}

// laplacianVariance measures sharpness as the variance of a 4-neighbor
// Laplacian over the interior of the frame.
func laplacianVariance(gray []float64, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}
	lap := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			v := 4*gray[i] - gray[i-1] - gray[i+1] - gray[i-width] - gray[i+width]
			lap = append(lap, v)
		}
	}
	return stat.Variance(lap, nil)
}

// histogramEntropy is the Shannon entropy of a 64-bin luma histogram.
func histogramEntropy(gray []float64) float64 {
	if len(gray) == 0 {
		return 0
	}
	bins := make([]float64, 64)
	for _, v := range gray {
		bin := int(v / 4)
		if bin > 63 {
			bin = 63
		}
		bins[bin]++
	}
	total := float64(len(gray))
	for i := range bins {
		bins[i] /= total
	}
	h := stat.Entropy(bins)
	if math.IsNaN(h) {
		return 0
	}
	return h
}

// MockFakeDetector always reports clean footage.
type MockFakeDetector struct{}

func (MockFakeDetector) Inspect(string) (*core.FakeDetectionResult, error) {
	return &core.FakeDetectionResult{}, nil
}
