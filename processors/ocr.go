package processors

import (
	"context"
	"os"
	"strings"

	"github.com/otiai10/gosseract"
)

// TextRecognizer reads on-screen text from one grayscale frame image.
// An empty string is a legitimate result for frames without text.
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// TesseractOCR recognizes text with the Tesseract engine.
type TesseractOCR struct{}

func (TesseractOCR) Recognize(_ context.Context, imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(imagePath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// MockTextRecognizer returns no text for every frame.
type MockTextRecognizer struct{}

func (MockTextRecognizer) Recognize(context.Context, string) (string, error) {
	return "", nil
}

// PickTextRecognizer selects the OCR engine; OCR=mock disables it.
func PickTextRecognizer() TextRecognizer {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("OCR")), "mock") {
		return MockTextRecognizer{}
	}
	return TesseractOCR{}
}
