package decode

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// decodeImage runs OCR over a statement photo or screenshot.
func (d *Decoder) decodeImage(data []byte) (*Content, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(d.OCRLanguages...); err != nil {
		return nil, fmt.Errorf("set ocr languages: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	return &Content{Lines: splitLines(text)}, nil
}
