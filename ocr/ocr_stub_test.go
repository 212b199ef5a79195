//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

type pngSource struct {
	calls int
	err   error
}

func (s *pngSource) PagePNG(page int) ([]byte, error) {
	s.calls++
	return []byte("png"), s.err
}

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}

func TestRecognizePageDisabled(t *testing.T) {
	var client *Client
	src := &pngSource{}
	if _, err := client.RecognizePage(src, 0); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("PagePNG called %d times, want 1", src.calls)
	}
}

func TestRecognizePageRenderError(t *testing.T) {
	var client *Client
	renderErr := errors.New("no such page")
	_, err := client.RecognizePage(&pngSource{err: renderErr}, 4)
	if !errors.Is(err, renderErr) {
		t.Errorf("Expected render error, got: %v", err)
	}
}
