// Package tts fetches pronunciation audio for words into a local cache.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Service synthesizes pronunciation audio through Google Translate TTS and
// caches the files on disk.
type Service struct {
	audioDir string
	lang     string
	client   *http.Client
}

// New creates a TTS service writing into audioDir.
func New(audioDir string) *Service {
	return &Service{
		audioDir: audioDir,
		lang:     "en",
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Synthesize converts text to speech and returns the path of the cached MP3.
// An error only means the caller goes without audio; it must never block
// whatever the audio was meant to accompany.
func (s *Service) Synthesize(text string) (string, error) {
	sanitized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	path := filepath.Join(s.audioDir, fmt.Sprintf("word_%s.mp3", sanitized))

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %v", err)
	}
	if err := s.fetch(text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %v", err)
	}

	return path, nil
}

// fetch downloads the audio from Google Translate's TTS endpoint, which needs
// no API key.
func (s *Service) fetch(text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://translate.google.com/translate_tts?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to write audio file: %v", err)
	}

	return nil
}
