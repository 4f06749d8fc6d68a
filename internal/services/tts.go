package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TTSService renders text to MP3 audio through the public translate TTS
// endpoint. It is strictly optional: summarization works without it and
// callers treat failures as warnings.
type TTSService struct {
	baseURL    string
	lang       string
	httpClient *http.Client
}

func NewTTSService(baseURL, lang string) *TTSService {
	return &TTSService{
		baseURL: baseURL,
		lang:    lang,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// The endpoint rejects long inputs, so text is synthesized in chunks and the
// MP3 streams are concatenated.
const ttsChunkChars = 200

func (s *TTSService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text to synthesize")
	}

	var audio []byte
	for _, chunk := range chunkText(text, ttsChunkChars) {
		part, err := s.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		audio = append(audio, part...)
	}
	return audio, nil
}

func (s *TTSService) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", s.lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	return audio, nil
}

// chunkText splits text into pieces of at most limit bytes, breaking on
// whitespace where possible and hard-splitting words longer than the limit.
func chunkText(text string, limit int) []string {
	var chunks []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if len(word) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			for len(word) > limit {
				chunks = append(chunks, word[:limit])
				word = word[limit:]
			}
			if word == "" {
				continue
			}
		}
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
