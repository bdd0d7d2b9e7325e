package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Whisper transcribes voice audio through the OpenAI transcription API.
type Whisper struct {
	client *openai.Client
}

func NewWhisper(apiKey string) *Whisper {
	return &Whisper{client: openai.NewClient(apiKey)}
}

// TranscribeOgg transcribes a downloaded voice file. Telegram voice notes
// arrive as OGG/Opus; Whisper handles the container natively.
func (w *Whisper) TranscribeOgg(ctx context.Context, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, audio); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "voice.ogg",
		Reader:   &buf,
		Language: "ru",
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("transcription produced no text")
	}
	return resp.Text, nil
}
