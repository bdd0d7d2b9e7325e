package telegram

import (
	"context"
	"fmt"
	"io"

	"github.com/rusneurosoft/neuro-connector/internal/flow"
)

// WhisperClient transcribes Russian-language OGG/Opus audio.
type WhisperClient interface {
	TranscribeOgg(ctx context.Context, audio io.Reader) (string, error)
}

// OggTranscriber turns a Telegram voice note into text: downloads the OGG
// payload by file id and hands the stream to the transcription backend. It
// implements flow.Transcriber.
type OggTranscriber struct {
	bot     *Client
	whisper WhisperClient
}

func NewOggTranscriber(bot *Client, whisper WhisperClient) *OggTranscriber {
	return &OggTranscriber{bot: bot, whisper: whisper}
}

func (t *OggTranscriber) Transcribe(ctx context.Context, voice flow.VoiceRef) (string, error) {
	audio, err := t.bot.DownloadFile(ctx, voice.FileID)
	if err != nil {
		return "", fmt.Errorf("download voice: %w", err)
	}
	defer audio.Close()

	return t.whisper.TranscribeOgg(ctx, audio)
}
