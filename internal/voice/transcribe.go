package voice

import (
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/llm"
	"github.com/rafabd1/ceres/pkg/utils"
)

const transcribeInstruction = "Transcribe the speech in this audio exactly. Output only the spoken words, with no commentary. If there is no speech, output nothing."

// Transcriber converts normalized mono samples into text. A blank result
// means nothing intelligible was heard.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error)
}

// PartsGenerator is the slice of llm.Gemini the Gemini transcriber needs.
type PartsGenerator interface {
	GenerateParts(ctx context.Context, parts ...genai.Part) (string, error)
}

// NewTranscriber selects the backend named by cfg.Voice.Backend.
func NewTranscriber(cfg *config.Config, gen PartsGenerator) (Transcriber, error) {
	switch cfg.Voice.Backend {
	case config.VoiceGemini:
		if gen == nil {
			return nil, errors.New("gemini voice backend requires a generative client")
		}
		return NewGeminiTranscriber(gen), nil
	case config.VoiceWhisper:
		return &WhisperTranscriber{
			Path:    cfg.Voice.WhisperPath,
			Model:   cfg.Voice.WhisperModel,
			TempDir: cfg.Execution.TempDir,
		}, nil
	default:
		return nil, errors.Errorf("unknown voice backend %q", cfg.Voice.Backend)
	}
}

// GeminiTranscriber sends audio to the generative model as an inline WAV blob.
type GeminiTranscriber struct {
	gen PartsGenerator
}

// NewGeminiTranscriber wraps gen.
func NewGeminiTranscriber(gen PartsGenerator) *GeminiTranscriber {
	return &GeminiTranscriber{gen: gen}
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	text, err := t.gen.GenerateParts(ctx,
		genai.Text(transcribeInstruction),
		genai.Blob{MIMEType: "audio/wav", Data: EncodeWAV(samples, sampleRate)},
	)
	if errors.Is(err, llm.ErrEmptyResponse) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "transcription failed")
	}
	return strings.TrimSpace(text), nil
}

// WhisperTranscriber runs the whisper command line tool on a temporary WAV file.
type WhisperTranscriber struct {
	Path    string // whisper executable
	Model   string // e.g. base.en
	TempDir string // empty means os.TempDir()
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	dir, err := os.MkdirTemp(t.TempDir, "ceres-voice-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create transcription dir")
	}
	defer os.RemoveAll(dir)

	audioPath := filepath.Join(dir, "utterance.wav")
	if err := os.WriteFile(audioPath, EncodeWAV(samples, sampleRate), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write audio")
	}

	cmd := exec.CommandContext(ctx, t.Path, audioPath,
		"--model", t.Model,
		"--output_format", "txt",
		"--output_dir", dir,
		"--fp16", "False",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("[ERROR] [Voice] whisper failed: %v, output: %s", err, utils.Truncate(string(output), 300))
		return "", errors.Wrap(err, "whisper failed")
	}

	text, err := os.ReadFile(filepath.Join(dir, "utterance.txt"))
	if err != nil {
		return "", errors.Wrap(err, "whisper produced no transcript")
	}
	return strings.TrimSpace(string(text)), nil
}

var (
	_ Transcriber    = (*GeminiTranscriber)(nil)
	_ Transcriber    = (*WhisperTranscriber)(nil)
	_ PartsGenerator = (*llm.Gemini)(nil)
)
