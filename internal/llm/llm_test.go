package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
)

func TestCommandPrompt(t *testing.T) {
	p := CommandPrompt("  open chrome and search for test ", map[string]string{
		"safari": "com.apple.Safari",
		"chrome": "com.google.Chrome",
	})

	if !strings.Contains(p, "USER REQUEST: open chrome and search for test\n") {
		t.Error("prompt should carry the trimmed request")
	}
	if !strings.Contains(p, "TASK: Generate the command for: open chrome and search for test") {
		t.Error("prompt should end with the task line")
	}
	if !strings.Contains(p, "python%20tutorials") {
		t.Error("literal percent sign should survive formatting")
	}
	chrome := strings.Index(p, "- chrome: com.google.Chrome")
	safari := strings.Index(p, "- safari: com.apple.Safari")
	if chrome < 0 || safari < 0 || chrome > safari {
		t.Errorf("bundle table missing or unsorted (chrome=%d safari=%d)", chrome, safari)
	}
}

func TestCommandPromptWithoutApps(t *testing.T) {
	if strings.Contains(CommandPrompt("x", nil), "KNOWN BUNDLE IDS") {
		t.Error("empty table should be omitted")
	}
}

func TestSelfTestPrompt(t *testing.T) {
	if !strings.Contains(SelfTestPrompt(), "Output only the command") {
		t.Error("unexpected self-test prompt")
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, ""},
		{
			"text parts joined",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("ls "), genai.Text("-la")}},
			}}},
			"ls -la",
		},
		{
			"non-text skipped",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}, genai.Text("beep")}},
			}}},
			"beep",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackendErrorUnwraps(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := errors.Wrap(&BackendError{Op: "generate", Err: cause}, "dispatch")

	if !IsBackendError(err) {
		t.Error("IsBackendError should see through wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("BackendError should unwrap to its cause")
	}
	if IsBackendError(ErrEmptyResponse) {
		t.Error("ErrEmptyResponse is not a backend error")
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := config.Default()

	_, err := NewGemini(context.Background(), cfg)
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("NewGemini error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateRejectsBlankPrompt(t *testing.T) {
	g := &Gemini{}
	if _, err := g.Generate(context.Background(), "  \n"); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Generate error = %v, want ErrEmptyPrompt", err)
	}
}
