package ollama

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure VisionService implements the interface.
var _ driven.VisionService = (*VisionService)(nil)

// VisionConfig holds configuration for the vision service.
type VisionConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// VisionService captions extracted manual figures using a local vision
// model.
type VisionService struct {
	client *client
	model  string
}

type visionRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

// NewVisionService creates a new Ollama vision service.
func NewVisionService(cfg VisionConfig) *VisionService {
	if cfg.Model == "" {
		cfg.Model = DefaultVisionModel
	}
	return &VisionService{
		client: newClient(cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}
}

// Describe returns a short description of the image content.
func (s *VisionService) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	reqBody := visionRequest{
		Model:  s.model,
		Prompt: prompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	}

	var resp generateResponse
	if err := s.client.post(ctx, "/api/generate", reqBody, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// Close releases resources.
func (s *VisionService) Close() error {
	return nil
}
