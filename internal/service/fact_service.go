package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/quizhub-api/internal/config"
)

// Fact - занимательный факт, сгенерированный внешним сервисом
// по теме одного из показанных вопросов
type Fact struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// FactGenerator генерирует факты по списку тем.
// Сбои генерации никогда не блокируют игровой цикл.
type FactGenerator interface {
	Generate(ctx context.Context, topics []string) ([]Fact, error)
}

// FactService - HTTP-клиент внешнего сервиса генерации фактов
type FactService struct {
	baseURL    string
	httpClient *http.Client
}

// NewFactService создает клиент сервиса фактов.
// При пустом baseURL возвращает nil - генерация фактов отключена.
func NewFactService(cfg config.FactsConfig) *FactService {
	if cfg.BaseURL == "" {
		log.Println("[FactService] URL сервиса фактов не задан, генерация фактов отключена")
		return nil
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &FactService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type factRequest struct {
	Topics []string `json:"topics"`
}

type factResponse struct {
	Facts []Fact `json:"facts"`
}

// Generate запрашивает факты по темам у внешнего сервиса
func (s *FactService) Generate(ctx context.Context, topics []string) ([]Fact, error) {
	if len(topics) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(factRequest{Topics: topics})
	if err != nil {
		return nil, fmt.Errorf("marshal fact request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/facts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create fact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("fact service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed factResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode fact response: %w", err)
	}

	return parsed.Facts, nil
}
