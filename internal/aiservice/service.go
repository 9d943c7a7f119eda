package aiservice

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/AvalonLA/atelier/config"
)

// FlagReader exposes the runtime switch for the assistant.
type FlagReader interface {
	AIActive() bool
}

// Service proxies lighting advice and room visualization to an external
// model endpoint. Every remote failure degrades to a local answer; the
// storefront never surfaces a hard error from this service.
type Service struct {
	endpoint string
	apikey   string
	flags    FlagReader
}

func NewService(cfg config.AIConfig, flags FlagReader) *Service {
	return &Service{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apikey:   cfg.Apikey,
		flags:    flags,
	}
}

var cannedAdvice = []string{
	"Para espacios de techos altos, una luminaria colgante a 75cm sobre la mesa crea un punto focal cálido sin deslumbrar.",
	"Combine luz general de 2700K con acentos dirigidos para dar profundidad a la sala; evite una única fuente central.",
	"En zonas de lectura, una lámpara de pie con pantalla orientable junto al sillón rinde más que aumentar la potencia general.",
	"Las lámparas de mesa con regulador permiten pasar de luz de trabajo a luz ambiental sin cambiar de luminaria.",
}

type adviceRequest struct {
	Prompt  string `json:"prompt"`
	Product string `json:"product,omitempty"`
}

type adviceResponse struct {
	Answer string `json:"answer"`
}

// Advise answers a lighting question. A disabled flag, missing endpoint
// or any remote failure falls back to a canned recommendation.
func (s *Service) Advise(ctx context.Context, prompt, productName string) string {
	if !s.flags.AIActive() || s.endpoint == "" {
		return s.canned(prompt)
	}

	var resp adviceResponse
	err := gout.POST(s.endpoint + "/v1/advice").
		SetHeader(gout.H{"Authorization": "Bearer " + s.apikey}).
		SetJSON(adviceRequest{Prompt: prompt, Product: productName}).
		BindJSON(&resp).
		SetTimeout(15 * time.Second).
		Do()
	if err != nil || strings.TrimSpace(resp.Answer) == "" {
		zap.L().Warn("advice request failed, serving canned answer", zap.Error(err))
		return s.canned(prompt)
	}
	return resp.Answer
}

type visualizeRequest struct {
	Image   string `json:"image"`
	Product string `json:"product,omitempty"`
	Style   string `json:"style"`
}

type visualizeResponse struct {
	Image string `json:"image"`
}

// Visualize renders the product into the customer's room photo. On any
// failure the original photo comes back unchanged.
func (s *Service) Visualize(ctx context.Context, photo []byte, productName, style string) []byte {
	if !s.flags.AIActive() || s.endpoint == "" {
		return photo
	}

	var resp visualizeResponse
	err := gout.POST(s.endpoint + "/v1/visualize").
		SetHeader(gout.H{"Authorization": "Bearer " + s.apikey}).
		SetJSON(visualizeRequest{
			Image:   base64.StdEncoding.EncodeToString(photo),
			Product: productName,
			Style:   style,
		}).
		BindJSON(&resp).
		SetTimeout(60 * time.Second).
		Do()
	if err != nil {
		zap.L().Warn("visualize request failed, returning original photo", zap.Error(err))
		return photo
	}
	out, derr := base64.StdEncoding.DecodeString(resp.Image)
	if derr != nil || len(out) == 0 {
		zap.L().Warn("visualize response undecodable, returning original photo", zap.Error(derr))
		return photo
	}
	return out
}

// canned picks a deterministic answer for the prompt so repeated
// questions get stable responses.
func (s *Service) canned(prompt string) string {
	var sum int
	for _, r := range prompt {
		sum += int(r)
	}
	return cannedAdvice[sum%len(cannedAdvice)]
}
