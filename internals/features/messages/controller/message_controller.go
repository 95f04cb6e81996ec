// 📁 controller/message_controller.go
package controller

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"

	"momentoamor_backend/internals/configs"
	helper "momentoamor_backend/internals/helpers"
)

// MessageController generates a draft love message for the order form via
// an OpenAI-compatible chat completions endpoint. Disabled when no key is
// configured.
type MessageController struct {
	http     *resty.Client
	Validate *validator.Validate
}

func NewMessageController() *MessageController {
	return &MessageController{
		http: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
		Validate: validator.New(),
	}
}

type generateMessageRequest struct {
	PartnerName string `json:"nome_parceiro" validate:"required,min=1,max=120"`
	Tone        string `json:"tom" validate:"omitempty,oneof=romantico divertido poetico nostalgico"`
	Hints       string `json:"detalhes" validate:"omitempty,max=500"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// 🟢 GENERATE: POST /api/messages/generate
func (ctrl *MessageController) Generate(c *fiber.Ctx) error {
	if configs.AIGatewayKey == "" {
		return helper.Error(c, fiber.StatusServiceUnavailable, "Geração de mensagens indisponível")
	}

	var body generateMessageRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Requisição inválida")
	}
	if err := ctrl.Validate.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	tone := body.Tone
	if tone == "" {
		tone = "romantico"
	}
	prompt := fmt.Sprintf(
		"Escreva uma declaração de amor curta (até 400 caracteres) em português para %s, em tom %s.",
		body.PartnerName, tone)
	if body.Hints != "" {
		prompt += " Detalhes sobre o casal: " + body.Hints
	}

	var parsed chatCompletionResponse
	resp, err := ctrl.http.R().
		SetContext(c.Context()).
		SetAuthToken(configs.AIGatewayKey).
		SetBody(map[string]interface{}{
			"model": "gpt-4o-mini",
			"messages": []map[string]string{
				{"role": "system", "content": "Você escreve declarações de amor autênticas e emocionantes, nunca genéricas."},
				{"role": "user", "content": prompt},
			},
			"max_tokens":  300,
			"temperature": 0.9,
		}).
		SetResult(&parsed).
		Post(configs.AIGatewayURL)
	if err != nil || resp.IsError() {
		log.Printf("❌ message generation failed: %v (status=%d)", err, resp.StatusCode())
		return helper.Error(c, fiber.StatusBadGateway, "Não foi possível gerar a mensagem agora")
	}
	if len(parsed.Choices) == 0 {
		return helper.Error(c, fiber.StatusBadGateway, "Não foi possível gerar a mensagem agora")
	}

	return helper.Success(c, "OK", fiber.Map{
		"mensagem": strings.TrimSpace(parsed.Choices[0].Message.Content),
	})
}
