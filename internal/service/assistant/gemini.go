package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"storefront/internal/domain"
)

const systemInstruction = `You are "Tokyo Service Bot", a futuristic and helpful AI assistant for the store %q.
The store sells digital goods like Amazon Prime, Valorant Points, V-Bucks, PlayStation cards, and more.

Your goal is to:
1. Help customers find products based on their interests (Gaming, Streaming, etc.).
2. Explain payment methods available in Egypt (Vodafone Cash, InstaPay, Fawry, Credit Card).
3. Be concise, friendly, and use emojis (🌸, 🎮, 💳).
4. If asked about prices, give approximate estimates in Egyptian Pounds (EGP).
5. Keep responses short (under 50 words) unless asked for details.
6. Suggest using the "Wishlist" if the customer is undecided.

LANGUAGE SUPPORT:
- If the user speaks English, reply in English.
- If the user speaks Arabic, reply in Arabic.

Tone: Cyberpunk, Friendly, Helpful.
%s`

// Gemini is the Backend backed by the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	instruction func() string
}

// Instruction renders the system prompt. catalogue is appended so the model
// can quote real prices.
func Instruction(storeName, catalogue string) string {
	extra := ""
	if catalogue != "" {
		extra = "\nCurrent catalogue:\n" + catalogue
	}
	return fmt.Sprintf(systemInstruction, storeName, extra)
}

// NewGemini builds a client for the given API key. instruction is evaluated
// for every new conversation so it reflects the live store.
func NewGemini(ctx context.Context, apiKey, model string, instruction func() string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if instruction == nil {
		return nil, fmt.Errorf("gemini instruction required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Gemini{
		client:      client,
		model:       model,
		instruction: instruction,
	}, nil
}

func (g *Gemini) CreateSession(ctx context.Context) (Conversation, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.instruction(), genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Catalogue lists products one per line with their lowest price, for the
// system instruction.
func Catalogue(products []domain.Product) string {
	var b strings.Builder
	for _, p := range products {
		price := p.BasePrice
		for _, o := range p.Options {
			if o.Price.LessThan(price) {
				price = o.Price
			}
		}
		fmt.Fprintf(&b, "- %s (%s): from %s %s", p.Name, p.Category, price.StringFixed(2), p.Currency)
		if !p.Available() {
			b.WriteString(", out of stock")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
