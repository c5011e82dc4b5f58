package generation

import (
	"fmt"
	"strings"

	"listing-writer/internal/domain"
)

const continueInstruction = "Continue exactly where you left off. Do not repeat. " +
	"Finish the markdown with a short CTA and a complete sentence."

// baseMessages builds the system prompt and the product message. The slice is
// shared by every call of one generation and must not be modified.
func baseMessages(req domain.GenerationRequest) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildSystemPrompt()},
		{Role: domain.RoleUser, Content: buildProductPrompt(req)},
	}
}

// continuationMessages extends base with the text generated so far and the
// instruction to keep going. base is copied, never appended to in place.
func continuationMessages(base []domain.ChatMessage, working string) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(base)+2)
	out = append(out, base...)
	return append(out,
		domain.ChatMessage{Role: domain.RoleAssistant, Content: working},
		domain.ChatMessage{Role: domain.RoleUser, Content: continueInstruction},
	)
}

func buildSystemPrompt() string {
	return strings.Join([]string{
		"You are an expert Etsy copywriter + SEO assistant.",
		"Goal: produce a high-converting Etsy product description in clean Markdown.",
		"The user provides: product name, product details, and target SEO keywords.",
		"",
		"SEO rules (must follow):",
		seoRules(),
		"",
		"Style rules:",
		styleRules(),
		"",
		"Required output structure (Markdown only):",
		outputStructure(),
		"",
		"Only respond with Markdown (no commentary).",
	}, "\n")
}

func seoRules() string {
	return strings.Join([]string{
		"- Use the PRIMARY keyword phrase early (within the first 2 sentences).",
		"- Include 3–8 keywords/variants naturally across the text (no stuffing, no keyword lists).",
		"- Prefer buyer-intent language (gift, personalized, handmade, size, material, occasion) when applicable.",
		"- Add scannable structure with short sections and bullet points.",
	}, "\n")
}

func styleRules() string {
	return strings.Join([]string{
		"- Minimal emojis: 0–2 total, only if they genuinely fit; never put emojis on every bullet.",
		"- Clear, warm, confident tone. Avoid hype and ALL CAPS.",
		"- Always finish the description and end with a complete sentence.",
	}, "\n")
}

func outputStructure() string {
	return strings.Join([]string{
		"1) **Hook** (1–2 lines, includes primary keyword)",
		"2) Short paragraph (2–4 sentences) explaining what it is + who it’s for",
		"3) ### Key features (bullets)",
		"4) ### Materials & care (bullets) if mentioned in the product details; if missing don't mention them",
		"5) ### Size / personalization (bullets) if mentioned in the product details; if missing don't mention them",
		"6) ### Perfect for (bullets)",
		"7) **CTA** (1 line)",
	}, "\n")
}

func buildProductPrompt(req domain.GenerationRequest) string {
	return fmt.Sprintf(
		"Product Name: %s\nProduct Details: %s\nTarget Keywords: %s",
		req.ProductName,
		req.ProductDetails,
		req.Keywords,
	)
}
