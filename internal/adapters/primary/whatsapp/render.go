package whatsapp

import (
	"fmt"
	"strings"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
)

// renderCards formats a batch of cards as one WhatsApp text block, one
// section per card, in batch order. Failed cards read the same as
// not-found cards.
func renderCards(cards []domain.ResultCard) string {
	var sb strings.Builder
	for i, card := range cards {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if card.State != domain.CardFound {
			sb.WriteString("_" + card.Title + "_")
			continue
		}

		sb.WriteString(fmt.Sprintf("*%s*\n%s", card.Title, card.URL))
		if card.Summary != "" {
			sb.WriteString("\n" + card.Summary)
		}
		if card.Thumbnail != "" {
			sb.WriteString("\n" + card.Thumbnail)
		}
	}
	return sb.String()
}
