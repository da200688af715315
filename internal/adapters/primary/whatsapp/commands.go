package whatsapp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mau.fi/whatsmeow/types/events"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
)

// In-chat endpoint administration:
//
//	!endpoint set <alias> <url>
//	!endpoint delete <alias>
//	!endpoint list

// handleCommand runs one admin command and replies with the outcome.
func (a *WhatsAppAdapter) handleCommand(tenant, text string, evt *events.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.resolver.EnsureTenant(ctx, tenant); err != nil {
		a.log.Error("Failed to seed tenant defaults", "tenant", tenant, "error", err)
	}

	a.sendReply(ctx, evt, a.runCommand(ctx, tenant, text))
}

// runCommand parses and executes one admin command, returning the reply text.
func (a *WhatsAppAdapter) runCommand(ctx context.Context, tenant, text string) string {
	usage := fmt.Sprintf("Usage: %[1]s set <alias> <url> | %[1]s delete <alias> | %[1]s list", a.config.CommandPrefix)

	fields := strings.Fields(strings.TrimPrefix(text, a.config.CommandPrefix))
	if len(fields) == 0 {
		return usage
	}

	switch fields[0] {
	case "set":
		if len(fields) != 3 {
			return usage
		}
		alias, endpoint := fields[1], fields[2]
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Sprintf("%s doesn't look like a valid URL", endpoint)
		}
		if err := a.endpoints.Upsert(ctx, tenant, alias, endpoint); err != nil {
			a.log.Error("Failed to set endpoint", "tenant", tenant, "alias", alias, "error", err)
			return "An error occurred while saving the endpoint"
		}
		return fmt.Sprintf("Set alias %s as endpoint %s", alias, endpoint)

	case "delete":
		if len(fields) != 2 {
			return usage
		}
		alias := fields[1]
		if alias == domain.DefaultAlias {
			return "Can't delete the default endpoint"
		}
		if err := a.endpoints.Delete(ctx, tenant, alias); err != nil {
			a.log.Error("Failed to delete endpoint", "tenant", tenant, "alias", alias, "error", err)
			return "An error occurred while deleting the endpoint"
		}
		return fmt.Sprintf("Deleted alias %s", alias)

	case "list":
		records, err := a.endpoints.ListByTenant(ctx, tenant)
		if err != nil {
			a.log.Error("Failed to list endpoints", "tenant", tenant, "error", err)
			return "An error occurred while listing the endpoints"
		}
		lines := []string{"```"}
		for _, rec := range records {
			lines = append(lines, rec.Alias+" | "+rec.Endpoint)
		}
		lines = append(lines, "```")
		return strings.Join(lines, "\n")
	}

	return "Command not recognized"
}
