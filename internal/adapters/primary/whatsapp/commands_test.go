package whatsapp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/types"

	"github.com/vibin/wikisearch-bot/config"
	"github.com/vibin/wikisearch-bot/internal/adapters/secondary/database"
	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/core/services"
	"github.com/vibin/wikisearch-bot/internal/logger"
)

func newCommandAdapter(t *testing.T) (*WhatsAppAdapter, *database.EndpointDatabase) {
	t.Helper()

	db, err := database.NewEndpointDatabase(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	log := logger.New(slog.LevelError, io.Discard)
	resolver := services.NewEndpointResolver(db, cfg.Search.GlobalDefaultEndpoint, log)
	require.NoError(t, resolver.EnsureTenant(context.Background(), "g1"))

	adapter := &WhatsAppAdapter{
		resolver:  resolver,
		endpoints: db,
		log:       log,
		config:    &cfg.WhatsApp,
	}
	return adapter, db
}

func TestRunCommand_Set(t *testing.T) {
	adapter, db := newCommandAdapter(t)
	ctx := context.Background()

	reply := adapter.runCommand(ctx, "g1", "!endpoint set wiki https://wiki.example.org/w/api.php")
	assert.Equal(t, "Set alias wiki as endpoint https://wiki.example.org/w/api.php", reply)

	endpoint, err := db.Get(ctx, "g1", "wiki")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org/w/api.php", endpoint)
}

func TestRunCommand_SetRejectsBadURL(t *testing.T) {
	adapter, db := newCommandAdapter(t)
	ctx := context.Background()

	reply := adapter.runCommand(ctx, "g1", "!endpoint set wiki not-a-url")
	assert.Contains(t, reply, "valid URL")

	_, err := db.Get(ctx, "g1", "wiki")
	assert.ErrorIs(t, err, ports.ErrEndpointNotFound)
}

func TestRunCommand_Delete(t *testing.T) {
	adapter, db := newCommandAdapter(t)
	ctx := context.Background()

	reply := adapter.runCommand(ctx, "g1", "!endpoint delete de")
	assert.Equal(t, "Deleted alias de", reply)

	_, err := db.Get(ctx, "g1", "de")
	assert.ErrorIs(t, err, ports.ErrEndpointNotFound)
}

func TestRunCommand_DefaultIsProtected(t *testing.T) {
	adapter, db := newCommandAdapter(t)
	ctx := context.Background()

	reply := adapter.runCommand(ctx, "g1", "!endpoint delete default")
	assert.Equal(t, "Can't delete the default endpoint", reply)

	_, err := db.Get(ctx, "g1", domain.DefaultAlias)
	assert.NoError(t, err)
}

func TestRunCommand_List(t *testing.T) {
	adapter, _ := newCommandAdapter(t)

	reply := adapter.runCommand(context.Background(), "g1", "!endpoint list")
	assert.Contains(t, reply, "```")
	assert.Contains(t, reply, "default | https://en.wikipedia.org/w/api.php")
	assert.Contains(t, reply, "de | https://de.wikipedia.org/w/api.php")
}

func TestRunCommand_Unrecognized(t *testing.T) {
	adapter, _ := newCommandAdapter(t)

	assert.Equal(t, "Command not recognized", adapter.runCommand(context.Background(), "g1", "!endpoint frobnicate"))
	assert.Contains(t, adapter.runCommand(context.Background(), "g1", "!endpoint"), "Usage:")
	assert.Contains(t, adapter.runCommand(context.Background(), "g1", "!endpoint set wiki"), "Usage:")
}

func TestRenderCards(t *testing.T) {
	text := renderCards([]domain.ResultCard{
		{
			Title:     "Rust (programming language)",
			URL:       "https://en.wikipedia.org/wiki/Rust_(programming_language)",
			Summary:   "Rust is a general-purpose programming language.",
			Thumbnail: "https://upload.wikimedia.org/rust-logo.png",
			State:     domain.CardFound,
		},
		domain.NewNotFoundCard("qqqzzz"),
	})

	assert.Contains(t, text, "*Rust (programming language)*")
	assert.Contains(t, text, "https://en.wikipedia.org/wiki/Rust_(programming_language)")
	assert.Contains(t, text, "_No results found for qqqzzz_")
}

func TestTenantID(t *testing.T) {
	direct := types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat: types.NewJID("15551234567", types.DefaultUserServer),
		},
	}
	assert.Equal(t, domain.DefaultTenant, tenantID(direct))

	group := types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:    types.NewJID("120363041234567890", types.GroupServer),
			IsGroup: true,
		},
	}
	assert.Equal(t, "g120363041234567890", tenantID(group))
}
