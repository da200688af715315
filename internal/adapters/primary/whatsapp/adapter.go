package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vibin/wikisearch-bot/config"
	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/core/services"
	"github.com/vibin/wikisearch-bot/internal/logger"
	"github.com/vibin/wikisearch-bot/internal/metrics"
)

// WhatsAppAdapter watches group messages for bracketed queries, posts the
// placeholder cards and edits them into final results once the search
// pipeline finishes. It implements the ports.ChatPort interface.
type WhatsAppAdapter struct {
	client        *whatsmeow.Client
	store         *store.Device
	storeDir      string
	resolver      *services.EndpointResolver
	assembler     *services.Assembler
	endpoints     ports.EndpointStorePort
	log           logger.Logger
	config        *config.WhatsAppConfig
	limiter       *rate.Limiter // Rate limiter for WhatsApp API calls
	processedMsgs sync.Map      // Track processed message IDs to prevent duplicates
}

// NewWhatsAppAdapter creates a new WhatsApp adapter
func NewWhatsAppAdapter(resolver *services.EndpointResolver, assembler *services.Assembler, endpoints ports.EndpointStorePort, cfg *config.Config, log logger.Logger) (*WhatsAppAdapter, error) {
	if _, err := os.Stat(cfg.WhatsApp.StoreDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.WhatsApp.StoreDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create WhatsApp store directory: %v", err)
		}
	}

	// 10 burst, 1 per second, respecting WhatsApp limits
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)

	return &WhatsAppAdapter{
		storeDir:  cfg.WhatsApp.StoreDir,
		resolver:  resolver,
		assembler: assembler,
		endpoints: endpoints,
		log:       log,
		config:    &cfg.WhatsApp,
		limiter:   limiter,
	}, nil
}

// Connect establishes the connection to WhatsApp
func (a *WhatsAppAdapter) Connect(ctx context.Context) error {
	dbLog := waLog.Stdout("Database", "INFO", true)
	container, err := sqlstore.New("sqlite3", fmt.Sprintf("file:%s/wikisearch.db?_foreign_keys=on", a.storeDir), dbLog)
	if err != nil {
		return fmt.Errorf("failed to initialize WhatsApp database: %v", err)
	}

	deviceStore, err := container.GetFirstDevice()
	if err != nil {
		return fmt.Errorf("failed to get device store: %v", err)
	}
	a.store = deviceStore

	clientLog := waLog.Stdout("Client", "INFO", true)
	a.client = whatsmeow.NewClient(deviceStore, clientLog)
	a.client.AddEventHandler(a.eventHandler)

	if a.client.Store.ID == nil {
		// No session found, need to pair and scan QR code
		qrChan, err := a.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("error getting QR channel: %v", err)
		}

		err = a.client.Connect()
		if err != nil {
			return fmt.Errorf("error connecting to WhatsApp: %v", err)
		}

		for evt := range qrChan {
			if evt.Event == "code" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				a.log.Info("Scan the QR code with your WhatsApp app")
			} else {
				a.log.Info("QR channel event", "event", evt.Event)
			}
		}
	} else {
		err = a.client.Connect()
		if err != nil {
			return fmt.Errorf("error connecting to WhatsApp: %v", err)
		}
		a.log.Info("Connected to WhatsApp")
	}

	return nil
}

// Disconnect closes the connection to WhatsApp
func (a *WhatsAppAdapter) Disconnect() error {
	if a.client != nil {
		a.client.Disconnect()
	}
	return nil
}

// IsConnected checks if the client is connected
func (a *WhatsAppAdapter) IsConnected() bool {
	return a.client != nil && a.client.IsConnected()
}

// Start starts listening for messages until the context is cancelled
func (a *WhatsAppAdapter) Start(ctx context.Context) error {
	a.log.Info("WhatsApp adapter is starting")

	if !a.IsConnected() {
		if err := a.Connect(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()
	a.log.Info("WhatsApp adapter stopping")
	return nil
}

// eventHandler handles WhatsApp events
func (a *WhatsAppAdapter) eventHandler(rawEvt interface{}) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		a.handleMessage(evt)
	case *events.GroupInfo:
		a.handleGroupInfo(evt)
	case *events.Connected:
		a.log.Info("WhatsApp connected")
	case *events.Disconnected:
		a.log.Info("WhatsApp disconnected")
	case *events.LoggedOut:
		a.log.Warn("WhatsApp logged out")
		if a.store != nil {
			if err := a.store.Delete(); err != nil {
				a.log.Error("Failed to delete device store on logout", "error", err)
			}
		}
	}
}

// handleMessage processes incoming WhatsApp messages
func (a *WhatsAppAdapter) handleMessage(evt *events.Message) {
	messageID := evt.Info.ID
	if messageID != "" {
		if _, alreadyProcessed := a.processedMsgs.LoadOrStore(messageID, true); alreadyProcessed {
			return
		}
	}

	// Never react to our own messages, including the cards we post
	if evt.Info.IsFromMe {
		return
	}

	if evt.Info.IsGroup && !a.isGroupAllowed(evt.Info.Chat.String()) {
		return
	}

	text := a.getMessageText(evt)
	if text == "" {
		return
	}

	tenant := tenantID(evt.Info)

	if strings.HasPrefix(text, a.config.CommandPrefix) {
		a.log.Info("Received admin command", "tenant", tenant, "command", text)
		go a.handleCommand(tenant, text, evt)
		return
	}

	queries := domain.ParseQueries(text)
	if len(queries) == 0 {
		return
	}

	a.log.Info("Received query message",
		"tenant", tenant,
		"chat", evt.Info.Chat.String(),
		"queries", len(queries))
	metrics.QueryMessagesTotal.Inc()

	go a.processQueries(tenant, queries, evt)
}

// processQueries posts the placeholder cards, runs the batch and edits the
// posted message with the final ordered results.
func (a *WhatsAppAdapter) processQueries(tenant string, queries []domain.QueryRequest, evt *events.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	log := a.log.WithField("tenant", tenant)

	if err := a.resolver.EnsureTenant(ctx, tenant); err != nil {
		// Resolution degrades to the global default, so keep going
		log.Error("Failed to seed tenant defaults", "error", err)
	}

	placeholders := a.assembler.Placeholders(queries)
	handle, err := a.postCards(ctx, evt.Info.Chat, placeholders)
	if err != nil {
		log.Error("Failed to post placeholder cards", "error", err)
		return
	}

	cards := a.assembler.Resolve(ctx, tenant, queries)

	if err := a.replaceCards(ctx, evt.Info.Chat, handle, cards); err != nil {
		log.Error("Failed to replace placeholder cards", "error", err)
	}
}

// postCards sends the rendered cards as a new message and returns its ID
// for the later edit.
func (a *WhatsAppAdapter) postCards(ctx context.Context, chat types.JID, cards []domain.ResultCard) (types.MessageID, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	msg := &waProto.Message{
		Conversation: proto.String(renderCards(cards)),
	}
	resp, err := a.client.SendMessage(ctx, chat, msg)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// replaceCards edits a previously posted message with the final cards.
func (a *WhatsAppAdapter) replaceCards(ctx context.Context, chat types.JID, handle types.MessageID, cards []domain.ResultCard) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	edited := &waProto.Message{
		Conversation: proto.String(renderCards(cards)),
	}
	_, err := a.client.SendMessage(ctx, chat, a.client.BuildEdit(chat, handle, edited))
	return err
}

// handleGroupInfo wipes a tenant's endpoint records when the bot is
// removed from the group behind it.
func (a *WhatsAppAdapter) handleGroupInfo(evt *events.GroupInfo) {
	if a.client == nil || a.client.Store.ID == nil {
		return
	}

	self := a.client.Store.ID.ToNonAD()
	for _, left := range evt.Leave {
		if left.User != self.User {
			continue
		}

		tenant := "g" + evt.JID.User
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := a.endpoints.DeleteTenant(ctx, tenant); err != nil {
			a.log.Error("Failed to delete tenant config", "tenant", tenant, "error", err)
		} else {
			a.log.Info("Deleted tenant config after leaving group", "tenant", tenant)
		}
		cancel()
		return
	}
}

// isGroupAllowed checks if the group is in the allowed list
func (a *WhatsAppAdapter) isGroupAllowed(groupJID string) bool {
	if len(a.config.AllowedGroups) == 0 {
		return false
	}

	for _, allowed := range a.config.AllowedGroups {
		if allowed == "*" {
			return true
		}
	}

	for _, allowed := range a.config.AllowedGroups {
		if strings.Contains(groupJID, allowed) {
			return true
		}
	}

	return false
}

// getMessageText extracts text from the message
func (a *WhatsAppAdapter) getMessageText(evt *events.Message) string {
	if evt.Message.GetConversation() != "" {
		return evt.Message.GetConversation()
	}

	if evt.Message.GetExtendedTextMessage() != nil {
		return evt.Message.GetExtendedTextMessage().GetText()
	}

	return ""
}

// sendReply sends a quoted reply to the message, respecting rate limits
func (a *WhatsAppAdapter) sendReply(ctx context.Context, evt *events.Message, response string) {
	if a.client == nil || !a.client.IsConnected() {
		a.log.Error("WhatsApp client not connected")
		return
	}

	if err := a.limiter.Wait(ctx); err != nil {
		a.log.Error("Rate limiter error", "error", err)
		return
	}

	msg := &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text: proto.String(response),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:    proto.String(evt.Info.ID),
				Participant: proto.String(evt.Info.Sender.String()),
				QuotedMessage: &waProto.Message{
					Conversation: proto.String(evt.Message.GetConversation()),
				},
			},
		},
	}

	if _, err := a.client.SendMessage(ctx, evt.Info.Chat, msg); err != nil {
		a.log.Error("Failed to send WhatsApp reply", "error", err)
	}
}

// tenantID derives the endpoint-config scope from the message origin.
// Direct chats share the default tenant.
func tenantID(info types.MessageInfo) string {
	if info.IsGroup {
		return "g" + info.Chat.User
	}
	return domain.DefaultTenant
}
