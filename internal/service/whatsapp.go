package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

// MessageHandler consumes incoming chat messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg model.IncomingMessage)
}

// WhatsAppService handles WhatsApp operations
type WhatsAppService struct {
	client      *whatsmeow.Client
	container   *sqlstore.Container
	logger      *logger.Logger
	handler     MessageHandler
	limiter     *rate.Limiter
	allowedJIDs map[string]bool
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(cfg *config.WhatsAppConfig, rl *config.RateLimitConfig, log *logger.Logger) (*WhatsAppService, error) {
	ctx := context.Background()

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	log.Info("Database directory ready", "path", dbDir)

	// Setup database for session storage
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", cfg.DBPath), waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	// Get first device or create new one
	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Noop)

	perSecond := rl.MaxMessagesPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	allowed := make(map[string]bool, len(cfg.AllowedJIDs))
	for _, jid := range cfg.AllowedJIDs {
		allowed[jid] = true
	}

	return &WhatsAppService{
		client:      client,
		container:   container,
		logger:      log,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), perSecond),
		allowedJIDs: allowed,
	}, nil
}

// SetMessageHandler sets the consumer of incoming messages
func (s *WhatsAppService) SetMessageHandler(handler MessageHandler) {
	s.handler = handler
}

// Connect connects to WhatsApp, pairing with a QR code on first run
func (s *WhatsAppService) Connect() error {
	if s.client.Store.ID == nil {
		s.logger.Info("No logged in session found, starting QR code pairing...")
		return s.connectWithQR()
	}

	s.logger.Info("Existing session found, connecting...")
	s.client.AddEventHandler(s.handleEvent)

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.logger.Info("WhatsApp client connected successfully")
	return nil
}

// connectWithQR renders pairing codes in the terminal until the device is linked
func (s *WhatsAppService) connectWithQR() error {
	qrChan, err := s.client.GetQRChannel(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}

	s.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.PairSuccess:
			s.logger.Info("Pairing successful", "jid", v.ID.String())
		case *events.LoggedOut:
			s.logger.Error("Device logged out", "reason", v.Reason)
		}
	})

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}

	qrCount := 0
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			qrCount++
			if qrCount == 1 {
				fmt.Println("\nScan this code in WhatsApp > Linked devices > Link a device:")
			} else {
				fmt.Printf("\nQR code refreshed (#%d)\n", qrCount)
			}
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			s.logger.Info("QR code displayed", "refresh_count", qrCount)
		case "success":
			s.logger.Info("Successfully logged in")
			s.client.AddEventHandler(s.handleEvent)
			return nil
		case "timeout":
			return fmt.Errorf("QR code scan timeout")
		default:
			if evt.Error != nil {
				return fmt.Errorf("QR code error: %w", evt.Error)
			}
			s.logger.Info("QR channel event", "event", evt.Event)
		}
	}

	if s.client.IsLoggedIn() {
		s.client.AddEventHandler(s.handleEvent)
		return nil
	}
	return fmt.Errorf("QR channel closed before login")
}

// Disconnect disconnects from WhatsApp
func (s *WhatsAppService) Disconnect() {
	s.client.Disconnect()
	s.logger.Info("WhatsApp client disconnected")
}

// IsConnected checks if client is connected
func (s *WhatsAppService) IsConnected() bool {
	return s.client.IsConnected()
}

// SendText sends a text message to a chat JID, respecting the outgoing rate limit
func (s *WhatsAppService) SendText(ctx context.Context, chat, text string) error {
	if !s.IsConnected() {
		return fmt.Errorf("WhatsApp client not connected")
	}

	to, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("invalid chat JID %q: %w", chat, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	message := &waE2E.Message{
		Conversation: proto.String(text),
	}

	if _, err := s.client.SendMessage(ctx, to, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// handleEvent handles WhatsApp events
func (s *WhatsAppService) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		s.handleIncomingMessage(v)
	case *events.Connected:
		s.logger.Info("WhatsApp client connected")
	case *events.Disconnected:
		s.logger.Warn("WhatsApp client disconnected")
	case *events.LoggedOut:
		s.logger.Error("Device logged out", "reason", v.Reason)
	}
}

// handleIncomingMessage turns private text messages into bot input
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Info.IsFromMe || evt.Info.IsGroup {
		return
	}
	if s.handler == nil {
		return
	}

	chat := evt.Info.Chat.String()
	if len(s.allowedJIDs) > 0 && !s.allowedJIDs[chat] {
		s.logger.Info("Message from non-allowed JID ignored", "jid", chat)
		return
	}

	text := evt.Message.GetConversation()
	if text == "" {
		text = evt.Message.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		return
	}

	msg := model.IncomingMessage{
		MessageID: string(evt.Info.ID),
		Chat:      chat,
		From:      evt.Info.Sender.User,
		FromName:  evt.Info.PushName,
		Text:      text,
		Timestamp: evt.Info.Timestamp,
	}

	// whatsmeow delivers events synchronously; commands may block on the backend.
	go s.handler.HandleMessage(context.Background(), msg)
}

// GetConnectionStatus returns connection status information
func (s *WhatsAppService) GetConnectionStatus() map[string]interface{} {
	status := map[string]interface{}{
		"connected": s.IsConnected(),
	}

	if s.client.Store.ID != nil {
		status["phone"] = s.client.Store.ID.User
		status["device"] = "whatsapp-boost"
	}

	return status
}

// GetJoinedGroups retrieves all groups that the bot is a member of
func (s *WhatsAppService) GetJoinedGroups(ctx context.Context) ([]*types.GroupInfo, error) {
	if !s.IsConnected() {
		return nil, fmt.Errorf("WhatsApp client not connected")
	}

	groups, err := s.client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get joined groups: %w", err)
	}

	return groups, nil
}
