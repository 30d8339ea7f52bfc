package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/metrics"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/session"
	"whatsapp-boost/internal/transfer"
	"whatsapp-boost/pkg/logger"
)

const (
	commandTimeout = 30 * time.Second
	historyLimit   = 10
)

// Messenger delivers text to a chat
type Messenger interface {
	SendText(ctx context.Context, chat, text string) error
}

// usageError is returned by a command called with bad arguments
type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "usage: " + e.usage
}

type request struct {
	msg  model.IncomingMessage
	chat string
	args []string
	sess *session.Session
}

type command struct {
	name  string
	usage string
	help  string
	auth  bool
	admin bool
	run   func(ctx context.Context, req *request) (string, error)
}

// Bot turns chat commands into backend calls, one session per chat
type Bot struct {
	messenger Messenger
	api       *api.Client
	sessions  *session.Manager
	deposits  *deposit.Flow
	catalog   *CatalogService
	logger    *logger.Logger

	commands map[string]*command
	order    []*command

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	forms map[string]*transfer.Form
}

// NewBot creates the chat command router
func NewBot(messenger Messenger, client *api.Client, sessions *session.Manager, deposits *deposit.Flow, catalog *CatalogService, log *logger.Logger) *Bot {
	b := &Bot{
		messenger: messenger,
		api:       client,
		sessions:  sessions,
		deposits:  deposits,
		catalog:   catalog,
		logger:    log,
		commands:  make(map[string]*command),
		locks:     make(map[string]*sync.Mutex),
		forms:     make(map[string]*transfer.Form),
	}
	b.registerAccountCommands()
	b.registerWalletCommands()
	b.registerCatalogCommands()
	b.registerCommunityCommands()
	b.registerAdminCommands()
	return b
}

func (b *Bot) register(cmd *command, aliases ...string) {
	b.order = append(b.order, cmd)
	b.commands[cmd.name] = cmd
	for _, alias := range aliases {
		b.commands[alias] = cmd
	}
}

// ForgetChat drops per-chat state once the chat's session ends
func (b *Bot) ForgetChat(chat string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.forms, chat)
}

func (b *Bot) chatLock(chat string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[chat]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[chat] = lock
	}
	return lock
}

// HandleMessage runs one command. Commands of the same chat run one at a time.
func (b *Bot) HandleMessage(ctx context.Context, msg model.IncomingMessage) {
	name, args := msg.Command()
	if name == "" {
		b.reply(ctx, msg.Chat, "👋 Bienvenue ! Tapez /aide pour voir les commandes disponibles.")
		return
	}

	cmd, ok := b.commands[name]
	if !ok {
		metrics.RecordCommand("unknown")
		b.reply(ctx, msg.Chat, fmt.Sprintf("Commande inconnue : /%s\nTapez /aide pour la liste des commandes.", name))
		return
	}
	metrics.RecordCommand(cmd.name)

	lock := b.chatLock(msg.Chat)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	req := &request{msg: msg, chat: msg.Chat, args: args}

	if cmd.auth || cmd.admin {
		sess, err := b.sessions.Current(msg.Chat)
		if err != nil {
			b.replyError(ctx, req, err)
			return
		}
		if cmd.admin && !sess.IsAdmin() {
			b.reply(ctx, msg.Chat, "⛔ Cette commande est réservée aux administrateurs.")
			return
		}
		req.sess = sess
	}

	text, err := cmd.run(ctx, req)
	if err != nil {
		b.replyError(ctx, req, err)
		return
	}
	if text != "" {
		b.reply(ctx, msg.Chat, text)
	}
}

func (b *Bot) reply(ctx context.Context, chat, text string) {
	if err := b.messenger.SendText(ctx, chat, text); err != nil {
		b.logger.WithChat(chat).Error("Failed to send reply", "error", err)
	}
}

// replyError turns a command failure into a user-facing message
func (b *Bot) replyError(ctx context.Context, req *request, err error) {
	var usage *usageError
	chat := req.chat

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		if req.sess != nil {
			b.sessions.TeardownToken(chat, req.sess.Token)
		}
		b.reply(ctx, chat, "🔒 Votre session a expiré. Reconnectez-vous avec /connexion <téléphone> <mot de passe>.")
	case errors.Is(err, session.ErrNotLoggedIn):
		b.reply(ctx, chat, "🔒 Vous n'êtes pas connecté.\nConnectez-vous avec /connexion <téléphone> <mot de passe> ou créez un compte avec /inscription.")
	case errors.As(err, &usage):
		b.reply(ctx, chat, "Utilisation : "+usage.usage)
	case errors.Is(err, deposit.ErrAmountTooLow):
		b.reply(ctx, chat, fmt.Sprintf("❌ Le montant minimum de dépôt est de %s.", formatFCFA(b.deposits.Validator().MinAmount())))
	case errors.Is(err, deposit.ErrInvalidMethod):
		b.reply(ctx, chat, "❌ Moyen de paiement inconnu. Utilisez momo (MTN Mobile Money) ou om (Orange Money).")
	case errors.Is(err, deposit.ErrInvalidPhone):
		b.reply(ctx, chat, "❌ Numéro invalide pour ce moyen de paiement. Format attendu : 2376XXXXXXXX (MTN pour momo, Orange pour om).")
	case errors.Is(err, transfer.ErrRecipientNotFound):
		b.reply(ctx, chat, "❌ Aucun compte ne correspond à ce numéro.")
	case errors.Is(err, transfer.ErrRecipientNotResolved):
		b.reply(ctx, chat, "Indiquez d'abord le destinataire avec /transfert <téléphone>.")
	case errors.Is(err, transfer.ErrInvalidTransfer):
		b.reply(ctx, chat, "❌ Le nombre de points doit être positif et le code PIN doit contenir 4 chiffres.")
	case errors.Is(err, ErrServiceNotFound):
		b.reply(ctx, chat, "❌ Service introuvable. Consultez la liste avec /services.")
	case api.Message(err) != "":
		b.reply(ctx, chat, "❌ "+api.Message(err))
	case errors.Is(err, deposit.ErrInitiationRejected):
		b.reply(ctx, chat, "❌ Le paiement n'a pas pu être initié. Réessayez plus tard.")
	default:
		b.logger.WithChat(chat).WithError(err).Error("Command failed")
		b.reply(ctx, chat, "⚠️ Service momentanément indisponible. Réessayez dans quelques instants.")
	}
}

func (b *Bot) registerAccountCommands() {
	b.register(&command{
		name: "aide",
		help: "Afficher cette aide",
		run:  b.cmdHelp,
	}, "help", "menu", "start")

	b.register(&command{
		name:  "inscription",
		usage: "/inscription <téléphone> <mot de passe> [code parrain]",
		help:  "Créer un compte",
		run:   b.cmdRegister,
	})

	b.register(&command{
		name:  "connexion",
		usage: "/connexion <téléphone> <mot de passe>",
		help:  "Se connecter",
		run:   b.cmdLogin,
	}, "login")

	b.register(&command{
		name: "deconnexion",
		help: "Se déconnecter",
		auth: true,
		run:  b.cmdLogout,
	}, "logout")

	b.register(&command{
		name: "moi",
		help: "Voir mon profil",
		auth: true,
		run:  b.cmdProfile,
	}, "profil")
}

func (b *Bot) cmdHelp(ctx context.Context, req *request) (string, error) {
	sess, _ := b.sessions.Current(req.chat)

	var sb strings.Builder
	sb.WriteString("📖 *Commandes disponibles*\n")
	for _, cmd := range b.order {
		if cmd.admin {
			continue
		}
		line := cmd.usage
		if line == "" {
			line = "/" + cmd.name
		}
		fmt.Fprintf(&sb, "\n%s\n  %s", line, cmd.help)
	}

	if sess != nil && sess.IsAdmin() {
		sb.WriteString("\n\n🛠 *Administration*\n/admin pour la liste des sous-commandes")
	}
	if sess == nil {
		sb.WriteString("\n\nVous n'êtes pas connecté.")
	} else {
		fmt.Fprintf(&sb, "\n\nConnecté en tant que %s.", sess.UserName)
	}
	return sb.String(), nil
}

func (b *Bot) cmdRegister(ctx context.Context, req *request) (string, error) {
	if len(req.args) < 2 {
		return "", &usageError{usage: b.commands["inscription"].usage}
	}

	name := strings.TrimSpace(req.msg.FromName)
	phone := deposit.NormalizePhone(req.args[0])
	if name == "" {
		name = phone
	}

	register := model.RegisterRequest{
		Name:     name,
		Phone:    phone,
		Password: req.args[1],
	}
	if len(req.args) > 2 {
		register.ReferralCode = strings.ToUpper(req.args[2])
	}

	sess, err := b.sessions.Register(ctx, req.chat, register)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎉 Bienvenue %s ! Votre compte est créé et vous êtes connecté.\nAlimentez votre solde avec /depot <montant> <momo|om>.", sess.UserName), nil
}

func (b *Bot) cmdLogin(ctx context.Context, req *request) (string, error) {
	if len(req.args) < 2 {
		return "", &usageError{usage: b.commands["connexion"].usage}
	}

	sess, err := b.sessions.Login(ctx, req.chat, deposit.NormalizePhone(req.args[0]), req.args[1])
	if errors.Is(err, api.ErrUnauthorized) {
		return "❌ Téléphone ou mot de passe incorrect.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Bonjour %s, vous êtes connecté.\nPensez à supprimer le message contenant votre mot de passe.", sess.UserName), nil
}

func (b *Bot) cmdLogout(ctx context.Context, req *request) (string, error) {
	if err := b.sessions.Logout(ctx, req.chat); err != nil {
		return "", err
	}
	return "👋 Vous êtes déconnecté.", nil
}

func (b *Bot) cmdProfile(ctx context.Context, req *request) (string, error) {
	_, user, err := b.sessions.Refresh(ctx, req.chat)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 *%s*\n", user.Name)
	fmt.Fprintf(&sb, "Téléphone : %s\n", user.Phone)
	fmt.Fprintf(&sb, "Solde : %s\n", formatPoints(user.Points))
	if user.ReferralCode != "" {
		fmt.Fprintf(&sb, "Code parrain : %s\n", user.ReferralCode)
	}
	fmt.Fprintf(&sb, "Membre depuis le %s", formatDate(user.CreatedAt))
	if user.IsAdmin() {
		sb.WriteString("\nRôle : administrateur")
	}
	return sb.String(), nil
}

// sortedKeys is used by the admin help listing
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
