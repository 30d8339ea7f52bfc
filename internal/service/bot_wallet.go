package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/transfer"
)

func (b *Bot) registerWalletCommands() {
	b.register(&command{
		name: "solde",
		help: "Voir mon solde",
		auth: true,
		run:  b.cmdBalance,
	}, "balance")

	b.register(&command{
		name: "historique",
		help: "Mes dernières transactions",
		auth: true,
		run:  b.cmdHistory,
	})

	b.register(&command{
		name:  "depot",
		usage: "/depot <montant> <momo|om> [téléphone]",
		help:  "Recharger mon solde par Mobile Money",
		auth:  true,
		run:   b.cmdDeposit,
	}, "dépôt", "recharger")

	b.register(&command{
		name: "annuler",
		help: "Arrêter le suivi du dépôt en cours",
		auth: true,
		run:  b.cmdCancelDeposit,
	})

	b.register(&command{
		name:  "transfert",
		usage: "/transfert <téléphone>",
		help:  "Choisir le destinataire d'un transfert de points",
		auth:  true,
		run:   b.cmdTransferRecipient,
	})

	b.register(&command{
		name:  "envoyer",
		usage: "/envoyer <points> <PIN>",
		help:  "Envoyer des points au destinataire choisi",
		auth:  true,
		run:   b.cmdTransferSubmit,
	})
}

func (b *Bot) cmdBalance(ctx context.Context, req *request) (string, error) {
	balance, err := b.api.Balance(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("💰 Votre solde : *%s*", formatPoints(balance.Points)), nil
}

func (b *Bot) cmdHistory(ctx context.Context, req *request) (string, error) {
	txs, err := b.api.Transactions(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return "📜 *Dernières transactions*\n" + formatTransactions(txs, historyLimit), nil
}

func (b *Bot) cmdDeposit(ctx context.Context, req *request) (string, error) {
	usage := &usageError{usage: b.commands["depot"].usage}
	if len(req.args) < 2 {
		return "", usage
	}

	amount, err := strconv.ParseInt(strings.ReplaceAll(req.args[0], ".", ""), 10, 64)
	if err != nil {
		return "", usage
	}

	method, err := deposit.ParseMethod(req.args[1])
	if err != nil {
		return "", err
	}

	phone := req.msg.From
	if len(req.args) > 2 {
		phone = strings.Join(req.args[2:], "")
	}

	if active := b.deposits.Registry().Active(req.chat); len(active) > 0 {
		return fmt.Sprintf("⏳ Un dépôt est déjà en cours de vérification (réf. %s).\nAttendez sa confirmation ou tapez /annuler pour arrêter le suivi.",
			active[0].Handle().ExternalID), nil
	}

	depositReq := model.DepositRequest{
		Amount:        amount,
		PaymentMethod: method,
		PhoneNumber:   deposit.NormalizePhone(phone),
	}

	notifier := &chatNotifier{messenger: b.messenger, chat: req.chat, logger: b.logger.WithChat(req.chat)}
	if _, err := b.deposits.Start(ctx, req.sess, depositReq, notifier); err != nil {
		return "", err
	}
	return "", nil
}

func (b *Bot) cmdCancelDeposit(ctx context.Context, req *request) (string, error) {
	if b.deposits.CancelChat(req.chat) == 0 {
		return "Aucun dépôt en cours de vérification.", nil
	}
	return "🛑 Suivi du dépôt arrêté. Si vous avez validé le paiement, il sera tout de même crédité : vérifiez avec /solde.", nil
}

// form returns the chat's transfer form, replacing it when the session token changed
func (b *Bot) form(req *request) *transfer.Form {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.forms[req.chat]
	if !ok || f.Token() != req.sess.Token {
		f = transfer.NewForm(b.api, req.sess.Token, b.logger.WithChat(req.chat))
		b.forms[req.chat] = f
	}
	return f
}

func (b *Bot) cmdTransferRecipient(ctx context.Context, req *request) (string, error) {
	if len(req.args) < 1 {
		return "", &usageError{usage: b.commands["transfert"].usage}
	}

	form := b.form(req)
	form.SetPhone(strings.Join(req.args, ""))

	recipient, err := form.Lookup(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("👤 Destinataire : *%s* (%s)\nEnvoyez les points avec /envoyer <points> <PIN>.", recipient.Name, recipient.Phone), nil
}

func (b *Bot) cmdTransferSubmit(ctx context.Context, req *request) (string, error) {
	if len(req.args) < 2 {
		return "", &usageError{usage: b.commands["envoyer"].usage}
	}

	points, err := strconv.ParseInt(req.args[0], 10, 64)
	if err != nil {
		return "", transfer.ErrInvalidTransfer
	}

	form := b.form(req)
	recipient := form.Recipient()

	result, balance, err := form.Submit(ctx, points, req.args[1])
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	delete(b.forms, req.chat)
	b.mu.Unlock()

	text := fmt.Sprintf("✅ %s envoyés à %s.\nRéf. %s", formatPoints(points), recipient.Name, result.TransactionID)
	if balance != nil {
		text += fmt.Sprintf("\nNouveau solde : %s", formatPoints(balance.Points))
	}
	return text, nil
}
