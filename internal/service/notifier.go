package service

import (
	"context"
	"fmt"
	"time"

	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

const notifyTimeout = 15 * time.Second

// chatNotifier reports deposit progress to the chat that started it
type chatNotifier struct {
	messenger Messenger
	chat      string
	logger    *logger.Logger
}

func (n *chatNotifier) send(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := n.messenger.SendText(ctx, n.chat, text); err != nil {
		n.logger.Error("Failed to send deposit notification", "error", err)
	}
}

func (n *chatNotifier) DepositPending(req model.DepositRequest, handle model.PaymentHandle) {
	n.send(fmt.Sprintf("⏳ Paiement de %s initié via %s sur le %s.\nValidez la transaction sur votre téléphone avec votre code secret.\nRéf. %s",
		formatFCFA(req.Amount), req.PaymentMethod.Label(), req.PhoneNumber, handle.ExternalID))
}

func (n *chatNotifier) DepositSucceeded(req model.DepositRequest, handle model.PaymentHandle, balance *model.Balance, recent []model.Transaction) {
	text := fmt.Sprintf("✅ Dépôt de %s confirmé !", formatFCFA(req.Amount))
	if balance != nil {
		text += fmt.Sprintf("\nNouveau solde : *%s*", formatPoints(balance.Points))
	}
	if len(recent) > 0 {
		text += "\n\n" + formatTransactions(recent, 3)
	}
	n.send(text)
}

func (n *chatNotifier) DepositFailed(req model.DepositRequest, handle model.PaymentHandle) {
	n.send(fmt.Sprintf("❌ Le paiement de %s (réf. %s) a échoué ou a été refusé. Aucun montant n'a été débité.\nVous pouvez réessayer avec /depot.",
		formatFCFA(req.Amount), handle.ExternalID))
}

func (n *chatNotifier) DepositTimedOut(req model.DepositRequest, handle model.PaymentHandle) {
	n.send(fmt.Sprintf("⌛ Nous n'avons pas encore reçu la confirmation du paiement (réf. %s).\nS'il a été validé, votre solde sera crédité automatiquement : vérifiez avec /solde dans quelques minutes.",
		handle.ExternalID))
}
