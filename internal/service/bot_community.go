package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"whatsapp-boost/internal/model"
)

const maxTicketsPerPurchase = 100

func (b *Bot) registerCommunityCommands() {
	b.register(&command{
		name: "parrainage",
		help: "Mon code et mes gains de parrainage",
		auth: true,
		run:  b.cmdReferral,
	})

	b.register(&command{
		name: "filleuls",
		help: "La liste de mes filleuls",
		auth: true,
		run:  b.cmdReferrals,
	})

	b.register(&command{
		name: "roue",
		help: "Le tirage en cours de la Grande Roue",
		auth: true,
		run:  b.cmdRound,
	})

	b.register(&command{
		name:  "ticket",
		usage: "/ticket <nombre>",
		help:  "Acheter des tickets pour la Grande Roue",
		auth:  true,
		run:   b.cmdBuyTickets,
	})

	b.register(&command{
		name: "mestickets",
		help: "Mes tickets de la Grande Roue",
		auth: true,
		run:  b.cmdMyTickets,
	})

	b.register(&command{
		name: "gagnants",
		help: "Les derniers tirages",
		auth: true,
		run:  b.cmdWinners,
	})

	b.register(&command{
		name:  "support",
		usage: "/support <sujet> | <message>",
		help:  "Contacter le support",
		auth:  true,
		run:   b.cmdSupport,
	})

	b.register(&command{
		name: "mesdemandes",
		help: "Suivre mes demandes au support",
		auth: true,
		run:  b.cmdSupportTickets,
	})
}

func (b *Bot) cmdReferral(ctx context.Context, req *request) (string, error) {
	info, err := b.api.Referral(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("🤝 *Parrainage*\n")
	fmt.Fprintf(&sb, "Votre code : *%s*\n", info.Code)
	if info.Link != "" {
		fmt.Fprintf(&sb, "Lien : %s\n", info.Link)
	}
	fmt.Fprintf(&sb, "Bonus par filleul : %s\n", formatPoints(info.BonusPoints))
	fmt.Fprintf(&sb, "Filleuls : %d\n", info.ReferralsCount)
	fmt.Fprintf(&sb, "Gains : %s", formatPoints(info.EarnedPoints))
	return sb.String(), nil
}

func (b *Bot) cmdReferrals(ctx context.Context, req *request) (string, error) {
	referrals, err := b.api.Referrals(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	if len(referrals) == 0 {
		return "Vous n'avez pas encore de filleul. Partagez votre code avec /parrainage.", nil
	}

	var sb strings.Builder
	sb.WriteString("👥 *Mes filleuls*\n")
	for _, r := range referrals {
		fmt.Fprintf(&sb, "• %s, inscrit le %s, %s gagnés\n", r.Name, formatDate(r.JoinedAt), formatPoints(r.Earned))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (b *Bot) cmdRound(ctx context.Context, req *request) (string, error) {
	round, err := b.api.CurrentRound(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	text := formatRound(round)
	if round.Status == model.RoundOpen {
		text += "\n\nParticipez avec /ticket <nombre>."
	}
	return text, nil
}

func (b *Bot) cmdBuyTickets(ctx context.Context, req *request) (string, error) {
	usage := &usageError{usage: b.commands["ticket"].usage}
	if len(req.args) < 1 {
		return "", usage
	}

	quantity, err := strconv.Atoi(req.args[0])
	if err != nil || quantity <= 0 || quantity > maxTicketsPerPurchase {
		return "", usage
	}

	round, err := b.api.CurrentRound(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	if round.Status != model.RoundOpen {
		return "Aucun tirage n'est ouvert pour le moment.", nil
	}

	tickets, err := b.api.BuyTickets(ctx, req.sess.Token, model.BuyTicketsRequest{
		RoundID:  round.ID,
		Quantity: quantity,
	})
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("🎟 %d ticket(s) acheté(s) pour %s.\n%s",
		len(tickets), formatPoints(round.TicketPrice*int64(len(tickets))), formatTickets(tickets))
	return text + b.balanceLine(ctx, req) + fmt.Sprintf("\nTirage le %s. Bonne chance !", formatDate(round.DrawAt)), nil
}

func (b *Bot) cmdMyTickets(ctx context.Context, req *request) (string, error) {
	tickets, err := b.api.MyTickets(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return "🎟 *Mes tickets*\n" + formatTickets(tickets), nil
}

func (b *Bot) cmdWinners(ctx context.Context, req *request) (string, error) {
	rounds, err := b.api.RoundHistory(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	if len(rounds) == 0 {
		return "Aucun tirage pour le moment.", nil
	}

	texts := make([]string, 0, len(rounds))
	for i := range rounds {
		texts = append(texts, formatRound(&rounds[i]))
	}
	return strings.Join(texts, "\n\n"), nil
}

func (b *Bot) cmdSupport(ctx context.Context, req *request) (string, error) {
	parts := splitPipe(req.args, 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", &usageError{usage: b.commands["support"].usage}
	}

	ticket, err := b.api.CreateTicket(ctx, req.sess.Token, model.CreateTicketRequest{
		Subject: parts[0],
		Message: parts[1],
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📨 Demande #%s envoyée. Suivez la réponse avec /mesdemandes.", ticket.ID), nil
}

func (b *Bot) cmdSupportTickets(ctx context.Context, req *request) (string, error) {
	tickets, err := b.api.Tickets(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return "📨 *Mes demandes*\n" + formatSupportTickets(tickets), nil
}
