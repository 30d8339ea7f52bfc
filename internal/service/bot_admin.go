package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"whatsapp-boost/internal/model"
)

type adminCommand struct {
	usage string
	help  string
	run   func(ctx context.Context, req *request, args []string) (string, error)
}

func (b *Bot) registerAdminCommands() {
	b.register(&command{
		name:  "admin",
		usage: "/admin <commande> [arguments]",
		help:  "Console d'administration",
		admin: true,
		run:   b.cmdAdmin,
	})
}

func (b *Bot) adminCommands() map[string]adminCommand {
	return map[string]adminCommand{
		"stats":        {"stats", "Tableau de bord", b.adminStats},
		"commandes":    {"commandes [statut]", "Lister les commandes", b.adminOrders},
		"statut":       {"statut <id commande> <statut>", "Changer le statut d'une commande", b.adminOrderStatus},
		"utilisateurs": {"utilisateurs [recherche]", "Rechercher des comptes", b.adminUsers},
		"points":       {"points <id utilisateur> <points> [raison]", "Créditer ou débiter un compte", b.adminPoints},
		"bloquer":      {"bloquer <id utilisateur>", "Bloquer un compte", b.adminBlock(true)},
		"debloquer":    {"debloquer <id utilisateur>", "Débloquer un compte", b.adminBlock(false)},
		"service":      {"service <plateforme> | <nom> | <type> | <prix> | <unité> | <min> | <max>", "Créer un service", b.adminCreateService},
		"activer":      {"activer <id service>", "Activer un service", b.adminToggleService(true)},
		"desactiver":   {"desactiver <id service>", "Désactiver un service", b.adminToggleService(false)},
		"prix":         {"prix <id service> <prix>", "Changer le prix d'un service", b.adminServicePrice},
		"tirage":       {"tirage", "Lancer le tirage de la Grande Roue", b.adminDraw},
		"demandes":     {"demandes [statut]", "Lister les demandes au support", b.adminTickets},
		"repondre":     {"repondre <id demande> <message>", "Répondre à une demande", b.adminReply},
		"reglages":     {"reglages", "Voir les réglages", b.adminSettings},
		"reglage":      {"reglage <clé> <valeur>", "Modifier un réglage", b.adminUpdateSetting},
	}
}

func (b *Bot) cmdAdmin(ctx context.Context, req *request) (string, error) {
	commands := b.adminCommands()

	if len(req.args) == 0 {
		var sb strings.Builder
		sb.WriteString("🛠 *Administration*\n")
		for _, name := range sortedKeys(commands) {
			fmt.Fprintf(&sb, "\n/admin %s\n  %s", commands[name].usage, commands[name].help)
		}
		return sb.String(), nil
	}

	sub, ok := commands[strings.ToLower(req.args[0])]
	if !ok {
		return fmt.Sprintf("Sous-commande inconnue : %s. Tapez /admin pour la liste.", req.args[0]), nil
	}

	b.logger.WithChat(req.chat).Info("Admin command", "user_id", req.sess.UserID, "command", req.args[0])

	text, err := sub.run(ctx, req, req.args[1:])
	if err != nil {
		if _, isUsage := err.(*usageError); isUsage {
			return "", &usageError{usage: "/admin " + sub.usage}
		}
		return "", err
	}
	return text, nil
}

func (b *Bot) adminStats(ctx context.Context, req *request, args []string) (string, error) {
	stats, err := b.api.AdminStats(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📊 *Tableau de bord*\nUtilisateurs : %s\nCommandes : %s (dont %s en attente)\nDépôts du jour : %s\nDemandes ouvertes : %s",
		groupThousands(stats.Users), groupThousands(stats.OrdersTotal), groupThousands(stats.OrdersPending),
		formatFCFA(stats.DepositsToday), groupThousands(stats.OpenTickets)), nil
}

func (b *Bot) adminOrders(ctx context.Context, req *request, args []string) (string, error) {
	var status model.OrderStatus
	if len(args) > 0 {
		status = model.OrderStatus(strings.ToLower(args[0]))
		if !status.Valid() {
			return "", &usageError{}
		}
	}

	orders, err := b.api.AdminOrders(ctx, req.sess.Token, status)
	if err != nil {
		return "", err
	}
	return "📦 *Commandes*\n" + formatOrders(orders), nil
}

func (b *Bot) adminOrderStatus(ctx context.Context, req *request, args []string) (string, error) {
	if len(args) < 2 {
		return "", &usageError{}
	}
	status := model.OrderStatus(strings.ToLower(args[1]))
	if !status.Valid() {
		return "Statuts possibles : pending, processing, completed, cancelled, refunded.", nil
	}

	order, err := b.api.SetOrderStatus(ctx, req.sess.Token, args[0], status)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Commande #%s : %s", order.ID, orderStatusLabel(order.Status)), nil
}

func (b *Bot) adminUsers(ctx context.Context, req *request, args []string) (string, error) {
	users, err := b.api.AdminUsers(ctx, req.sess.Token, strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "Aucun compte trouvé.", nil
	}

	var sb strings.Builder
	for _, u := range users {
		fmt.Fprintf(&sb, "• [%s] %s (%s), %s", u.ID, u.Name, u.Phone, formatPoints(u.Points))
		if u.IsAdmin() {
			sb.WriteString(", admin")
		}
		if u.Blocked {
			sb.WriteString(", bloqué")
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (b *Bot) adminPoints(ctx context.Context, req *request, args []string) (string, error) {
	if len(args) < 2 {
		return "", &usageError{}
	}
	points, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || points == 0 {
		return "", &usageError{}
	}

	reason := strings.Join(args[2:], " ")
	if reason == "" {
		reason = "Ajustement administrateur"
	}

	user, err := b.api.AdjustPoints(ctx, req.sess.Token, args[0], model.PointsAdjustment{Points: points, Reason: reason})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Solde de %s : %s", user.Name, formatPoints(user.Points)), nil
}

func (b *Bot) adminBlock(blocked bool) func(ctx context.Context, req *request, args []string) (string, error) {
	return func(ctx context.Context, req *request, args []string) (string, error) {
		if len(args) < 1 {
			return "", &usageError{}
		}
		user, err := b.api.SetUserBlocked(ctx, req.sess.Token, args[0], blocked)
		if err != nil {
			return "", err
		}
		if user.Blocked {
			return fmt.Sprintf("🚫 %s est bloqué.", user.Name), nil
		}
		return fmt.Sprintf("✅ %s est débloqué.", user.Name), nil
	}
}

func (b *Bot) adminCreateService(ctx context.Context, req *request, args []string) (string, error) {
	parts := splitPipe(args, 7)
	if len(parts) < 7 {
		return "", &usageError{}
	}

	numbers := make([]int64, 4)
	for i, raw := range parts[3:] {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return "", &usageError{}
		}
		numbers[i] = n
	}

	svc, err := b.api.CreateService(ctx, req.sess.Token, model.Service{
		Platform:     strings.ToLower(parts[0]),
		Name:         parts[1],
		Kind:         parts[2],
		PricePerUnit: numbers[0],
		UnitSize:     numbers[1],
		MinQuantity:  numbers[2],
		MaxQuantity:  numbers[3],
		Active:       true,
	})
	if err != nil {
		return "", err
	}
	b.catalog.Invalidate()
	return fmt.Sprintf("✅ Service [%s] %s créé.", svc.ID, svc.Name), nil
}

func (b *Bot) adminToggleService(active bool) func(ctx context.Context, req *request, args []string) (string, error) {
	return func(ctx context.Context, req *request, args []string) (string, error) {
		if len(args) < 1 {
			return "", &usageError{}
		}
		svc, err := b.api.UpdateService(ctx, req.sess.Token, args[0], model.ServiceUpdate{Active: &active})
		if err != nil {
			return "", err
		}
		b.catalog.Invalidate()
		if svc.Active {
			return fmt.Sprintf("✅ Service [%s] %s activé.", svc.ID, svc.Name), nil
		}
		return fmt.Sprintf("⏸ Service [%s] %s désactivé.", svc.ID, svc.Name), nil
	}
}

func (b *Bot) adminServicePrice(ctx context.Context, req *request, args []string) (string, error) {
	if len(args) < 2 {
		return "", &usageError{}
	}
	price, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || price <= 0 {
		return "", &usageError{}
	}

	svc, err := b.api.UpdateService(ctx, req.sess.Token, args[0], model.ServiceUpdate{Price: &price})
	if err != nil {
		return "", err
	}
	b.catalog.Invalidate()
	return fmt.Sprintf("✅ %s : %s par unité.", svc.Name, formatPoints(svc.PricePerUnit)), nil
}

func (b *Bot) adminDraw(ctx context.Context, req *request, args []string) (string, error) {
	round, err := b.api.DrawRound(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return formatRound(round), nil
}

func (b *Bot) adminTickets(ctx context.Context, req *request, args []string) (string, error) {
	var status model.TicketStatus
	if len(args) > 0 {
		status = model.TicketStatus(strings.ToLower(args[0]))
	}
	tickets, err := b.api.AdminTickets(ctx, req.sess.Token, status)
	if err != nil {
		return "", err
	}
	return "📨 *Demandes*\n" + formatSupportTickets(tickets), nil
}

func (b *Bot) adminReply(ctx context.Context, req *request, args []string) (string, error) {
	if len(args) < 2 {
		return "", &usageError{}
	}
	ticket, err := b.api.ReplyTicket(ctx, req.sess.Token, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Réponse envoyée sur la demande #%s (%s).", ticket.ID, ticketStatusLabel(ticket.Status)), nil
}

func (b *Bot) adminSettings(ctx context.Context, req *request, args []string) (string, error) {
	settings, err := b.api.Settings(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	if len(settings) == 0 {
		return "Aucun réglage.", nil
	}

	var sb strings.Builder
	sb.WriteString("⚙️ *Réglages*\n")
	for _, s := range settings {
		fmt.Fprintf(&sb, "• %s = %s\n", s.Key, s.Value)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (b *Bot) adminUpdateSetting(ctx context.Context, req *request, args []string) (string, error) {
	if len(args) < 2 {
		return "", &usageError{}
	}
	setting, err := b.api.UpdateSetting(ctx, req.sess.Token, model.Setting{Key: args[0], Value: strings.Join(args[1:], " ")})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %s = %s", setting.Key, setting.Value), nil
}
