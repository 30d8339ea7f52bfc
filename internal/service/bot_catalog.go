package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"whatsapp-boost/internal/model"
)

func (b *Bot) registerCatalogCommands() {
	b.register(&command{
		name:  "services",
		usage: "/services [plateforme]",
		help:  "Voir les services de boost (ex. /services tiktok)",
		auth:  true,
		run:   b.cmdServices,
	}, "catalogue")

	b.register(&command{
		name:  "commander",
		usage: "/commander <id service> <quantité> <lien>",
		help:  "Passer une commande de boost",
		auth:  true,
		run:   b.cmdOrder,
	})

	b.register(&command{
		name: "commandes",
		help: "Suivre mes commandes",
		auth: true,
		run:  b.cmdOrders,
	})
}

func (b *Bot) cmdServices(ctx context.Context, req *request) (string, error) {
	platform := ""
	if len(req.args) > 0 {
		platform = req.args[0]
	}

	services, err := b.catalog.Services(ctx, req.sess.Token, platform)
	if err != nil {
		return "", err
	}
	return "🚀 *Services*\n" + formatServices(services) + "\n\nCommandez avec /commander <id> <quantité> <lien>.", nil
}

func (b *Bot) cmdOrder(ctx context.Context, req *request) (string, error) {
	usage := &usageError{usage: b.commands["commander"].usage}
	if len(req.args) < 3 {
		return "", usage
	}

	quantity, err := strconv.ParseInt(req.args[1], 10, 64)
	if err != nil || quantity <= 0 {
		return "", usage
	}

	link := req.args[2]
	if u, err := url.Parse(link); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "❌ Le lien doit être une adresse complète (https://...).", nil
	}

	svc, err := b.catalog.Find(ctx, req.sess.Token, req.args[0])
	if err != nil {
		return "", err
	}
	if !svc.Active {
		return "❌ Ce service est momentanément indisponible.", nil
	}
	if quantity < svc.MinQuantity || (svc.MaxQuantity > 0 && quantity > svc.MaxQuantity) {
		return fmt.Sprintf("❌ Quantité hors limites pour %s : entre %s et %s.",
			svc.Name, groupThousands(svc.MinQuantity), groupThousands(svc.MaxQuantity)), nil
	}

	order, err := b.api.CreateOrder(ctx, req.sess.Token, model.CreateOrderRequest{
		ServiceID: svc.ID,
		Link:      link,
		Quantity:  quantity,
	})
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("🛒 Commande #%s enregistrée : %s x%s pour %s.",
		order.ID, svc.Name, groupThousands(order.Quantity), formatPoints(order.Cost))
	return text + b.balanceLine(ctx, req) + "\nSuivez-la avec /commandes.", nil
}

// balanceLine re-reads the balance after a mutation. A failed refresh only drops the line.
func (b *Bot) balanceLine(ctx context.Context, req *request) string {
	balance, err := b.api.Balance(ctx, req.sess.Token)
	if err != nil {
		b.logger.WithChat(req.chat).Warn("Balance refresh failed", "error", err)
		return ""
	}
	return "\nSolde restant : " + formatPoints(balance.Points)
}

func (b *Bot) cmdOrders(ctx context.Context, req *request) (string, error) {
	orders, err := b.api.Orders(ctx, req.sess.Token)
	if err != nil {
		return "", err
	}
	return "📦 *Mes commandes*\n" + formatOrders(orders), nil
}

// splitPipe splits "a | b" style arguments, trimming each part
func splitPipe(args []string, n int) []string {
	parts := strings.SplitN(strings.Join(args, " "), "|", n)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
