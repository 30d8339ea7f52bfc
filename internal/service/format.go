package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"whatsapp-boost/internal/model"
)

const dateLayout = "02/01/2006 15:04"

// groupThousands renders 1234567 as "1 234 567"
func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

func formatPoints(n int64) string {
	return groupThousands(n) + " pts"
}

func formatFCFA(n int64) string {
	return groupThousands(n) + " FCFA"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func transactionLabel(t model.TransactionType) string {
	switch t {
	case model.TransactionDeposit:
		return "Dépôt"
	case model.TransactionOrder:
		return "Commande"
	case model.TransactionTransferIn:
		return "Transfert reçu"
	case model.TransactionTransferOut:
		return "Transfert envoyé"
	case model.TransactionReferral:
		return "Bonus parrainage"
	case model.TransactionLottery:
		return "Grande Roue"
	case model.TransactionAdjustment:
		return "Ajustement"
	default:
		return string(t)
	}
}

func formatTransactions(txs []model.Transaction, limit int) string {
	if len(txs) == 0 {
		return "Aucune transaction pour le moment."
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	var b strings.Builder
	for _, tx := range txs {
		sign := ""
		if tx.IsCredit() {
			sign = "+"
		}
		fmt.Fprintf(&b, "• %s %s%s (%s)", transactionLabel(tx.Type), sign, formatPoints(tx.Points), formatDate(tx.CreatedAt))
		if tx.Description != "" {
			fmt.Fprintf(&b, "\n  %s", tx.Description)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func orderStatusLabel(s model.OrderStatus) string {
	switch s {
	case model.OrderPending:
		return "⏳ en attente"
	case model.OrderProcessing:
		return "🔄 en cours"
	case model.OrderCompleted:
		return "✅ terminée"
	case model.OrderCancelled:
		return "❌ annulée"
	case model.OrderRefunded:
		return "↩️ remboursée"
	default:
		return string(s)
	}
}

func formatOrders(orders []model.Order) string {
	if len(orders) == 0 {
		return "Aucune commande."
	}

	var b strings.Builder
	for _, o := range orders {
		name := o.Service
		if name == "" {
			name = "service " + o.ServiceID
		}
		fmt.Fprintf(&b, "• #%s %s x%s, %s, %s\n  %s\n", o.ID, name, groupThousands(o.Quantity),
			formatPoints(o.Cost), orderStatusLabel(o.Status), o.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatServices(services []model.Service) string {
	if len(services) == 0 {
		return "Aucun service disponible."
	}

	var b strings.Builder
	platform := ""
	for _, svc := range services {
		if svc.Platform != platform {
			platform = svc.Platform
			fmt.Fprintf(&b, "\n*%s*\n", strings.ToUpper(platform))
		}
		unit := svc.UnitSize
		if unit <= 0 {
			unit = 1
		}
		fmt.Fprintf(&b, "• [%s] %s: %s / %s (min %s, max %s)\n", svc.ID, svc.Name,
			formatPoints(svc.PricePerUnit), groupThousands(unit),
			groupThousands(svc.MinQuantity), groupThousands(svc.MaxQuantity))
	}
	return strings.TrimSpace(b.String())
}

func formatRound(r *model.LotteryRound) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎡 *Grande Roue* #%s\n", r.ID)
	switch r.Status {
	case model.RoundOpen:
		fmt.Fprintf(&b, "Tirage le %s\n", formatDate(r.DrawAt))
		fmt.Fprintf(&b, "Ticket : %s\n", formatPoints(r.TicketPrice))
		fmt.Fprintf(&b, "Cagnotte : %s\n", formatPoints(r.PrizePool))
		fmt.Fprintf(&b, "Tickets vendus : %s", groupThousands(r.TicketsSold))
	case model.RoundDrawn:
		fmt.Fprintf(&b, "Tiré le %s\n", formatDate(r.DrawAt))
		fmt.Fprintf(&b, "Gagnant : %s", r.WinnerName)
		if r.Prize != "" {
			fmt.Fprintf(&b, " (%s)", r.Prize)
		}
	default:
		b.WriteString("Tirage annulé")
	}
	return b.String()
}

func formatRoundAnnouncement(r *model.LotteryRound) string {
	return formatRound(r) + "\n\nAchetez vos tickets en privé avec /ticket <nombre> !"
}

func formatTickets(tickets []model.LotteryTicket) string {
	if len(tickets) == 0 {
		return "Aucun ticket."
	}

	var b strings.Builder
	for _, t := range tickets {
		status := ""
		if t.Won {
			status = " 🏆 gagnant"
		}
		fmt.Fprintf(&b, "• N°%s (tirage #%s)%s\n", t.Number, t.RoundID, status)
	}
	return strings.TrimRight(b.String(), "\n")
}

func ticketStatusLabel(s model.TicketStatus) string {
	switch s {
	case model.TicketOpen:
		return "ouverte"
	case model.TicketAnswered:
		return "répondue"
	case model.TicketClosed:
		return "fermée"
	default:
		return string(s)
	}
}

func formatSupportTickets(tickets []model.SupportTicket) string {
	if len(tickets) == 0 {
		return "Aucune demande."
	}

	var b strings.Builder
	for _, t := range tickets {
		fmt.Fprintf(&b, "• #%s %s (%s, %s)\n", t.ID, t.Subject, ticketStatusLabel(t.Status), formatDate(t.CreatedAt))
		if n := len(t.Replies); n > 0 {
			last := t.Replies[n-1]
			fmt.Fprintf(&b, "  ↳ %s : %s\n", last.Author, last.Message)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
