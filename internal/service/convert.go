package service

import (
	"github.com/mmynk/billsplit/internal/api"
	"github.com/mmynk/billsplit/internal/billing"
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
)

func billToAPI(b *models.Bill) api.Bill {
	return api.Bill{
		ID:              b.ID,
		Code:            b.Code,
		CreatedBy:       b.CreatedBy,
		Title:           b.Title,
		TotalAmount:     b.TotalAmount,
		BillDate:        calendar.Format(b.BillDate),
		DueDate:         calendar.FormatOptional(b.DueDate),
		BillType:        string(b.Kind),
		Status:          string(b.Status),
		NextDueDate:     calendar.FormatOptional(b.NextDueDate),
		IsTemplate:      b.IsTemplate,
		AutoInviteUsers: b.AutoInvite,
		ParentBillID:    b.ParentBillID,
		Notes:           b.Notes,
		FinalizedAt:     b.FinalizedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func billsToAPI(bills []models.Bill) []api.Bill {
	out := make([]api.Bill, len(bills))
	for i := range bills {
		out[i] = billToAPI(&bills[i])
	}
	return out
}

func itemsToAPI(items []models.BillItem) []api.Item {
	out := make([]api.Item, len(items))
	for i, item := range items {
		out[i] = api.Item{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	return out
}

func itemsFromAPI(items []api.Item) []billing.ItemInput {
	out := make([]billing.ItemInput, len(items))
	for i, item := range items {
		out[i] = billing.ItemInput{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	return out
}

func invitationToAPI(inv *models.Invitation) api.Invitation {
	return api.Invitation{
		ID:             inv.ID,
		BillID:         inv.BillID,
		InvitedUserID:  inv.InvitedUserID,
		InvitedBy:      inv.InvitedBy,
		ProposedAmount: inv.ProposedAmount,
		Status:         string(inv.Status),
		ResponseDate:   inv.RespondedAt,
		CreatedAt:      inv.CreatedAt,
	}
}

func invitationsToAPI(invs []models.Invitation) []api.Invitation {
	out := make([]api.Invitation, len(invs))
	for i := range invs {
		out[i] = invitationToAPI(&invs[i])
	}
	return out
}

func participantsToAPI(ps []models.Participant) []api.Participant {
	out := make([]api.Participant, len(ps))
	for i, p := range ps {
		out[i] = api.Participant{
			UserID:        p.UserID,
			AmountOwed:    p.AmountOwed,
			IsCreator:     p.IsCreator,
			PaymentStatus: string(p.PaymentStatus),
			PaidAt:        p.PaidAt,
		}
	}
	return out
}

func activityToAPI(entries []models.ActivityLogEntry) []api.ActivityEntry {
	out := make([]api.ActivityEntry, len(entries))
	for i, e := range entries {
		out[i] = api.ActivityEntry{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    string(e.Action),
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}

func progressToAPI(p calculator.Progress) api.Progress {
	return api.Progress{
		Participants: p.Participants,
		Paid:         p.Paid,
		Unpaid:       p.Unpaid,
		AmountPaid:   p.AmountPaid,
		Outstanding:  p.Outstanding,
	}
}

func countsToAPI(c models.InvitationCounts) api.InvitationCounts {
	return api.InvitationCounts{
		Total:    c.Total,
		Accepted: c.Accepted,
		Rejected: c.Rejected,
		Pending:  c.Pending,
	}
}

func sharesToAPI(shares []calculator.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{UserID: s.UserID, Amount: s.Amount, IsCreator: s.IsCreator}
	}
	return out
}
