package http

import (
	"encoding/json"
	"net/http"
	"time"

	"ledgerly/internal/core"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planner.PlansByUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// ?month=YYYY-MM narrows to plans with an occurrence in that month,
	// recurring entries included.
	if m := r.URL.Query().Get("month"); m != "" {
		month, err := time.Parse("2006-01", m)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
			return
		}
		plans = plansInMonth(plans, month)
	}

	out := make([]planDTO, len(plans))
	for i, p := range plans {
		out[i] = toPlanDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func plansInMonth(plans []core.PlannedExpense, month time.Time) []core.PlannedExpense {
	var out []core.PlannedExpense
	for _, p := range plans {
		for _, occ := range p.Occurrences() {
			if occ.Year() == month.Year() && occ.Month() == month.Month() {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, core.ErrInvalidAmount)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	months := req.RecurringMonths
	if months == 0 {
		months = 1
	}

	created, err := s.planner.InsertPlan(r.Context(), core.PlannedExpense{
		UserID:          userIDFromContext(r.Context()),
		Title:           req.Title,
		Description:     req.Description,
		Amount:          core.Money{Cents: cents},
		Date:            date,
		RecurringMonths: months,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(created))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeDomainError(w, core.ErrUnauthenticated)
		return
	}

	if err := s.planner.DeletePlan(r.Context(), userID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subs.SubscriptionsByUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]subscriptionDTO, len(subs))
	for i, sub := range subs {
		out[i] = toSubscriptionDTO(sub)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, core.ErrInvalidAmount)
		return
	}
	date, err := core.ParseDate(req.NextBillingDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.subs.InsertSubscription(r.Context(), core.Subscription{
		UserID:          userIDFromContext(r.Context()),
		Name:            req.Name,
		Amount:          core.Money{Cents: cents},
		BillingCycle:    core.BillingCycle(req.BillingCycle),
		NextBillingDate: date,
		Description:     req.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionDTO(created))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeDomainError(w, core.ErrUnauthenticated)
		return
	}

	if err := s.subs.DeleteSubscription(r.Context(), userID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
