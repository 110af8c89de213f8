package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ledgerly/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(sess.Transactions()))
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toTransactionInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := sess.Add(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toTransactionInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := sess.Replace(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := sess.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(sess.Snapshot()))
}

func (s *Server) handleReorderTransactions(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reordered, err := sess.Reorder(req.From, req.To)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(reordered))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(sess.Snapshot()))
}

func (s *Server) handleEditAggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Savings targets may legitimately be negative.
	cents, err := core.ParseSignedCents(req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := s.session(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	field := core.AggregateField(r.PathValue("field"))
	created, err := sess.EditAggregate(r.Context(), field, core.Money{Cents: cents})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := struct {
		Summary    summaryDTO      `json:"summary"`
		Adjustment *transactionDTO `json:"adjustment,omitempty"`
	}{Summary: toSummaryDTO(sess.Snapshot())}
	if created != nil {
		dto := toTransactionDTO(*created)
		resp.Adjustment = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeDomainError(w, core.ErrUnauthenticated)
		return
	}

	s.dropSession(userID)
	slog.InfoContext(r.Context(), "Session closed", "user_id", userID)
	writeJSON(w, http.StatusOK, nil)
}
