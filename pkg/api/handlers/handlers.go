package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/bearpong/pkg/api/middleware"
	authproviders "github.com/cbodonnell/bearpong/pkg/auth/providers"
	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/repositories"
	"github.com/cbodonnell/bearpong/pkg/server"
	"github.com/cbodonnell/bearpong/pkg/version"
	"github.com/gorilla/mux"
)

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"status":  "ok",
			"version": version.Get(),
		})
	}
}

func HandleStats(gameServer *server.GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gameServer.Stats())
	}
}

type BalanceResponse struct {
	UserID  string `json:"userID"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

func HandleGetBalance(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*authproviders.TokenClaims)
		if !ok {
			log.Error("failed to get token claims from context")
			http.Error(w, "Failed to get token claims from context", http.StatusInternalServerError)
			return
		}

		playerID := mux.Vars(r)["playerID"]
		if playerID != claims.UID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		account, err := repository.GetAccount(r.Context(), playerID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Account not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get account: %v", err)
			http.Error(w, "Failed to get account", http.StatusInternalServerError)
			return
		}

		writeJSON(w, &BalanceResponse{
			UserID:  account.UserID,
			Name:    account.Name,
			Balance: account.Balance,
		})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
