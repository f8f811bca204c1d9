package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
)

// Handler serves the audit history as JSON.
//
// Query parameters kind, namespace, name and action filter the entries;
// limit and offset page through them. Invalid numbers answer 400.
func Handler(repo Repository, logger *logging.Logger) http.Handler {
	logger = logger.With("component", "audit")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		filter := Filter{
			Kind:      q.Get("kind"),
			Namespace: q.Get("namespace"),
			Name:      q.Get("name"),
			Action:    q.Get("action"),
		}

		var err error
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if filter.Offset, err = intParam(q.Get("offset")); err != nil {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}

		result, err := repo.List(r.Context(), filter)
		if err != nil {
			logger.Error("listing audit entries failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Debug("writing audit response failed", "error", err)
		}
	})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
