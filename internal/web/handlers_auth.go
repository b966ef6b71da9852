package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/logging"
)

// maxLoginBody bounds the token request body.
const maxLoginBody = 4 << 10

// handleObtainToken exchanges a username and password for an API token.
// It accepts a JSON body or a urlencoded form.
func (s *Server) handleObtainToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)

	var req auth.LoginRequest
	if isFormRequest(r) {
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, errInvalidBody, 0)
		return
	}

	token, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("token issued", "username", req.Username)
	writeJSON(w, http.StatusOK, token)
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
