package api

import (
	"net/http"
	"strings"

	"sportspot/internal/models"
)

type loginRequest struct {
	Identifier    string `json:"identifier"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	StudentNumber string `json:"studentNumber"`
	Password      string `json:"password"`
}

// identifier accepts any of the login fields the clients send.
func (l loginRequest) identifier() string {
	for _, v := range []string{l.Identifier, l.Email, l.Username, l.StudentNumber} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, s.logger, err)
		return
	}
	user, err := s.auth.Register(r.Context(), reg)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	session, err := s.auth.Login(r.Context(), req.identifier(), req.Password)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, session)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), identityFrom(r.Context())); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, message{Message: "Logged out"})
}

func (s *HTTPServer) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	msg, err := s.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, message{Message: msg})
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, message{Message: "Password has been reset"})
}

func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.Profile(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, s.logger, err)
		return
	}
	profile, err := s.users.UpdateProfile(r.Context(), identityFrom(r.Context()), update)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}
