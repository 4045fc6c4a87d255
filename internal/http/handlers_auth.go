package http

import (
	"net/http"

	"finsight/internal/api"
	"finsight/internal/log"
	"finsight/internal/notify"
)

const (
	msgLoginOK      = "Login successful"
	msgLoginFailed  = "Invalid username or password"
	msgLoginRetry   = "Login failed. Please try again."
	msgLoggedOut    = "Logged out"
	msgSessionError = "Could not save your session"
)

type loginView struct {
	Username string
	Error    string
}

// handleLoginPage renders the login form; a logged-in browser is redirected.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionOf(w, r)
	if sess.HasToken() {
		s.handleAuthRedirect(w, r)
		return
	}
	s.render(w, r, sess, http.StatusOK, pageLogin, "Login", loginView{})
}

// handleLogin exchanges the credentials for a token. The inline error shows
// the backend's message when it sent one.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	sess := s.sessionOf(w, r)
	sink := s.sinkFor(sess)

	body, ok := parseBody(w, r)
	if !ok {
		return
	}
	creds := parseCredentials(body)

	token, err := s.api.Login(ctx, creds)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WarnContext(ctx, "Login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldStatusCode, api.StatusCode(err),
			log.FieldError, err)

		inline := api.ServerMessage(err)
		if inline == "" {
			inline = msgLoginRetry
		}
		sink.Notify(ctx, msgLoginFailed, notify.Error)
		s.render(w, r, sess, http.StatusOK, pageLogin, "Login", loginView{Username: creds.Username, Error: inline})
		return
	}

	if err := sess.SetToken(token); err != nil {
		logger.ErrorContext(ctx, "Failed to persist token", log.FieldOperation, log.OpLogin, log.FieldError, err)
		InternalServerError(msgSessionError).Write(w)
		return
	}
	logger.InfoContext(ctx, "Login succeeded", log.FieldOperation, log.OpLogin)
	sink.Notify(ctx, msgLoginOK, notify.Success)
	redirect(w, r, "/dashboard")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.sessionOf(w, r)
	if err := sess.ClearToken(); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to clear token", log.FieldOperation, log.OpLogout, log.FieldError, err)
		InternalServerError(msgSessionError).Write(w)
		return
	}
	s.sinkFor(sess).Notify(ctx, msgLoggedOut, notify.Info)
	redirect(w, r, "/login")
}
