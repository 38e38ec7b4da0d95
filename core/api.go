package core

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"chainchat/util"
)

// SessionCookie is the cookie carrying the login token.
const SessionCookie = "session_id"

// Api is the administrative and account surface: mining, chain
// retrieval and validation, plus signup/login/logout.
type Api struct {
	server *Server

	srv        *http.Server
	sessionTTL time.Duration

	wg sync.WaitGroup
}

func StartApi(server *Server) *Api {
	a := &Api{
		server:     server,
		sessionTTL: util.MustParseDuration(*server.cfg.Api.SessionTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/mine_block", a.handleMineBlock)
	mux.HandleFunc("/get_chain", a.handleGetChain)
	mux.HandleFunc("/valid", a.handleValid)
	mux.HandleFunc("/history", a.handleHistory)
	mux.HandleFunc("/signup", a.handleSignup)
	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	a.srv = &http.Server{Addr: *server.cfg.Api.Listen, Handler: mux}

	a.wg.Add(1)
	go a.listen()
	return a
}

func (a *Api) listen() {
	defer a.wg.Done()

	log.Infof("Api listening on %s", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != http.ErrServerClosed {
		// unexpected error. port in use?
		log.Fatalf("ListenAndServe(): %v", err)
	}
}

func (a *Api) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		log.Errorf("Api shutdown: %v", err)
	}

	a.wg.Wait()
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// identityFromRequest resolves the session cookie, nil when absent.
func (a *Api) identityFromRequest(req *http.Request) *Identity {
	cookie, err := req.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	identity, err := a.server.redis.SessionIdentity(cookie.Value)
	if err != nil {
		log.Errorf("Session lookup failed: %v", err)
		return nil
	}
	return identity
}

// handleMineBlock seals the open block with a fresh proof-of-work and
// opens the next one.
func (a *Api) handleMineBlock(w http.ResponseWriter, req *http.Request) {
	block := a.server.ledger.Mine()

	writeJson(w, http.StatusOK, map[string]interface{}{
		"message":       "A block is MINED",
		"index":         block.Index,
		"timestamp":     block.Timestamp,
		"proof":         block.Proof,
		"previous_hash": block.PreviousHash,
	})
}

func (a *Api) handleGetChain(w http.ResponseWriter, req *http.Request) {
	chain := a.server.ledger.Chain()

	writeJson(w, http.StatusOK, map[string]interface{}{
		"chain":  chain,
		"length": len(chain),
	})
}

func (a *Api) handleValid(w http.ResponseWriter, req *http.Request) {
	valid, err := a.server.ledger.Valid()
	if err != nil {
		writeJson(w, http.StatusInternalServerError, map[string]interface{}{
			"message": err.Error(),
		})
		return
	}

	message := "The Blockchain is valid."
	if !valid {
		message = "The Blockchain is not valid."
	}
	writeJson(w, http.StatusOK, map[string]interface{}{"message": message})
}

// handleHistory returns the full message history for late joiners. Reply
// context is the snapshot taken at submit time, never re-resolved.
func (a *Api) handleHistory(w http.ResponseWriter, req *http.Request) {
	if a.identityFromRequest(req) == nil {
		writeJson(w, http.StatusUnauthorized, map[string]interface{}{
			"message": "User not logged in",
		})
		return
	}

	msgs, err := a.server.postgres.ListMessages(req.Context())
	if err != nil {
		log.Errorf("History query failed: %v", err)
		writeJson(w, http.StatusInternalServerError, map[string]interface{}{
			"message": "Unable to load history",
		})
		return
	}
	for _, msg := range msgs {
		msg.GravatarUrl = util.GravatarUrl(msg.Email)
	}

	writeJson(w, http.StatusOK, map[string]interface{}{
		"history": msgs,
		"length":  len(msgs),
	})
}

func (a *Api) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, map[string]interface{}{"message": "Invalid HTTP method"})
		return
	}

	username := req.FormValue("username")
	email := req.FormValue("email")
	password := req.FormValue("password")
	if username == "" || password == "" {
		writeJson(w, http.StatusBadRequest, map[string]interface{}{"message": "Username and password required"})
		return
	}
	if !util.IsValidEmail(email) {
		writeJson(w, http.StatusBadRequest, map[string]interface{}{"message": "Invalid email address"})
		return
	}

	_, err := a.server.postgres.RegisterUser(req.Context(), username, email, util.Sha256Hex(password))
	if err == ErrUserExists {
		writeJson(w, http.StatusConflict, map[string]interface{}{"message": "User already exists"})
		return
	}
	if err != nil {
		log.Errorf("Signup failed: %v", err)
		writeJson(w, http.StatusInternalServerError, map[string]interface{}{"message": "Registration failed"})
		return
	}

	writeJson(w, http.StatusOK, map[string]interface{}{"message": "Registration successful. You can now log in."})
}

func (a *Api) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, map[string]interface{}{"message": "Invalid HTTP method"})
		return
	}

	user, err := a.server.postgres.UserByName(req.Context(), req.FormValue("username"))
	if err == ErrUserNotFound {
		writeJson(w, http.StatusUnauthorized, map[string]interface{}{"message": "User not found"})
		return
	}
	if err != nil {
		log.Errorf("Login query failed: %v", err)
		writeJson(w, http.StatusInternalServerError, map[string]interface{}{"message": "Login failed"})
		return
	}
	if !user.Verified {
		writeJson(w, http.StatusUnauthorized, map[string]interface{}{"message": "Email not verified"})
		return
	}
	if user.Password != util.Sha256Hex(req.FormValue("password")) {
		writeJson(w, http.StatusUnauthorized, map[string]interface{}{"message": "Invalid password"})
		return
	}

	token := util.RandomToken()
	identity := &Identity{Username: user.Username, Email: user.Email}
	if err := a.server.redis.StoreSession(token, identity, a.sessionTTL); err != nil {
		log.Errorf("Session store failed: %v", err)
		writeJson(w, http.StatusInternalServerError, map[string]interface{}{"message": "Login failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.sessionTTL / time.Second),
	})
	writeJson(w, http.StatusOK, map[string]interface{}{
		"message":      "Login successful",
		"username":     user.Username,
		"gravatar_url": util.GravatarUrl(user.Email),
	})
}

func (a *Api) handleLogout(w http.ResponseWriter, req *http.Request) {
	if cookie, err := req.Cookie(SessionCookie); err == nil {
		if err := a.server.redis.DeleteSession(cookie.Value); err != nil {
			log.Errorf("Session delete failed: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJson(w, http.StatusOK, map[string]interface{}{"message": "Logged out"})
}
