package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-reelroom/internal/auth"
	"github.com/npezzotti/go-reelroom/internal/chatroom"
	"github.com/npezzotti/go-reelroom/internal/config"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/server"
	"github.com/teris-io/shortid"
)

type GoChatApp struct {
	log             *log.Logger
	db              database.GoChatRepository
	srv             *http.Server
	cs              *server.ChatServer
	chatrooms       *chatroom.Manager
	auth            *auth.Authenticator
	validate        *validator.Validate
	allowedOrigins  []string
	generateShortId func() (string, error)
}

func NewGoChatApp(
	mux *http.ServeMux,
	logger *log.Logger,
	cs *server.ChatServer,
	db database.GoChatRepository,
	chatrooms *chatroom.Manager,
	authenticator *auth.Authenticator,
	cfg *config.Config,
) *GoChatApp {
	s := &GoChatApp{
		log:             logger,
		db:              db,
		cs:              cs,
		chatrooms:       chatrooms,
		auth:            authenticator,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.HandleFunc("POST /api/projects", s.authMiddleware(s.createProject))
	mux.HandleFunc("GET /api/projects/{id}", s.authMiddleware(s.getProject))
	mux.HandleFunc("GET /api/projects/{id}/messages", s.authMiddleware(s.getMessages))
	mux.HandleFunc("POST /api/messages/{id}/report", s.authMiddleware(s.reportMessage))
	mux.HandleFunc("GET /api/movie-chatrooms", s.listMovieChatrooms)

	mux.HandleFunc("POST /api/projects/{id}/join-requests", s.authMiddleware(s.sendJoinRequest))
	mux.HandleFunc("GET /api/join-requests/sent", s.authMiddleware(s.listSentJoinRequests))
	mux.HandleFunc("GET /api/join-requests/received", s.authMiddleware(s.listReceivedJoinRequests))
	mux.HandleFunc("GET /api/join-requests/projects", s.authMiddleware(s.listJoinableProjects))
	mux.HandleFunc("POST /api/join-requests/{id}/accept", s.authMiddleware(s.acceptJoinRequest))
	mux.HandleFunc("POST /api/join-requests/{id}/reject", s.authMiddleware(s.rejectJoinRequest))

	mux.HandleFunc("POST /api/admin/chatrooms", s.adminMiddleware(s.openChatroom))
	mux.HandleFunc("GET /api/admin/chatrooms", s.adminMiddleware(s.listChatrooms))
	mux.HandleFunc("GET /api/admin/chatrooms/summary", s.adminMiddleware(s.chatroomSummaries))
	mux.HandleFunc("POST /api/admin/chatrooms/{id}/timer", s.adminMiddleware(s.setChatroomTimer))
	mux.HandleFunc("DELETE /api/admin/chatrooms/{id}", s.adminMiddleware(s.closeChatroom))
	mux.HandleFunc("POST /api/admin/movie-chatrooms", s.adminMiddleware(s.createMovieChatroom))
	mux.HandleFunc("DELETE /api/admin/movie-chatrooms/{id}", s.adminMiddleware(s.endMovieChatroom))
	mux.HandleFunc("PUT /api/admin/users/{id}", s.adminMiddleware(s.updateUserStatus))

	// the join event carries the token, so the upgrade itself is anonymous
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.ExposedHeaders([]string{"X-Total-Count"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)
	if logger != nil {
		h = handlers.CombinedLoggingHandler(logger.Writer(), h)
	}

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *GoChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *GoChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
