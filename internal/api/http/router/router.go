// Package router wires the HTTP endpoints to their handlers and
// middleware.
package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/llmezi/auth-service/internal/api/http/handler"
	"github.com/llmezi/auth-service/internal/api/http/middleware"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/service"
)

// Router builds the HTTP handler tree for the authentication API.
type Router struct {
	authService       *service.Auth
	userService       *service.User
	tokenService      *service.TokenService
	credentialService *service.Credential
	smtpStatus        handler.SMTPStatus
	users             model.UserStore
	contextManager    model.ContextManager
	logger            *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	userService *service.User,
	tokenService *service.TokenService,
	credentialService *service.Credential,
	smtpStatus handler.SMTPStatus,
	users model.UserStore,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:       authService,
		userService:       userService,
		tokenService:      tokenService,
		credentialService: credentialService,
		smtpStatus:        smtpStatus,
		users:             users,
		contextManager:    contextManager,
		logger:            logger,
	}
}

// Register builds the router with request logging on every route and
// bearer authentication on the credential subtree. The auth endpoints
// themselves are public: they establish the session.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	root := mux.NewRouter()
	root.Use(logging.Handle)

	authHandler := handler.NewAuth(r.authService, r.userService, r.logger)

	api := root.PathPrefix("/api").Subrouter()
	api.HandleFunc("/setup", authHandler.SetupStatus).Methods(http.MethodGet)
	api.HandleFunc("/setup", authHandler.Setup).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth-code/request", authHandler.RequestAuthCode).Methods(http.MethodPost)
	api.HandleFunc("/auth-code/login", authHandler.LoginWithAuthCode).Methods(http.MethodPost)
	api.HandleFunc("/password/reset", authHandler.ResetPassword).Methods(http.MethodPost)

	smtpHandler := handler.NewSMTP(r.smtpStatus, r.logger)
	api.HandleFunc("/smtp/status", smtpHandler.Status).Methods(http.MethodGet)

	credentialHandler := handler.NewCredential(r.credentialService, r.users, r.contextManager, r.logger)

	credentials := api.PathPrefix("/credentials").Subrouter()
	credentials.Use(authenticate.Handle)
	credentials.HandleFunc("", credentialHandler.List).Methods(http.MethodGet)
	credentials.HandleFunc("", credentialHandler.Set).Methods(http.MethodPut)
	credentials.HandleFunc("/{key}", credentialHandler.Get).Methods(http.MethodGet)
	credentials.HandleFunc("/{key}/value", credentialHandler.GetValue).Methods(http.MethodGet)
	credentials.HandleFunc("/{key}", credentialHandler.Delete).Methods(http.MethodDelete)

	return root
}
