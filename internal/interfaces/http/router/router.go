// Package router assembles the gin engine: global middleware, the
// versioned API groups and the role guards in front of them.
package router

import (
	"net/http"

	"github.com/agency/backoffice/internal/domain/identity"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/agency/backoffice/internal/interfaces/http/dto"
	"github.com/agency/backoffice/internal/interfaces/http/handler"
	"github.com/agency/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one resource before they are mounted
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for any method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, handlers...)
}

// Group creates a sub-group within this domain. The sub-group inherits
// the parent's middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	ServiceName    string
	Tracing        bool
	HSTS           bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Logger         *zap.Logger
}

// NewEngine builds a gin engine with the global middleware in order:
// request ID, tracing, request logging, recovery, security headers, CORS
// and the body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.Tracing),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(cfg.HSTS),
		middleware.CORS(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	return engine, nil
}

// Handlers bundles the HTTP handlers the API mounts
type Handlers struct {
	Auth         *handler.AuthHandler
	Ledger       *handler.LedgerHandler
	Transactions *handler.TransactionHandler
	Contacts     *handler.ContactHandler
	ActivityLogs *handler.ActivityLogHandler
	System       *handler.SystemHandler
}

// Guards are the request gates supplied by the caller
type Guards struct {
	// Authenticate validates the bearer token, normally middleware.JWTAuth
	Authenticate gin.HandlerFunc
	// AuthRateLimit throttles the public auth endpoints. Optional.
	AuthRateLimit gin.HandlerFunc
}

// Mount registers the back-office API on engine.
//
// Reads are open to every signed-in role. Transactions are written by
// admins and accountants, contacts by every role, receivables by admins
// and accountants. The activity log is admin only.
func Mount(engine *gin.Engine, h Handlers, g Guards, opts ...RouterOption) {
	engine.GET("/health", h.System.Health)

	var (
		admin      = identity.RoleAdmin
		accountant = identity.RoleAccountant
		staff      = identity.RoleStaff
		protected  = []gin.HandlerFunc{g.Authenticate, middleware.SpanAttributes()}
	)

	public := NewDomainGroup("auth", "/auth")
	if g.AuthRateLimit != nil {
		public.POST("/login", g.AuthRateLimit, h.Auth.Login)
		public.POST("/refresh", g.AuthRateLimit, h.Auth.Refresh)
	} else {
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.Refresh)
	}

	session := NewDomainGroup("session", "/auth").Use(protected...)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.Info)

	ledger := NewDomainGroup("ledger", "/ledger").Use(protected...)
	ledger.GET("/summary", h.Ledger.Summary)
	ledger.GET("/activity", h.Ledger.RecentActivity)
	ledger.GET("/duplicates", middleware.RequireRole(admin, accountant), h.Ledger.Duplicates)

	tx := h.Transactions
	transactions := NewDomainGroup("transactions", "/transactions").
		Use(protected...).
		Use(middleware.WriteGuard(middleware.RequireRole(admin, accountant)))
	transactions.GET("", tx.List)
	transactions.POST("/invoices", tx.CreateInvoice)
	transactions.POST("/incomes", tx.CreateIncome)
	transactions.POST("/purchases", tx.CreatePurchase)
	transactions.POST("/expenses", tx.CreateExpense)
	transactions.POST("/transfers", tx.CreateTransfer)
	transactions.GET("/:id", tx.Get)
	transactions.PUT("/:id", tx.Update)
	transactions.DELETE("/:id", tx.Delete)
	transactions.POST("/:id/pay", tx.MarkPaid)
	transactions.POST("/:id/overdue", tx.MarkOverdue)

	receipts := transactions.Group("receipts", "/:id/attachment")
	receipts.GET("", tx.DownloadAttachment)
	receipts.DELETE("", tx.RemoveAttachment)
	receipts.POST("/upload-url", tx.RequestUpload)
	receipts.POST("/confirm", tx.ConfirmUpload)

	ct := h.Contacts
	contacts := NewDomainGroup("contacts", "/contacts").
		Use(protected...).
		Use(middleware.WriteGuard(middleware.RequireRole(admin, staff, accountant)))
	contacts.GET("", ct.List)
	contacts.POST("", ct.Create)
	contacts.GET("/:id", ct.Get)
	contacts.PUT("/:id", ct.Update)
	contacts.DELETE("/:id", ct.Delete)

	receivables := contacts.Group("receivables", "/:id/receivables").
		Use(middleware.WriteGuard(middleware.RequireRole(admin, accountant)))
	receivables.POST("", ct.AddReceivable)
	receivables.DELETE("/:entryId", ct.RemoveReceivable)
	receivables.POST("/:entryId/payments", ct.RecordPayment)
	receivables.POST("/:entryId/overdue", ct.MarkReceivableOverdue)

	audit := NewDomainGroup("activity-logs", "/activity-logs").
		Use(protected...).
		Use(middleware.RequireRole(admin))
	audit.GET("", h.ActivityLogs.List)

	NewRouter(engine, opts...).
		Register(public, session, system, ledger, transactions, contacts, audit).
		Setup()
}
