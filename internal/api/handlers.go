package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/safar/pharmsync/internal/service"
	"github.com/safar/pharmsync/internal/store"
)

// orderResponse is an order plus the sum of its line subtotals.
type orderResponse struct {
	models.Order
	Total decimal.Decimal `json:"total"`
}

func newOrderResponse(o *models.Order) orderResponse {
	return orderResponse{Order: *o, Total: o.Total()}
}

type Server struct {
	engine *gin.Engine
	svc    *service.Service
}

func NewServer(svc *service.Service) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, svc: svc}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	{
		auth := api.Group("/auth")
		auth.GET("/me", s.me)
		auth.POST("/login", s.login)
		auth.POST("/logout", s.logout)
		auth.POST("/register", s.register)

		api.GET("/state", s.state)
		api.POST("/state/reset", s.reset)

		api.GET("/medicines", s.listMedicines)
		api.GET("/pharmacies", s.listPharmacies)

		suppliers := api.Group("/suppliers")
		suppliers.GET("", s.listSuppliers)
		suppliers.GET("/:supplierId/medicines", s.listSupplierMedicines)
		suppliers.GET("/:supplierId/performance", s.supplierPerformance)

		listings := api.Group("/supplier-medicines")
		listings.GET("", s.listListings)
		listings.POST("", s.createSupplierMedicine)
		listings.PATCH("/:id", s.updateSupplierMedicine)
		listings.DELETE("/:id", s.deleteSupplierMedicine)

		orders := api.Group("/orders")
		orders.GET("", s.listOrders)
		orders.POST("", s.createOrder)
		orders.POST("/:id/decision", s.decideOrder)

		api.POST("/ratings", s.createRating)

		notifications := api.Group("/notifications")
		notifications.GET("", s.listNotifications)
		notifications.POST("/read-all", s.markAllRead)
		notifications.POST("/:id/read", s.markRead)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.svc.Ping(c); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Auth handlers

func (s *Server) me(c *gin.Context) {
	me, err := s.svc.Me(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": me})
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	me, err := s.svc.Login(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.svc.Logout(c); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	me, err := s.svc.Register(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, me)
}

// State handlers

func (s *Server) state(c *gin.Context) {
	st, err := s.svc.State(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) reset(c *gin.Context) {
	st, err := s.svc.Reset(c)
	if err != nil {
		respondError(c, err)
		return
	}
	glog.Infof("State reset to seed data")
	c.JSON(http.StatusOK, st)
}

// Directory handlers

func (s *Server) listMedicines(c *gin.Context) {
	list, err := s.svc.ListMedicines(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listSuppliers(c *gin.Context) {
	list, err := s.svc.ListSuppliers(c, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listPharmacies(c *gin.Context) {
	list, err := s.svc.ListPharmacies(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Catalog handlers

func (s *Server) listListings(c *gin.Context) {
	list, err := s.svc.ListListings(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listSupplierMedicines(c *gin.Context) {
	q := service.CatalogQuery{
		Search:  c.Query("search"),
		SortBy:  service.SortKey(c.Query("sortBy")),
		SortDir: service.SortDir(c.Query("sortDir")),
	}
	if v := c.Query("onlyAvailable"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q.OnlyAvailable = b
		}
	}
	list, err := s.svc.ListSupplierMedicines(c, c.Param("supplierId"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createSupplierMedicine(c *gin.Context) {
	var req models.CreateSupplierMedicineRequest
	if !bindJSON(c, &req) {
		return
	}
	sm, err := s.svc.CreateSupplierMedicine(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sm)
}

func (s *Server) updateSupplierMedicine(c *gin.Context) {
	var req models.UpdateSupplierMedicineRequest
	if !bindJSON(c, &req) {
		return
	}
	sm, err := s.svc.UpdateSupplierMedicine(c, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sm)
}

func (s *Server) deleteSupplierMedicine(c *gin.Context) {
	if err := s.svc.DeleteSupplierMedicine(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) supplierPerformance(c *gin.Context) {
	perf, err := s.svc.SupplierPerformance(c, c.Param("supplierId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

// Order handlers

// listOrders returns a plain array unless cursor or limit is given, in which
// case it returns a CursorPage.
func (s *Server) listOrders(c *gin.Context) {
	q := service.OrderQuery{
		Role:   models.Role(c.Query("role")),
		UserID: c.Query("userId"),
		Status: models.OrderStatus(c.Query("status")),
	}

	cursor, hasCursor := c.GetQuery("cursor")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasCursor && !hasLimit {
		list, err := s.svc.ListOrders(c, q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
		return
	}

	limit, _ := strconv.Atoi(limitStr)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	page, err := s.svc.ListOrdersPage(c, q, cursor, limit)
	if errors.Is(err, store.ErrInvalidCursor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) createOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.CreateOrder(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOrderResponse(o))
}

func (s *Server) decideOrder(c *gin.Context) {
	var req models.DecideOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.DecideOrder(c, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(o))
}

func (s *Server) createRating(c *gin.Context) {
	var req models.CreateRatingRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := s.svc.CreateRating(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// Notification handlers

func notificationQuery(c *gin.Context) service.NotificationQuery {
	return service.NotificationQuery{
		Role:   models.Role(c.Query("role")),
		UserID: c.Query("userId"),
	}
}

func (s *Server) listNotifications(c *gin.Context) {
	list, err := s.svc.ListNotifications(c, notificationQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) markRead(c *gin.Context) {
	if err := s.svc.MarkRead(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) markAllRead(c *gin.Context) {
	if err := s.svc.MarkAllRead(c, notificationQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	body := gin.H{"error": err.Error()}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	if status == http.StatusInternalServerError {
		glog.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}

func mapErrorToStatus(err error) int {
	if schema.IsValidationError(err) {
		return http.StatusBadRequest
	}
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindRule:
		return http.StatusConflict
	case service.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
