package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/text/currency"

	"cakewalk/internal/domain"
	"cakewalk/internal/repository"
	"cakewalk/internal/schedule"
	"cakewalk/internal/service"
)

type Server struct {
	engine   *gin.Engine
	sched    *schedule.Scheduler
	checkout *service.CheckoutService
	orders   *service.OrderService
}

func NewServer(sched *schedule.Scheduler, checkout *service.CheckoutService, orders *service.OrderService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, sched: sched, checkout: checkout, orders: orders}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		sched := v1.Group("/schedule")
		sched.GET("/days", s.calendarDays)
		sched.GET("/slots", s.timeSlots)

		checkout := v1.Group("/checkout")
		checkout.POST("/address", s.saveAddress)
		checkout.GET("/address", s.savedAddress)
		checkout.POST("/orders", s.placeOrder)

		orders := v1.Group("/orders")
		orders.GET("", s.listOrders)
		orders.GET("/stats", s.orderStats)
		orders.GET(":id", s.getOrder)
		orders.POST(":id/status", s.updateStatus)
	}
}

// Schedule handlers

// @Summary Calendar grid for a month
// @Tags schedule
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month 1-12, defaults to current"
// @Success 200 {array} schedule.CalendarDay
// @Failure 400 {object} map[string]string
// @Router /schedule/days [get]
func (s *Server) calendarDays(c *gin.Context) {
	now := time.Now()
	local := now.In(s.sched.Location())

	year, month := local.Year(), int(local.Month())
	if v := c.Query("year"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = x
	}
	if v := c.Query("month"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil || x < 1 || x > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = x
	}
	c.JSON(http.StatusOK, s.sched.CalendarDays(now, year, time.Month(month)))
}

// @Summary Delivery time slots for a date
// @Tags schedule
// @Produce json
// @Param date query string true "Date YYYY-MM-DD"
// @Success 200 {array} schedule.Slot
// @Router /schedule/slots [get]
func (s *Server) timeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.TimeSlots(c.Query("date"), time.Now()))
}

// Checkout handlers

type addressReq struct {
	OwnerID   string   `json:"owner_id"`
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// @Summary Save delivery address
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body addressReq true "Address"
// @Success 200 {object} domain.Address
// @Failure 400 {object} map[string]string
// @Router /checkout/address [post]
func (s *Server) saveAddress(c *gin.Context) {
	var req addressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := s.checkout.SaveAddress(c, domain.Address{
		OwnerID:   req.OwnerID,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Saved delivery address
// @Tags checkout
// @Produce json
// @Param owner query string true "Owner ID"
// @Success 200 {object} domain.Address
// @Failure 404 {object} map[string]string
// @Router /checkout/address [get]
func (s *Server) savedAddress(c *gin.Context) {
	a, err := s.checkout.SavedAddress(c, c.Query("owner"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

type cartItemReq struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int64  `json:"quantity"`
}

type profileReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type billingReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type placeOrderReq struct {
	OwnerID             string        `json:"owner_id"`
	Profile             profileReq    `json:"profile"`
	Shipping            addressReq    `json:"shipping_address"`
	Billing             billingReq    `json:"billing_address"`
	SameAsShipping      bool          `json:"same_as_shipping"`
	PaymentMethod       string        `json:"payment_method"`
	Items               []cartItemReq `json:"items"`
	DeliveryDate        string        `json:"delivery_date"`
	DeliveryTime        string        `json:"delivery_time"`
	SpecialInstructions string        `json:"special_instructions"`
}

// @Summary Place order
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body placeOrderReq true "Checkout details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Router /checkout/orders [post]
func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		price, err := parseMoney(it.Price, it.Currency)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item price"})
			return
		}
		items = append(items, domain.CartItem{Name: it.Name, Price: price, Quantity: it.Quantity})
	}

	o, err := s.checkout.PlaceOrder(c, service.CheckoutRequest{
		OwnerID: req.OwnerID,
		Profile: domain.UserProfile{
			FirstName: req.Profile.FirstName,
			LastName:  req.Profile.LastName,
			Email:     req.Profile.Email,
			Phone:     req.Profile.Phone,
		},
		Shipping: domain.Address{
			OwnerID:   req.OwnerID,
			Street:    req.Shipping.Street,
			City:      req.Shipping.City,
			State:     req.Shipping.State,
			ZipCode:   req.Shipping.ZipCode,
			Latitude:  req.Shipping.Latitude,
			Longitude: req.Shipping.Longitude,
		},
		Billing: domain.BillingInfo{
			Name:    req.Billing.Name,
			Email:   req.Billing.Email,
			Phone:   req.Billing.Phone,
			Street:  req.Billing.Street,
			City:    req.Billing.City,
			State:   req.Billing.State,
			ZipCode: req.Billing.ZipCode,
		},
		SameAsShipping:      req.SameAsShipping,
		PaymentMethod:       req.PaymentMethod,
		Items:               items,
		DeliveryDate:        req.DeliveryDate,
		DeliveryTime:        req.DeliveryTime,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, o)
}

// Order handlers

// @Summary List orders with delivery classification
// @Tags orders
// @Produce json
// @Param owner query string true "Owner ID"
// @Param limit query int false "Only N most recent"
// @Success 200 {array} service.TrackedOrder
// @Failure 400 {object} map[string]string
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	owner := c.Query("owner")

	var (
		orders []service.TrackedOrder
		err    error
	)
	if v := c.Query("limit"); v != "" {
		limit, convErr := strconv.Atoi(v)
		if convErr != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		orders, err = s.orders.Recent(c, owner, limit)
	} else {
		orders, err = s.orders.ListOrders(c, owner)
	}
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param owner query string true "Owner ID"
// @Success 200 {object} service.TrackedOrder
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.GetOrder(c, c.Query("owner"), id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateStatusReq struct {
	Status int `json:"status"`
}

// @Summary Advance order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param owner query string true "Owner ID"
// @Param input body updateStatusReq true "New status 1-5"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/status [post]
func (s *Server) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.UpdateStatus(c, c.Query("owner"), id, domain.OrderStatus(req.Status))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Aggregate delivery stats for an owner
// @Tags orders
// @Produce json
// @Param owner query string true "Owner ID"
// @Success 200 {object} track.DeliveryStats
// @Failure 400 {object} map[string]string
// @Router /orders/stats [get]
func (s *Server) orderStats(c *gin.Context) {
	stats, err := s.orders.Stats(c, c.Query("owner"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseMoney(amount, code string) (domain.Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, err
	}
	unit := currency.INR
	if code != "" {
		unit, err = currency.ParseISO(code)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return domain.NewMoney(dec, unit), nil
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrIncompleteSelection):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
