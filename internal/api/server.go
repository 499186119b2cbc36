package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/parts-broker/internal/catalog"
	"github.com/david/parts-broker/internal/procure"
)

type Server struct {
	Snapshot *catalog.Snapshot
	Pipeline *procure.Pipeline
	Echo     *echo.Echo
}

func NewServer(snapshot *catalog.Snapshot, pipeline *procure.Pipeline) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: unrestricted by default, extra origins from env for deployments
	// that pin the frontend domain.
	allowedOrigins := []string{"*"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		allowedOrigins = nil
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Snapshot: snapshot,
		Pipeline: pipeline,
		Echo:     e,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.POST("/procure", s.handleProcure)
	s.Echo.POST("/debug", s.handleDebug)
	s.Echo.GET("/products", s.handleListProducts)
	s.Echo.GET("/suppliers", s.handleListSuppliers)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProcure(c echo.Context) error {
	var req procure.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result, err := s.Pipeline.Process(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, procure.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		c.Logger().Errorf("Failed to process procurement request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

// handleDebug exposes intent resolution and product matching without running
// synthesis, for inspecting how a query is interpreted.
func (s *Server) handleDebug(c echo.Context) error {
	var req procure.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	intent := procure.FallbackIntent(req.Query)
	matches := procure.MatchProducts(intent, s.Snapshot.Products())

	type productSummary struct {
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	summaries := make([]productSummary, 0, len(matches))
	for _, p := range matches {
		summaries = append(summaries, productSummary{SKU: p.SKU, Name: p.Name, Category: p.Category})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"original_query":          req.Query,
		"parsed_query":            intent,
		"matching_products_count": len(matches),
		"matching_products":       summaries,
		"total_products":          len(s.Snapshot.Products()),
		"total_suppliers":         len(s.Snapshot.Suppliers()),
	})
}

func (s *Server) handleListProducts(c echo.Context) error {
	category := c.QueryParam("category")

	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	products := s.Snapshot.ProductsByCategory(category)
	total := len(products)
	if len(products) > limit {
		products = products[:limit]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
	})
}

func (s *Server) handleListSuppliers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suppliers": s.Snapshot.Suppliers(),
	})
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
