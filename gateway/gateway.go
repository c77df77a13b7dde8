// Package gateway 以JSON形式通过HTTP提供税额计算的REST网关
package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
)

var log = logrus.WithField("module", "gateway")

// calculateQuery 查询参数
// 说明：income单独检查是否存在，0是合法收入，不能使用binding:"required"
type calculateQuery struct {
	Income     float64 `form:"income"`
	Deductions float64 `form:"deductions"`
	Dependents int     `form:"dependents"`
}

type batchRequest struct {
	Inputs []taxcalc.CalculationInput `json:"inputs"`
}

type batchResponse struct {
	Results []taxcalc.CalculationResult `json:"results"`
	Summary taxcalc.Summary             `json:"summary"`
}

// NewRouter 创建网关路由
// 功能：注册健康检查与计算接口
// 说明：使用gin.New而非gin.Default，请求日志写入logrus
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/calculate", Calculate)
		v1.POST("/calculate/batch", CalculateBatch)
	}
	return router
}

// Calculate GET /api/v1/calculate?income=&deductions=&dependents=
func Calculate(c *gin.Context) {
	if _, ok := c.GetQuery("income"); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "income query param required"})
		return
	}
	var q calculateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := taxcalc.CalculationInput{Income: q.Income, Deductions: q.Deductions, Dependents: q.Dependents}
	if !in.IsFinite() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "income and deductions must be finite"})
		return
	}

	result, err := taxcalc.CalculateInput(in)
	if err != nil {
		writeCalcError(c, err)
		return
	}
	if !result.IsFinite() {
		writeCalcError(c, errNonFiniteResult)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CalculateBatch POST /api/v1/calculate/batch
func CalculateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	results, err := taxcalc.CalculateBatch(req.Inputs)
	if err != nil {
		writeCalcError(c, err)
		return
	}
	for i, r := range results {
		if !r.IsFinite() {
			writeCalcError(c, fmt.Errorf("input %d: %w", i, errNonFiniteResult))
			return
		}
	}
	summary := taxcalc.Summarize(results)
	if !summary.IsFinite() {
		writeCalcError(c, fmt.Errorf("summary: %w", errNonFiniteResult))
		return
	}
	c.JSON(http.StatusOK, batchResponse{
		Results: results,
		Summary: summary,
	})
}

// 金额溢出为±Inf时encoding/json无法编码，gin会静默返回空的200
var errNonFiniteResult = errors.New("result is not finite")

func writeCalcError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, taxcalc.ErrBracketLookup):
		log.Errorf("bracket lookup failed: %v", err)
	case errors.Is(err, errNonFiniteResult):
		log.Warnf("calculation overflow: %v", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
