package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	h gin.HandlerFunc
}

func NewHandler() *Handler {
	return &Handler{h: gin.WrapH(promhttp.Handler())}
}

func (h *Handler) Metrics(c *gin.Context) {
	h.h(c)
}
