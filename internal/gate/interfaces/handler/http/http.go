package http

import (
	"Foam/internal/gate/interfaces/handler"
	"Foam/internal/gate/interfaces/handler/dto"
	"Foam/internal/shared/transport"
	"context"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
)

// HttpHandler 暴露只读查询面：节点/交点/市场快照，供面板和调试用。
type HttpHandler struct {
	gate *handler.Gate
}

func NewHttpHandler(g *handler.Gate) *HttpHandler {
	return &HttpHandler{gate: g}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	nodeGroup := group.Group("/nodes")
	nodeGroup.GET("/:name", h.NodeState)

	pointGroup := group.Group("/points")
	pointGroup.GET("/:id", h.PointState)

	group.GET("/market", h.MarketState)
}

func (h *HttpHandler) NodeState(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.Param("name")
	if name == "" {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	res, err := h.gate.Runtime.State(ctx, name)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	if !res.OK {
		code, msg := h.gate.HandleBizReject(ctx, res.Result)
		h.fail(c, code, msg)
		return
	}
	h.ok(c, gin.H{"node": res.Node})
}

func (h *HttpHandler) PointState(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if id == "" {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	res, err := h.gate.Runtime.PointState(ctx, id)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	if !res.OK {
		code, msg := h.gate.HandleBizReject(ctx, res.Result)
		h.fail(c, code, msg)
		return
	}
	h.ok(c, gin.H{"point": res.Point})
}

func (h *HttpHandler) MarketState(c *gin.Context) {
	ctx := c.Request.Context()

	withHistory := c.Query("history") == "1"
	res, err := h.gate.Runtime.MarketState(ctx, withHistory)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	if !res.OK {
		code, msg := h.gate.HandleBizReject(ctx, res.Result)
		h.fail(c, code, msg)
		return
	}
	h.ok(c, gin.H{"market": res.Market})
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *HttpHandler) fail(c *gin.Context, code int, msg string) {
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, err error) {
	code, msg := h.gate.HandleError(ctx, err)
	h.fail(c, code, msg)
}
