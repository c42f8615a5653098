package interfaces

import (
	accountapp "Foam/internal/account/app"
	"Foam/internal/gate/interfaces/handler"
	"Foam/internal/gate/interfaces/handler/http"
	ws2 "Foam/internal/gate/interfaces/handler/ws"
	nodeactor "Foam/internal/node/actor"
	"Foam/internal/shared/session"
	transporthttp "Foam/internal/shared/transport/http"
	"Foam/internal/shared/transport/ws"

	"github.com/gin-gonic/gin"
)

type Module struct {
	wsHandler   *ws2.WsHandler
	httpHandler *http.HttpHandler
}

func New(s session.Manager, rt *nodeactor.Runtime, accounts *accountapp.AccountService) *Module {
	gate := handler.NewGate(s, rt, accounts)
	return &Module{
		wsHandler:   ws2.NewWsHandler(gate),
		httpHandler: http.NewHttpHandler(gate),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
