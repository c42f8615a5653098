package main

import (
	accountapp "Foam/internal/account/app"
	accountdomain "Foam/internal/account/domain"
	accountrepo "Foam/internal/account/infra/repo"
	"Foam/internal/gate/interfaces"
	linkactors "Foam/internal/link/actors"
	linkmongo "Foam/internal/link/infra/persistence/mongodb"
	marketactors "Foam/internal/market/actors"
	marketmongo "Foam/internal/market/infra/persistence/mongodb"
	nodeactor "Foam/internal/node/actor"
	nodeactors "Foam/internal/node/actors"
	nodemongo "Foam/internal/node/infra/persistence/mongodb"
	pointactors "Foam/internal/point/actors"
	pointmongo "Foam/internal/point/infra/persistence/mongodb"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/infrastructure/db"
	sharedmongo "Foam/internal/shared/infrastructure/mongo"
	"Foam/internal/shared/logs"
	"Foam/internal/shared/serverconfig"
	"Foam/internal/shared/session"
	transporthttp "Foam/internal/shared/transport/http"
	"Foam/internal/shared/transport/ws"
	"Foam/modules/kit/logx"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	serverconfig.Load()
	if err := logs.Init("server", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))

	// ---- 存储 ----
	gormDB, err := db.Open(serverconfig.Conf.MySQL)
	if err != nil {
		logs.Fatal("open mysql failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&accountdomain.Account{}, &accountdomain.LoginHistory{}); err != nil {
		logs.Fatal("migrate mysql failed", zap.Error(err))
	}

	mongoClient, err := sharedmongo.Open(serverconfig.Conf.MongoDB, logs.Logger())
	if err != nil {
		logs.Fatal("open mongodb failed", zap.Error(err))
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	mdb := mongoClient.Database(serverconfig.Conf.MongoDB.Database)

	// ---- 实体 actor 体系 ----
	system := protoactor.NewActorSystem()
	reg := actorref.NewRegistry(system, &serverconfig.Conf.Game)

	reg.NodeManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return nodeactors.NewManagerActor(nodemongo.NewNodeRepo(mdb), reg)
	}))
	reg.LinkManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return linkactors.NewManagerActor(linkmongo.NewLinkRepo(mdb), reg)
	}))
	reg.PointManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return pointactors.NewManagerActor(pointmongo.NewPointRepo(mdb), reg)
	}))
	reg.Market = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return marketactors.NewMarketActor(marketmongo.NewMarketRepo(mdb), reg)
	}))

	askTimeout := time.Duration(serverconfig.Conf.Game.EntityAskTimeoutMS) * time.Millisecond
	runtime := nodeactor.NewRuntime(reg, askTimeout)

	// ---- 网关 ----
	sessMgr := session.NewSessMgr()
	reg.Pusher = sessMgr

	accounts := accountapp.NewAccountService(
		accountrepo.NewAccountRepo(gormDB),
		accountrepo.NewLoginHistoryRepo(gormDB),
	)
	gateModule := interfaces.New(sessMgr, runtime, accounts)

	baseLogger := logx.NewZapLogger(logs.Logger())
	wsRouter := ws.NewRouter(baseLogger)
	gateModule.WsRegister(wsRouter)

	serverCfg := serverconfig.Conf.GateServer
	gateHost := serverCfg.Host
	if gateHost == "" {
		gateHost = "0.0.0.0"
	}
	gateServerAddr := fmt.Sprintf("%s:%d", gateHost, serverCfg.Port)

	httpServer := transporthttp.NewHttpServer(gateServerAddr, nil, baseLogger)
	gateModule.HttpRegister(httpServer.Group())

	wsServer := ws.NewServer(wsRouter, baseLogger)
	httpServer.Engine().Any("/ws", gin.WrapH(wsServer))
	// foam 客户端把用户名拼在路径上（/ws/<name>），身份仍以 auth 消息为准
	httpServer.Engine().Any("/ws/*any", gin.WrapH(wsServer))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logs.Info("foam server started", zap.String("addr", gateServerAddr))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("server start failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	// 逐个停掉实体 actor：Stopping 钩子里会把写后队列刷盘
	for _, pid := range []*protoactor.PID{reg.NodeManager, reg.LinkManager, reg.PointManager, reg.Market} {
		if pid == nil {
			continue
		}
		if err := system.Root.StopFuture(pid).Wait(); err != nil {
			logs.Error("stop actor failed", zap.Error(err))
		}
	}
}
