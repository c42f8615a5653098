package actors_test

import (
	"context"
	"testing"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	linkactors "Foam/internal/link/actors"
	linkentity "Foam/internal/link/entity"
	marketactors "Foam/internal/market/actors"
	marketentity "Foam/internal/market/entity"
	nodeactor "Foam/internal/node/actor"
	nodeactors "Foam/internal/node/actors"
	nodeentity "Foam/internal/node/entity"
	pointactors "Foam/internal/point/actors"
	pointentity "Foam/internal/point/entity"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/serverconfig"
)

// 内存仓储：装载永远为空（每个测试都是全新世界），落盘直接丢弃。

type memNodeRepo struct{}

func (memNodeRepo) LoadNode(context.Context, string) (*nodeentity.Node, error) { return nil, nil }
func (memNodeRepo) Save(context.Context, nodeentity.NodeState) error           { return nil }

type memLinkRepo struct{}

func (memLinkRepo) LoadLink(context.Context, string) (*linkentity.Link, error) { return nil, nil }
func (memLinkRepo) Save(context.Context, linkentity.LinkState) error           { return nil }

type memPointRepo struct{}

func (memPointRepo) LoadPoint(context.Context, string) (*pointentity.Point, error) {
	return nil, nil
}
func (memPointRepo) Save(context.Context, pointentity.PointState) error { return nil }

type memMarketRepo struct{}

func (memMarketRepo) LoadBook(context.Context) (*marketentity.Book, error) { return nil, nil }
func (memMarketRepo) Save(context.Context, marketentity.BookState) error   { return nil }

// newTestRuntime 起一套完整的实体 actor 体系；周期任务拉到一小时外，
// 让测试只观察命令驱动的状态变化。
func newTestRuntime(t *testing.T) *nodeactor.Runtime {
	t.Helper()

	system := protoactor.NewActorSystem()
	game := serverconfig.GameConfig{}
	game.Normalize()
	game.ProductionTickS = 3600
	game.FlowTickS = 3600
	game.DecayIntervalS = 3600

	reg := actorref.NewRegistry(system, &game)
	reg.NodeManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return nodeactors.NewManagerActor(&memNodeRepo{}, reg)
	}))
	reg.LinkManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return linkactors.NewManagerActor(&memLinkRepo{}, reg)
	}))
	reg.PointManager = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return pointactors.NewManagerActor(&memPointRepo{}, reg)
	}))
	reg.Market = system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return marketactors.NewMarketActor(&memMarketRepo{}, reg)
	}))

	t.Cleanup(func() {
		for _, pid := range []*protoactor.PID{reg.NodeManager, reg.LinkManager, reg.PointManager, reg.Market} {
			_ = system.Root.StopFuture(pid).Wait()
		}
	})

	return nodeactor.NewRuntime(reg, 2*time.Second)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("等待超时: %s", msg)
}

func balanceOf(t *testing.T, rt *nodeactor.Runtime, name string) int {
	t.Helper()
	res, err := rt.State(context.Background(), name)
	if err != nil || !res.OK {
		t.Fatalf("查询 %s 状态失败: err=%v res=%+v", name, err, res)
	}
	return res.Node.Nits
}

func TestRuntime_认证幂等与初始余额(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	first, err := rt.Authenticate(ctx, "alice")
	if err != nil || !first.OK {
		t.Fatalf("首次认证失败: err=%v res=%+v", err, first)
	}
	if first.Node.Nits != 100 {
		t.Fatalf("期望初始余额 100, got=%d", first.Node.Nits)
	}

	second, err := rt.Authenticate(ctx, "alice")
	if err != nil || !second.OK {
		t.Fatalf("二次认证失败: err=%v res=%+v", err, second)
	}
	if second.Node.Username != "alice" || second.Node.Nits != first.Node.Nits {
		t.Fatalf("期望二次认证返回同一实体, first=%+v second=%+v", first.Node, second.Node)
	}
}

func TestRuntime_链路握手接受后双方登记(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if res, err := rt.Authenticate(ctx, name); err != nil || !res.OK {
			t.Fatalf("认证 %s 失败: err=%v res=%+v", name, err, res)
		}
	}

	reqRes, err := rt.RequestLink(ctx, "alice", "bob")
	if err != nil || !reqRes.OK || reqRes.LinkID == "" {
		t.Fatalf("请求链路失败: err=%v res=%+v", err, reqRes)
	}

	respRes, err := rt.RespondLink(ctx, "bob", reqRes.LinkID, true)
	if err != nil || !respRes.OK || respRes.Link == nil {
		t.Fatalf("接受链路失败: err=%v res=%+v", err, respRes)
	}
	if respRes.Link.NodeA != "alice" || respRes.Link.NodeB != "bob" {
		t.Fatalf("链路端点不符: %+v", respRes.Link)
	}
	if respRes.Link.Capacity != 10 || respRes.Link.Status != messages.LinkActive {
		t.Fatalf("期望容量 10 且 active, got=%+v", respRes.Link)
	}

	hasLink := func(name string) bool {
		res, err := rt.State(ctx, name)
		if err != nil || !res.OK {
			return false
		}
		for _, id := range res.Node.Links {
			if id == reqRes.LinkID {
				return true
			}
		}
		return false
	}
	if !hasLink("bob") {
		t.Fatalf("接受方应立即持有链路 %s", reqRes.LinkID)
	}
	// 请求方通过单向回执登记，允许一点传播延迟
	waitUntil(t, 2*time.Second, func() bool { return hasLink("alice") }, "请求方登记链路")
}

func TestRuntime_链路拒绝清理双方挂起(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if res, err := rt.Authenticate(ctx, name); err != nil || !res.OK {
			t.Fatalf("认证 %s 失败: err=%v res=%+v", name, err, res)
		}
	}

	reqRes, err := rt.RequestLink(ctx, "alice", "bob")
	if err != nil || !reqRes.OK {
		t.Fatalf("请求链路失败: err=%v res=%+v", err, reqRes)
	}

	respRes, err := rt.RespondLink(ctx, "bob", reqRes.LinkID, false)
	if err != nil || !respRes.OK {
		t.Fatalf("拒绝链路失败: err=%v res=%+v", err, respRes)
	}

	// 重复处理同一请求应报已处理
	again, err := rt.RespondLink(ctx, "bob", reqRes.LinkID, false)
	if err != nil || again.OK || again.Code != messages.CodeStale {
		t.Fatalf("期望 STALE_STATE, err=%v res=%+v", err, again)
	}
}

func TestRuntime_撮合托管与买方入账(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	for _, name := range []string{"seller", "buyer"} {
		if res, err := rt.Authenticate(ctx, name); err != nil || !res.OK {
			t.Fatalf("认证 %s 失败: err=%v res=%+v", name, err, res)
		}
	}

	askRes, err := rt.PlaceOrder(ctx, "seller", messages.SideAsk, 5, 10)
	if err != nil || !askRes.OK {
		t.Fatalf("挂卖单失败: err=%v res=%+v", err, askRes)
	}
	if len(askRes.Fills) != 0 {
		t.Fatalf("空簿卖单不应成交: %+v", askRes.Fills)
	}
	if got := balanceOf(t, rt, "seller"); got != 90 {
		t.Fatalf("卖单托管后期望余额 90, got=%d", got)
	}

	bidRes, err := rt.PlaceOrder(ctx, "buyer", messages.SideBid, 6, 4)
	if err != nil || !bidRes.OK {
		t.Fatalf("挂买单失败: err=%v res=%+v", err, bidRes)
	}
	if len(bidRes.Fills) != 1 || bidRes.Fills[0].Price != 5 || bidRes.Fills[0].Amount != 4 {
		t.Fatalf("期望按卖单价 5 成交 4, got=%+v", bidRes.Fills)
	}

	// 成交入账走市场回调，异步到账
	waitUntil(t, 2*time.Second, func() bool { return balanceOf(t, rt, "buyer") == 104 }, "买方入账 4")
	if got := balanceOf(t, rt, "seller"); got != 90 {
		t.Fatalf("卖方托管已被消耗, 期望余额仍为 90, got=%d", got)
	}

	mkt, err := rt.MarketState(ctx, false)
	if err != nil || !mkt.OK {
		t.Fatalf("查询市场失败: err=%v res=%+v", err, mkt)
	}
	if mkt.Market.LastPrice != 5 {
		t.Fatalf("期望最新价 5, got=%v", mkt.Market.LastPrice)
	}
	if len(mkt.Market.Asks) != 1 || mkt.Market.Asks[0].Amount != 6 {
		t.Fatalf("期望剩余卖量 6, got=%+v", mkt.Market.Asks)
	}

	cancelRes, err := rt.CancelOrder(ctx, "seller", askRes.Order.ID)
	if err != nil || !cancelRes.OK || cancelRes.Refunded != 6 {
		t.Fatalf("撤单失败: err=%v res=%+v", err, cancelRes)
	}
	if got := balanceOf(t, rt, "seller"); got != 96 {
		t.Fatalf("撤单返还后期望余额 96, got=%d", got)
	}
}

func TestRuntime_投资未知交点原路退款(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	if res, err := rt.Authenticate(ctx, "carol"); err != nil || !res.OK {
		t.Fatalf("认证失败: err=%v res=%+v", err, res)
	}

	res, err := rt.Invest(ctx, "carol", "pt-0000000000000000", 30)
	if err != nil || res.OK || res.Code != messages.CodeNotFound {
		t.Fatalf("期望 NOT_FOUND, err=%v res=%+v", err, res)
	}
	if got := balanceOf(t, rt, "carol"); got != 100 {
		t.Fatalf("投资失败应退款, 期望余额 100, got=%d", got)
	}

	insuff, err := rt.Invest(ctx, "carol", "pt-0000000000000000", 1000)
	if err != nil || insuff.OK || insuff.Code != messages.CodeInsufficient {
		t.Fatalf("期望 INSUFFICIENT_RESOURCE, err=%v res=%+v", err, insuff)
	}
}

func TestRuntime_未认证节点拒绝业务命令(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	res, err := rt.PlaceOrder(ctx, "ghost", messages.SideBid, 1, 1)
	if err != nil || res.OK || res.Code != messages.CodeNotFound {
		t.Fatalf("期望 NOT_FOUND, err=%v res=%+v", err, res)
	}
}
