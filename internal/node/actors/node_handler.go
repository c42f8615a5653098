package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	linkentity "Foam/internal/link/entity"
	"Foam/internal/node/entity"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

type NodeHandler struct{}

// 全局实例
var NH = &NodeHandler{}

// HandleAuthenticate 幂等：已有实体直接返回现状，否则按起始余额 +
// 抖动地理位置创建。
func (h *NodeHandler) HandleAuthenticate(ctx actor.Context, n *NodeActor, msg messages.AuthenticateNode) {
	if msg.Name == "" || msg.Name != n.nodeID {
		ctx.Respond(messages.AuthenticateResult{Result: messages.FailResult(messages.CodeValidation, "invalid node name")})
		return
	}

	if n.entity == nil {
		cfg := n.reg.Game
		e := entity.NewNode(msg.Name, cfg.StartingBalance, cfg.ProductionRate, geo.PlaceNode(msg.Name))
		n.entity = e
		n.dc.Attach(e)
		n.dc.Flush(context.TODO())
		ctx.Logger().Info("node created", "node_id", n.nodeID)
	}

	ctx.Respond(messages.AuthenticateResult{
		Result: messages.OKResult(),
		Node:   n.entity.View(),
	})
}

// HandleRequestLink 向目标节点同步登记 pending；目标不可达时不留任何本地状态。
func (h *NodeHandler) HandleRequestLink(ctx actor.Context, n *NodeActor, msg messages.NodeRequestLink) {
	if n.entity == nil {
		ctx.Respond(messages.NodeRequestLinkResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}
	if msg.To == "" || msg.To == n.nodeID {
		ctx.Respond(messages.NodeRequestLinkResult{Result: messages.FailResult(messages.CodeValidation, "invalid link target")})
		return
	}

	now := time.Now()
	linkID := linkentity.LinkID(n.nodeID, msg.To, now)

	f := ctx.RequestFuture(n.reg.NodeManager, &messages.NodeEnvelope{
		NodeID: msg.To,
		Msg: messages.NotifyLinkRequest{
			LinkID:  linkID,
			From:    n.nodeID,
			FromPos: n.entity.Position(),
		},
	}, n.askTimeout())

	ctx.ReenterAfter(f, func(res interface{}, err error) {
		if err != nil {
			ctx.Respond(messages.NodeRequestLinkResult{Result: messages.FailResult(messages.CodeUnavailable, "link target unreachable")})
			return
		}
		r, ok := res.(messages.NotifyLinkRequestResult)
		if !ok {
			ctx.Respond(messages.NodeRequestLinkResult{Result: messages.FailResult(messages.CodeUnavailable, "bad reply from target")})
			return
		}
		if !r.OK {
			ctx.Respond(messages.NodeRequestLinkResult{Result: r.Result})
			return
		}

		n.entity.AddPendingOut(entity.PendingLink{
			LinkID:    linkID,
			Peer:      msg.To,
			CreatedAt: now,
		})
		n.entity.AdjustHeat(entity.HeatLinkRequested)
		n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})

		ctx.Respond(messages.NodeRequestLinkResult{Result: messages.OKResult(), LinkID: linkID})
	})
}

// HandleRespondLink 接受：读请求方公开状态 → 建链路实体 → 双方登记 →
// 触发交点发现。任一同步步骤失败则恢复本侧 pending，不留半截状态。
// 拒绝：丢掉本侧 pending，单向告知请求方。
func (h *NodeHandler) HandleRespondLink(ctx actor.Context, n *NodeActor, msg messages.NodeRespondLink) {
	if n.entity == nil {
		ctx.Respond(messages.NodeRespondLinkResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}

	p, ok := n.entity.TakePendingIn(msg.LinkID)
	if !ok {
		ctx.Respond(messages.NodeRespondLinkResult{Result: messages.FailResult(messages.CodeStale, "no such pending link")})
		return
	}

	if !msg.Accept {
		ctx.Send(n.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: p.Peer,
			Msg:    messages.NotifyLinkRejected{LinkID: p.LinkID, By: n.nodeID},
		})
		ctx.Respond(messages.NodeRespondLinkResult{Result: messages.OKResult()})
		return
	}

	fState := ctx.RequestFuture(n.reg.NodeManager, &messages.NodeEnvelope{
		NodeID: p.Peer,
		Msg:    messages.PublicStateQuery{},
	}, n.askTimeout())

	ctx.ReenterAfter(fState, func(res interface{}, err error) {
		ps, ok2 := res.(messages.PublicStateResult)
		if err != nil || !ok2 || !ps.OK {
			n.entity.AddPendingIn(p)
			ctx.Respond(messages.NodeRespondLinkResult{Result: messages.FailResult(messages.CodeUnavailable, "requester unreachable")})
			return
		}

		// 新链路加入前双方已有的连接就是交点发现的候选集。
		candidates := append(ps.LinkIDs, n.entity.LinkIDs()...)

		link := messages.LinkView{
			ID:        p.LinkID,
			NodeA:     p.Peer,
			NodeB:     n.nodeID,
			PathA:     ps.Position,
			PathB:     n.entity.Position(),
			Capacity:  n.reg.Game.LinkCapacity,
			Status:    messages.LinkActive,
			CreatedAt: time.Now().UnixNano() / 1e6,
		}

		fCreate := ctx.RequestFuture(n.reg.LinkManager, &messages.LinkEnvelope{
			LinkID: link.ID,
			Msg:    messages.CreateLink{Link: link},
		}, n.askTimeout())

		ctx.ReenterAfter(fCreate, func(res interface{}, err error) {
			cr, ok3 := res.(messages.CreateLinkResult)
			if err != nil || !ok3 {
				n.entity.AddPendingIn(p)
				ctx.Respond(messages.NodeRespondLinkResult{Result: messages.FailResult(messages.CodeUnavailable, "link entity unreachable")})
				return
			}
			if !cr.OK {
				n.entity.AddPendingIn(p)
				ctx.Respond(messages.NodeRespondLinkResult{Result: cr.Result})
				return
			}

			n.entity.AddLink(link.ID)
			n.entity.AdjustHeat(entity.HeatLinkEstablished)
			n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})

			// 此后均为已提交状态上的单向通知：失败只记日志，不回滚（最终一致）。
			ctx.Send(n.reg.NodeManager, &messages.NodeEnvelope{
				NodeID: p.Peer,
				Msg:    messages.NotifyLinkEstablished{Link: link},
			})
			ctx.Send(n.reg.PointManager, messages.DiscoverCrossings{
				Link:             link,
				CandidateLinkIDs: candidates,
			})

			ctx.Respond(messages.NodeRespondLinkResult{Result: messages.OKResult(), Link: &link})
		})
	})
}

// HandlePlaceOrder 卖单先托管资源再进簿，入簿失败原路退回。
// 成交入账与成交热度走市场的 NotifyFill 回调，这里只加挂单热度。
func (h *NodeHandler) HandlePlaceOrder(ctx actor.Context, n *NodeActor, msg messages.NodePlaceOrder) {
	if n.entity == nil {
		ctx.Respond(messages.NodePlaceOrderResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}
	if (msg.Side != messages.SideBid && msg.Side != messages.SideAsk) || msg.Price <= 0 || msg.Amount <= 0 {
		ctx.Respond(messages.NodePlaceOrderResult{Result: messages.FailResult(messages.CodeValidation, "invalid order")})
		return
	}

	escrowed := 0
	if msg.Side == messages.SideAsk {
		if !n.entity.Debit(msg.Amount) {
			ctx.Respond(messages.NodePlaceOrderResult{Result: messages.FailResult(messages.CodeInsufficient, "insufficient balance for ask")})
			return
		}
		escrowed = msg.Amount
	}

	f := ctx.RequestFuture(n.reg.Market, messages.MarketPlaceOrder{
		NodeID: n.nodeID,
		Side:   msg.Side,
		Price:  msg.Price,
		Amount: msg.Amount,
	}, n.askTimeout())

	ctx.ReenterAfter(f, func(res interface{}, err error) {
		r, ok := res.(messages.MarketPlaceOrderResult)
		if err != nil || !ok {
			if escrowed > 0 {
				n.entity.Credit(escrowed)
			}
			ctx.Respond(messages.NodePlaceOrderResult{Result: messages.FailResult(messages.CodeUnavailable, "market unreachable")})
			return
		}
		if !r.OK {
			if escrowed > 0 {
				n.entity.Credit(escrowed)
			}
			ctx.Respond(messages.NodePlaceOrderResult{Result: r.Result})
			return
		}

		n.entity.AdjustHeat(entity.HeatOrderPlaced)
		n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})

		ctx.Respond(messages.NodePlaceOrderResult{
			Result: messages.OKResult(),
			Order:  r.Order,
			Fills:  r.Fills,
		})
	})
}

func (h *NodeHandler) HandleCancelOrder(ctx actor.Context, n *NodeActor, msg messages.NodeCancelOrder) {
	if n.entity == nil {
		ctx.Respond(messages.NodeCancelOrderResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}
	if msg.OrderID == "" {
		ctx.Respond(messages.NodeCancelOrderResult{Result: messages.FailResult(messages.CodeValidation, "empty order id")})
		return
	}

	f := ctx.RequestFuture(n.reg.Market, messages.MarketCancelOrder{
		NodeID:  n.nodeID,
		OrderID: msg.OrderID,
	}, n.askTimeout())

	ctx.ReenterAfter(f, func(res interface{}, err error) {
		r, ok := res.(messages.MarketCancelOrderResult)
		if err != nil || !ok {
			ctx.Respond(messages.NodeCancelOrderResult{Result: messages.FailResult(messages.CodeUnavailable, "market unreachable")})
			return
		}
		if !r.OK {
			ctx.Respond(messages.NodeCancelOrderResult{Result: r.Result})
			return
		}

		// ask 撤单返还未成交托管量。
		if r.Side == messages.SideAsk && r.Refund > 0 {
			n.entity.Credit(r.Refund)
		}
		ctx.Respond(messages.NodeCancelOrderResult{Result: messages.OKResult(), Refunded: r.Refund})
	})
}

func (h *NodeHandler) HandleInvest(ctx actor.Context, n *NodeActor, msg messages.NodeInvest) {
	if n.entity == nil {
		ctx.Respond(messages.NodeInvestResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}
	if msg.PointID == "" || msg.Amount <= 0 {
		ctx.Respond(messages.NodeInvestResult{Result: messages.FailResult(messages.CodeValidation, "invalid invest")})
		return
	}
	if !n.entity.Debit(msg.Amount) {
		ctx.Respond(messages.NodeInvestResult{Result: messages.FailResult(messages.CodeInsufficient, "insufficient balance for stake")})
		return
	}

	f := ctx.RequestFuture(n.reg.PointManager, &messages.PointEnvelope{
		PointID: msg.PointID,
		Msg:     messages.InvestStake{NodeID: n.nodeID, Amount: msg.Amount},
	}, n.askTimeout())

	ctx.ReenterAfter(f, func(res interface{}, err error) {
		r, ok := res.(messages.InvestStakeResult)
		if err != nil || !ok {
			n.entity.Credit(msg.Amount)
			ctx.Respond(messages.NodeInvestResult{Result: messages.FailResult(messages.CodeUnavailable, "point unreachable")})
			return
		}
		if !r.OK {
			n.entity.Credit(msg.Amount)
			ctx.Respond(messages.NodeInvestResult{Result: r.Result})
			return
		}

		n.entity.RecordStake(msg.PointID, msg.Amount)
		n.entity.AdjustHeat(entity.HeatInvested)
		n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})

		ctx.Respond(messages.NodeInvestResult{Result: messages.OKResult(), Point: &r.Point})
	})
}

func (h *NodeHandler) HandleUpgradeLink(ctx actor.Context, n *NodeActor, msg messages.NodeUpgradeLink) {
	if n.entity == nil {
		ctx.Respond(messages.NodeUpgradeLinkResult{Result: messages.FailResult(messages.CodeNotFound, "node not authenticated")})
		return
	}
	if !n.entity.HasLink(msg.LinkID) {
		ctx.Respond(messages.NodeUpgradeLinkResult{Result: messages.FailResult(messages.CodeNotFound, "unknown link")})
		return
	}
	cost := n.reg.Game.LinkUpgradeCost
	if !n.entity.Debit(cost) {
		ctx.Respond(messages.NodeUpgradeLinkResult{Result: messages.FailResult(messages.CodeInsufficient, "insufficient balance for upgrade")})
		return
	}

	f := ctx.RequestFuture(n.reg.LinkManager, &messages.LinkEnvelope{
		LinkID: msg.LinkID,
		Msg:    messages.UpgradeCapacity{Step: n.reg.Game.LinkUpgradeStep},
	}, n.askTimeout())

	ctx.ReenterAfter(f, func(res interface{}, err error) {
		r, ok := res.(messages.UpgradeCapacityResult)
		if err != nil || !ok {
			n.entity.Credit(cost)
			ctx.Respond(messages.NodeUpgradeLinkResult{Result: messages.FailResult(messages.CodeUnavailable, "link unreachable")})
			return
		}
		if !r.OK {
			n.entity.Credit(cost)
			ctx.Respond(messages.NodeUpgradeLinkResult{Result: r.Result})
			return
		}

		n.entity.AdjustHeat(entity.HeatLinkUpgraded)
		n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})
		ctx.Respond(messages.NodeUpgradeLinkResult{Result: messages.OKResult(), Capacity: r.Capacity})
	})
}

func (h *NodeHandler) HandleStateQuery(ctx actor.Context, n *NodeActor, _ messages.NodeStateQuery) {
	if n.entity == nil {
		ctx.Respond(messages.NodeStateResult{Result: messages.FailResult(messages.CodeNotFound, "unknown node")})
		return
	}
	ctx.Respond(messages.NodeStateResult{Result: messages.OKResult(), Node: n.entity.View()})
}

// ---- 其他实体打进来的回调 ----

func (h *NodeHandler) HandleNotifyLinkRequest(ctx actor.Context, n *NodeActor, msg messages.NotifyLinkRequest) {
	if n.entity == nil {
		ctx.Respond(messages.NotifyLinkRequestResult{Result: messages.FailResult(messages.CodeNotFound, "unknown node")})
		return
	}
	n.entity.AddPendingIn(entity.PendingLink{
		LinkID:    msg.LinkID,
		Peer:      msg.From,
		PeerPos:   msg.FromPos,
		CreatedAt: time.Now(),
	})
	n.reg.Push(n.nodeID, "link_request", map[string]any{"from": msg.From, "linkId": msg.LinkID})
	ctx.Respond(messages.NotifyLinkRequestResult{Result: messages.OKResult()})
}

func (h *NodeHandler) HandlePublicStateQuery(ctx actor.Context, n *NodeActor, _ messages.PublicStateQuery) {
	if n.entity == nil {
		ctx.Respond(messages.PublicStateResult{Result: messages.FailResult(messages.CodeNotFound, "unknown node")})
		return
	}
	ctx.Respond(messages.PublicStateResult{
		Result:   messages.OKResult(),
		Position: n.entity.Position(),
		LinkIDs:  n.entity.LinkIDs(),
	})
}

func (h *NodeHandler) HandleNotifyLinkEstablished(ctx actor.Context, n *NodeActor, msg messages.NotifyLinkEstablished) {
	if n.entity == nil {
		ctx.Logger().Warn("link established notify for unknown node", "node_id", n.nodeID, "link_id", msg.Link.ID)
		return
	}
	n.entity.ConfirmPendingOut(msg.Link.ID)
	n.entity.AdjustHeat(entity.HeatLinkEstablished)
	n.reg.Push(n.nodeID, "link_accepted", map[string]any{"linkId": msg.Link.ID, "link": msg.Link})
}

func (h *NodeHandler) HandleNotifyLinkRejected(ctx actor.Context, n *NodeActor, msg messages.NotifyLinkRejected) {
	if n.entity == nil {
		return
	}
	if n.entity.DropPendingOut(msg.LinkID) {
		n.reg.Push(n.nodeID, "link_rejected", map[string]any{"linkId": msg.LinkID})
	}
}

func (h *NodeHandler) HandleCreditBalance(ctx actor.Context, n *NodeActor, msg messages.CreditBalance) {
	if n.entity == nil {
		return
	}
	n.entity.Credit(msg.Delta)
}

func (h *NodeHandler) HandleAdjustHeat(ctx actor.Context, n *NodeActor, msg messages.AdjustHeat) {
	if n.entity == nil {
		return
	}
	n.entity.AdjustHeat(msg.Delta)
	n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})
}

func (h *NodeHandler) HandleNotifyControlChanged(ctx actor.Context, n *NodeActor, msg messages.NotifyControlChanged) {
	if n.entity == nil {
		return
	}
	n.entity.SetControlled(msg.PointID, msg.IsController)
	if msg.IsController {
		n.entity.AdjustHeat(entity.HeatControlGained)
		n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})
		return
	}
	n.reg.Push(n.nodeID, "point_contested", map[string]any{"pointId": msg.PointID, "attacker": msg.Attacker})
}

func (h *NodeHandler) HandleNotifyTollReceived(ctx actor.Context, n *NodeActor, msg messages.NotifyTollReceived) {
	if n.entity == nil {
		return
	}
	n.entity.Credit(msg.Amount)
	n.reg.Push(n.nodeID, "toll_received", map[string]any{"amount": msg.Amount})
}

func (h *NodeHandler) HandleNotifyFill(ctx actor.Context, n *NodeActor, msg messages.NotifyFill) {
	if n.entity == nil {
		return
	}
	if msg.Credit > 0 {
		n.entity.Credit(msg.Credit)
	}
	n.entity.AdjustHeat(entity.HeatOrderFilled)
	n.reg.Push(n.nodeID, "heat_update", map[string]any{"heat": n.entity.Heat()})
}

func (h *NodeHandler) HandleNotifyPointDiscovered(ctx actor.Context, n *NodeActor, msg messages.NotifyPointDiscovered) {
	if n.entity == nil {
		return
	}
	n.reg.Push(n.nodeID, "point_update", map[string]any{"point": msg.Point})
}
