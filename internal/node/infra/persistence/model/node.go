package model

import (
	"time"

	"Foam/internal/node/entity"
	"Foam/internal/shared/geo"
)

// NodeSchemaVersion 当前文档版本。老版本文档在加载时经 migrateNodeDoc
// 显式迁移，不依赖字段缺省的隐式兼容。
//
// v1: 无 prod_carry / pending_in / pending_out
// v2: 当前
const NodeSchemaVersion = 2

type PendingLinkDoc struct {
	LinkID    string    `bson:"link_id"`
	Peer      string    `bson:"peer"`
	PeerLat   float64   `bson:"peer_lat"`
	PeerLng   float64   `bson:"peer_lng"`
	CreatedAt time.Time `bson:"created_at"`
}

type NodeDoc struct {
	Username       string           `bson:"_id"`
	SchemaVersion  int              `bson:"schema_version"`
	Balance        int              `bson:"balance"`
	ProductionRate float64          `bson:"production_rate"`
	ProdCarry      float64          `bson:"prod_carry"`
	Heat           int              `bson:"heat"`
	Lat            float64          `bson:"lat"`
	Lng            float64          `bson:"lng"`
	City           string           `bson:"city,omitempty"`
	Region         string           `bson:"region,omitempty"`
	Country        string           `bson:"country,omitempty"`
	CreatedAt      time.Time        `bson:"created_at"`
	LinkIDs        []string         `bson:"link_ids"`
	Stakes         map[string]int   `bson:"stakes"`
	Controlled     []string         `bson:"controlled"`
	PendingIn      []PendingLinkDoc `bson:"pending_in"`
	PendingOut     []PendingLinkDoc `bson:"pending_out"`
}

// migrateNodeDoc 把历史版本文档就地迁移到当前版本，加载时执行一次。
func migrateNodeDoc(doc *NodeDoc) {
	switch doc.SchemaVersion {
	case 0, 1:
		doc.ProdCarry = 0
		doc.PendingIn = nil
		doc.PendingOut = nil
		doc.SchemaVersion = NodeSchemaVersion
	}
}

func NodeDocToState(doc NodeDoc) entity.NodeState {
	migrateNodeDoc(&doc)
	s := entity.NodeState{
		Username:       doc.Username,
		Balance:        doc.Balance,
		ProductionRate: doc.ProductionRate,
		ProdCarry:      doc.ProdCarry,
		Heat:           doc.Heat,
		Position:       geo.LatLng{Lat: doc.Lat, Lng: doc.Lng},
		City:           doc.City,
		Region:         doc.Region,
		Country:        doc.Country,
		CreatedAt:      doc.CreatedAt,
		LinkIDs:        append([]string(nil), doc.LinkIDs...),
		Stakes:         make(map[string]int, len(doc.Stakes)),
		Controlled:     append([]string(nil), doc.Controlled...),
	}
	for k, v := range doc.Stakes {
		s.Stakes[k] = v
	}
	for _, p := range doc.PendingIn {
		s.PendingIn = append(s.PendingIn, pendingFromDoc(p))
	}
	for _, p := range doc.PendingOut {
		s.PendingOut = append(s.PendingOut, pendingFromDoc(p))
	}
	return s
}

func NodeStateToDoc(s entity.NodeState) NodeDoc {
	doc := NodeDoc{
		Username:       s.Username,
		SchemaVersion:  NodeSchemaVersion,
		Balance:        s.Balance,
		ProductionRate: s.ProductionRate,
		ProdCarry:      s.ProdCarry,
		Heat:           s.Heat,
		Lat:            s.Position.Lat,
		Lng:            s.Position.Lng,
		City:           s.City,
		Region:         s.Region,
		Country:        s.Country,
		CreatedAt:      s.CreatedAt,
		LinkIDs:        append([]string(nil), s.LinkIDs...),
		Stakes:         make(map[string]int, len(s.Stakes)),
		Controlled:     append([]string(nil), s.Controlled...),
	}
	for k, v := range s.Stakes {
		doc.Stakes[k] = v
	}
	for _, p := range s.PendingIn {
		doc.PendingIn = append(doc.PendingIn, pendingToDoc(p))
	}
	for _, p := range s.PendingOut {
		doc.PendingOut = append(doc.PendingOut, pendingToDoc(p))
	}
	return doc
}

func pendingFromDoc(p PendingLinkDoc) entity.PendingLink {
	return entity.PendingLink{
		LinkID:    p.LinkID,
		Peer:      p.Peer,
		PeerPos:   geo.LatLng{Lat: p.PeerLat, Lng: p.PeerLng},
		CreatedAt: p.CreatedAt,
	}
}

func pendingToDoc(p entity.PendingLink) PendingLinkDoc {
	return PendingLinkDoc{
		LinkID:    p.LinkID,
		Peer:      p.Peer,
		PeerLat:   p.PeerPos.Lat,
		PeerLng:   p.PeerPos.Lng,
		CreatedAt: p.CreatedAt,
	}
}
