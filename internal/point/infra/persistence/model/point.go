package model

import (
	"time"

	"Foam/internal/point/entity"
	"Foam/internal/shared/geo"
)

// v1: 无 stake_order，平票顺序按 stakes 文档键序近似
// v2: 当前
const PointSchemaVersion = 2

type PointDoc struct {
	ID            string         `bson:"_id"`
	SchemaVersion int            `bson:"schema_version"`
	Lat           float64        `bson:"lat"`
	Lng           float64        `bson:"lng"`
	LinkIDs       []string       `bson:"link_ids"`
	Participants  []string       `bson:"participants"`
	Stakes        map[string]int `bson:"stakes"`
	StakeOrder    []string       `bson:"stake_order"`
	Controller    string         `bson:"controller,omitempty"`
	TotalStake    int            `bson:"total_stake"`
	LastActivity  time.Time      `bson:"last_activity"`
	CreatedAt     time.Time      `bson:"created_at"`
}

func migratePointDoc(doc *PointDoc) {
	switch doc.SchemaVersion {
	case 0, 1:
		// 老文档没有入池顺序：用控制者打头近似重建，余下按任意序补齐。
		if doc.StakeOrder == nil {
			if doc.Controller != "" {
				doc.StakeOrder = append(doc.StakeOrder, doc.Controller)
			}
			for k := range doc.Stakes {
				if k != doc.Controller {
					doc.StakeOrder = append(doc.StakeOrder, k)
				}
			}
		}
		doc.SchemaVersion = PointSchemaVersion
	}
}

func PointDocToState(doc PointDoc) entity.PointState {
	migratePointDoc(&doc)
	s := entity.PointState{
		ID:           doc.ID,
		Position:     geo.LatLng{Lat: doc.Lat, Lng: doc.Lng},
		LinkIDs:      append([]string(nil), doc.LinkIDs...),
		Participants: append([]string(nil), doc.Participants...),
		Stakes:       make(map[string]int, len(doc.Stakes)),
		StakeOrder:   append([]string(nil), doc.StakeOrder...),
		Controller:   doc.Controller,
		TotalStake:   doc.TotalStake,
		LastActivity: doc.LastActivity,
		CreatedAt:    doc.CreatedAt,
	}
	for k, v := range doc.Stakes {
		s.Stakes[k] = v
	}
	return s
}

func PointStateToDoc(s entity.PointState) PointDoc {
	doc := PointDoc{
		ID:            s.ID,
		SchemaVersion: PointSchemaVersion,
		Lat:           s.Position.Lat,
		Lng:           s.Position.Lng,
		LinkIDs:       append([]string(nil), s.LinkIDs...),
		Participants:  append([]string(nil), s.Participants...),
		Stakes:        make(map[string]int, len(s.Stakes)),
		StakeOrder:    append([]string(nil), s.StakeOrder...),
		Controller:    s.Controller,
		TotalStake:    s.TotalStake,
		LastActivity:  s.LastActivity,
		CreatedAt:     s.CreatedAt,
	}
	for k, v := range s.Stakes {
		doc.Stakes[k] = v
	}
	return doc
}
