package model

import (
	"time"

	"Foam/internal/link/entity"
	"Foam/internal/shared/geo"
)

// v1: 无 point_ids
// v2: 当前
const LinkSchemaVersion = 2

type LinkDoc struct {
	ID            string    `bson:"_id"`
	SchemaVersion int       `bson:"schema_version"`
	NodeA         string    `bson:"node_a"`
	NodeB         string    `bson:"node_b"`
	PathALat      float64   `bson:"path_a_lat"`
	PathALng      float64   `bson:"path_a_lng"`
	PathBLat      float64   `bson:"path_b_lat"`
	PathBLng      float64   `bson:"path_b_lng"`
	Capacity      int       `bson:"capacity"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"created_at"`
	PointIDs      []string  `bson:"point_ids"`
}

func migrateLinkDoc(doc *LinkDoc) {
	switch doc.SchemaVersion {
	case 0, 1:
		doc.PointIDs = nil
		doc.SchemaVersion = LinkSchemaVersion
	}
}

func LinkDocToState(doc LinkDoc) entity.LinkState {
	migrateLinkDoc(&doc)
	return entity.LinkState{
		ID:        doc.ID,
		NodeA:     doc.NodeA,
		NodeB:     doc.NodeB,
		PathA:     geo.LatLng{Lat: doc.PathALat, Lng: doc.PathALng},
		PathB:     geo.LatLng{Lat: doc.PathBLat, Lng: doc.PathBLng},
		Capacity:  doc.Capacity,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		PointIDs:  append([]string(nil), doc.PointIDs...),
	}
}

func LinkStateToDoc(s entity.LinkState) LinkDoc {
	return LinkDoc{
		ID:            s.ID,
		SchemaVersion: LinkSchemaVersion,
		NodeA:         s.NodeA,
		NodeB:         s.NodeB,
		PathALat:      s.PathA.Lat,
		PathALng:      s.PathA.Lng,
		PathBLat:      s.PathB.Lat,
		PathBLng:      s.PathB.Lng,
		Capacity:      s.Capacity,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		PointIDs:      append([]string(nil), s.PointIDs...),
	}
}
