package badger

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

// GraphStore implements storage.GraphStore for BadgerDB.
//
// Node IDs are content hashes of (label, key), so lookups by key never
// need a secondary index and upserts are naturally idempotent.
type GraphStore struct {
	backend *Backend
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a new GraphStore over the given backend.
//
// Returns storage.GraphStore interface to enforce abstraction.
func NewGraphStore(backend *Backend) (storage.GraphStore, error) {
	return &GraphStore{backend: backend}, nil
}

// nodeID computes the deterministic node ID for a (label, key) pair.
func nodeID(label core.NodeLabel, key string) core.ID {
	return core.IDFromContent(label.String() + "|" + key)
}

// edgeID computes the deterministic edge ID for a typed node pair.
func edgeID(rel core.RelType, from, to core.ID) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s|%d|%d", rel, from, to))
}

// primaryMetric names the summary total that drives trend reporting.
func primaryMetric(d core.Domain) string {
	switch d {
	case core.DomainTrade:
		return "trade_value"
	case core.DomainMacroeconomic:
		return "gdp"
	case core.DomainEnvironmental:
		return "epi_score"
	default:
		return ""
	}
}

// UpsertCountry creates or refreshes a Country node.
func (s *GraphStore) UpsertCountry(ctx context.Context, code, name string) error {
	code = core.NormalizeCountryCode(code)
	if err := core.ValidateCountryCode(code); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.upsertCountry(tx, code, name, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// upsertCountry creates or refreshes a Country node within a transaction.
// Re-upserting refreshes the name and UpdatedAt, never duplicates.
func (s *GraphStore) upsertCountry(tx *badger.Txn, code, name string, now time.Time) (*core.GraphNode, error) {
	id := nodeID(core.NodeCountry, code)
	node, err := s.readNode(tx, makeNodeKey(id))
	if err != nil {
		return nil, err
	}

	if node == nil {
		node = &core.GraphNode{
			Id:         id,
			Label:      core.NodeCountry,
			Key:        code,
			Properties: map[string]string{"name": name},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	} else {
		if name != "" {
			node.Properties["name"] = name
		}
		node.UpdatedAt = now
	}

	if err := tx.Set(makeNodeKey(id), storage.MarshalGraphNode(node)); err != nil {
		return nil, err
	}
	return node, nil
}

// Materialize writes one dataset into the graph: a data node and a
// directed HAS_* edge for every cleaned record, plus Commodity nodes and
// TRADES_IN edges for trade records. Returns the number of edges created.
func (s *GraphStore) Materialize(ctx context.Context, dataset *core.CleanedDataset, processedAt time.Time) (int, error) {
	if dataset == nil || dataset.RecordCount() == 0 {
		return 0, nil
	}

	label := core.DataNodeLabel(dataset.Domain)
	rel := core.DataRelType(dataset.Domain)
	if label == 0 || rel == 0 {
		return 0, fmt.Errorf("%w: %d", core.ErrUnknownDomain, dataset.Domain)
	}

	relationships := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		countries := make(map[string]*core.GraphNode)
		countryFor := func(code string) (*core.GraphNode, error) {
			if node, ok := countries[code]; ok {
				return node, nil
			}
			node, err := s.upsertCountry(tx, code, "", processedAt)
			if err != nil {
				return nil, err
			}
			countries[code] = node
			return node, nil
		}

		// putRecord writes one per-record data node, its date-index entry,
		// and the HAS_* edge from the Country node. The ordinal keeps node
		// IDs distinct for records that share a composite key within one run.
		putRecord := func(ordinal int, code string, date time.Time, numeric map[string]float64) (*core.GraphNode, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			country, err := countryFor(code)
			if err != nil {
				return nil, err
			}

			dataKey := fmt.Sprintf("%s|%s|%d|%d", code, dataset.Domain, processedAt.UnixMicro(), ordinal)
			node := &core.GraphNode{
				Id:    nodeID(label, dataKey),
				Label: label,
				Key:   dataKey,
				Properties: map[string]string{
					"country_code": code,
					"date":         date.Format("2006-01-02"),
				},
				Numeric:   numeric,
				CreatedAt: processedAt,
				UpdatedAt: processedAt,
			}
			if err := tx.Set(makeNodeKey(node.Id), storage.MarshalGraphNode(node)); err != nil {
				return nil, err
			}
			// Only data nodes enter the date index, so pruning never
			// touches Country or Commodity nodes.
			if err := tx.Set(makeGraphDateKey(processedAt, node.Id), storage.MarshalID(node.Id)); err != nil {
				return nil, err
			}

			if err := s.putEdge(tx, &core.GraphEdge{
				Id:        edgeID(rel, country.Id, node.Id),
				Type:      rel,
				From:      country.Id,
				To:        node.Id,
				CreatedAt: processedAt,
			}); err != nil {
				return nil, err
			}
			relationships++
			return country, nil
		}

		switch dataset.Domain {
		case core.DomainTrade:
			linked := make(map[string]bool)
			for i, r := range dataset.Trade {
				country, err := putRecord(i, r.CountryCode, r.Date, map[string]float64{
					"record_count": 1,
					"trade_value":  r.TradeValue,
				})
				if err != nil {
					return err
				}
				if r.CommodityCode == "" {
					continue
				}

				// One TRADES_IN edge per distinct country-commodity pair
				pair := r.CountryCode + "|" + r.CommodityCode
				if linked[pair] {
					continue
				}
				linked[pair] = true

				commodityNode, err := s.upsertCommodity(tx, r.CommodityCode, processedAt)
				if err != nil {
					return err
				}
				if err := s.putEdge(tx, &core.GraphEdge{
					Id:        edgeID(core.RelTradesIn, country.Id, commodityNode.Id),
					Type:      core.RelTradesIn,
					From:      country.Id,
					To:        commodityNode.Id,
					CreatedAt: processedAt,
				}); err != nil {
					return err
				}
				relationships++
			}
		case core.DomainMacroeconomic:
			for i, r := range dataset.Macro {
				if _, err := putRecord(i, r.CountryCode, r.Date, map[string]float64{
					"record_count":   1,
					"gdp":            r.GDP,
					"population":     r.Population,
					"inflation":      r.Inflation,
					"unemployment":   r.Unemployment,
					"gdp_per_capita": r.GDPPerCapita,
				}); err != nil {
					return err
				}
			}
		case core.DomainEnvironmental:
			for i, r := range dataset.Environmental {
				if _, err := putRecord(i, r.CountryCode, r.Date, map[string]float64{
					"record_count":  1,
					"epi_score":     r.EPIScore,
					"air_quality":   r.AirQuality,
					"water_quality": r.WaterQuality,
					"biodiversity":  r.Biodiversity,
				}); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return relationships, nil
}

// upsertCommodity creates a Commodity node if it doesn't exist.
func (s *GraphStore) upsertCommodity(tx *badger.Txn, code string, now time.Time) (*core.GraphNode, error) {
	id := nodeID(core.NodeCommodity, code)
	node, err := s.readNode(tx, makeNodeKey(id))
	if err != nil {
		return nil, err
	}
	if node != nil {
		return node, nil
	}

	node = &core.GraphNode{
		Id:        id,
		Label:     core.NodeCommodity,
		Key:       code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Set(makeNodeKey(id), storage.MarshalGraphNode(node)); err != nil {
		return nil, err
	}
	return node, nil
}

// LinkCorrelated records a CORRELATES_WITH edge between two Country nodes.
func (s *GraphStore) LinkCorrelated(ctx context.Context, codeA, codeB string, coefficient, pValue float64) error {
	codeA = core.NormalizeCountryCode(codeA)
	codeB = core.NormalizeCountryCode(codeB)

	return s.backend.WithTx(func(tx *badger.Txn) error {
		from, err := s.readNode(tx, makeNodeKey(nodeID(core.NodeCountry, codeA)))
		if err != nil {
			return err
		}
		to, err := s.readNode(tx, makeNodeKey(nodeID(core.NodeCountry, codeB)))
		if err != nil {
			return err
		}
		if from == nil || to == nil {
			return storage.ErrNotFound
		}

		err = s.putEdge(tx, &core.GraphEdge{
			Id:   edgeID(core.RelCorrelatesWith, from.Id, to.Id),
			Type: core.RelCorrelatesWith,
			From: from.Id,
			To:   to.Id,
			Properties: map[string]float64{
				"coefficient": coefficient,
				"p_value":     pValue,
			},
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Summarize reports what the graph knows about one country.
func (s *GraphStore) Summarize(ctx context.Context, code string) (*storage.CountrySummary, error) {
	code = core.NormalizeCountryCode(code)

	summary := &storage.CountrySummary{
		Code:       code,
		DataPoints: make(map[core.Domain]int),
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		country, err := s.readNode(tx, makeNodeKey(nodeID(core.NodeCountry, code)))
		if err != nil {
			return err
		}
		if country == nil {
			return storage.ErrNotFound
		}
		summary.Name = country.Properties["name"]

		edges, err := s.edgesFrom(ctx, tx, country.Id)
		if err != nil {
			return err
		}

		commodities := make(map[string]bool)
		for _, edge := range edges {
			switch edge.Type {
			case core.RelHasTradeData:
				summary.DataPoints[core.DomainTrade]++
			case core.RelHasEconomicData:
				summary.DataPoints[core.DomainMacroeconomic]++
			case core.RelHasEnvironmentalData:
				summary.DataPoints[core.DomainEnvironmental]++
			case core.RelTradesIn:
				node, err := s.readNode(tx, makeNodeKey(edge.To))
				if err != nil {
					return err
				}
				if node != nil {
					commodities[node.Key] = true
				}
				continue
			default:
				continue
			}
			if edge.CreatedAt.After(summary.LastProcessedAt) {
				summary.LastProcessedAt = edge.CreatedAt
			}
		}

		for c := range commodities {
			summary.Commodities = append(summary.Commodities, c)
		}
		slices.Sort(summary.Commodities)
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Trend returns time-ordered primary-metric observations for a country
// and domain within the trailing window.
func (s *GraphStore) Trend(ctx context.Context, code string, domain core.Domain, window time.Duration) ([]storage.TrendPoint, error) {
	code = core.NormalizeCountryCode(code)
	label := core.DataNodeLabel(domain)
	metric := primaryMetric(domain)
	if label == 0 || metric == "" {
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownDomain, domain)
	}

	now := time.Now().UTC()
	start := now.Add(-window)

	var points []storage.TrendPoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialGraphDateKey(start)
		endKey := makePartialGraphDateKey(now.Add(1 * time.Microsecond))
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, []byte(graphDatePrefix+":")) {
				break
			}
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			node, err := s.readNode(tx, makeNodeKey(id))
			if err != nil {
				return err
			}
			if node == nil || node.Label != label || node.Properties["country_code"] != code {
				continue
			}

			points = append(points, storage.TrendPoint{
				ProcessedAt: node.CreatedAt,
				Value:       node.Numeric[metric],
				RecordCount: int(node.Numeric["record_count"]),
			})
		}
		return nil
	}, false)

	return points, err
}

// PruneOlderThan removes data nodes older than the given age together
// with their edges. Country and Commodity nodes are never removed.
func (s *GraphStore) PruneOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)

	// Collect victims in a read pass first, then detach-delete each node
	// and its edges in one write transaction.
	var victims []*core.GraphNode
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialGraphDateKey(time.Unix(0, 0))
		endKey := makePartialGraphDateKey(cutoff)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, []byte(graphDatePrefix+":")) {
				break
			}
			if slices.Compare(key, endKey) >= 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			node, err := s.readNode(tx, makeNodeKey(id))
			if err != nil {
				return err
			}
			if node != nil {
				victims = append(victims, node)
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	if len(victims) == 0 {
		return 0, nil
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, node := range victims {
			// Detach: remove every edge touching the node
			incoming, err := s.edgesTo(ctx, tx, node.Id)
			if err != nil {
				return err
			}
			outgoing, err := s.edgesFrom(ctx, tx, node.Id)
			if err != nil {
				return err
			}
			for _, edge := range append(incoming, outgoing...) {
				if err := s.deleteEdge(tx, edge); err != nil {
					return err
				}
			}

			if err := tx.Delete(makeNodeKey(node.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeGraphDateKey(node.CreatedAt, node.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(victims), nil
}

// Close is a no-op: the shared backend owns the database lifecycle.
func (s *GraphStore) Close() error {
	return nil
}

// Helper methods

// readNode reads a graph node from the transaction.
// Returns nil without error when the key is absent.
func (s *GraphStore) readNode(tx *badger.Txn, key []byte) (*core.GraphNode, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var node *core.GraphNode
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		node, unmarshalErr = storage.UnmarshalGraphNode(val)
		return unmarshalErr
	})
	return node, err
}

// readEdge reads a graph edge from the transaction.
func (s *GraphStore) readEdge(tx *badger.Txn, id core.ID) (*core.GraphEdge, error) {
	item, err := tx.Get(makeEdgeKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var edge *core.GraphEdge
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		edge, unmarshalErr = storage.UnmarshalGraphEdge(val)
		return unmarshalErr
	})
	return edge, err
}

// putEdge writes an edge and both of its adjacency index entries.
func (s *GraphStore) putEdge(tx *badger.Txn, edge *core.GraphEdge) error {
	if err := tx.Set(makeEdgeKey(edge.Id), storage.MarshalGraphEdge(edge)); err != nil {
		return err
	}
	if err := tx.Set(makeEdgeFromKey(edge.From, edge.Id), storage.MarshalID(edge.Id)); err != nil {
		return err
	}
	return tx.Set(makeEdgeToKey(edge.To, edge.Id), storage.MarshalID(edge.Id))
}

// deleteEdge removes an edge and both of its adjacency index entries.
func (s *GraphStore) deleteEdge(tx *badger.Txn, edge *core.GraphEdge) error {
	if err := tx.Delete(makeEdgeKey(edge.Id)); err != nil {
		return err
	}
	if err := tx.Delete(makeEdgeFromKey(edge.From, edge.Id)); err != nil {
		return err
	}
	return tx.Delete(makeEdgeToKey(edge.To, edge.Id))
}

// edgesFrom loads all edges leaving a node via the outgoing index.
func (s *GraphStore) edgesFrom(ctx context.Context, tx *badger.Txn, from core.ID) ([]*core.GraphEdge, error) {
	return s.edgesByIndex(ctx, tx, makePartialEdgeFromKey(from))
}

// edgesTo loads all edges entering a node via the incoming index.
func (s *GraphStore) edgesTo(ctx context.Context, tx *badger.Txn, to core.ID) ([]*core.GraphEdge, error) {
	return s.edgesByIndex(ctx, tx, makePartialEdgeToKey(to))
}

// edgesByIndex scans an adjacency index prefix and loads the edges.
func (s *GraphStore) edgesByIndex(ctx context.Context, tx *badger.Txn, startKey []byte) ([]*core.GraphEdge, error) {
	var edges []*core.GraphEdge

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}

		edge, err := s.readEdge(tx, id)
		if err != nil {
			return nil, err
		}
		if edge != nil {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}
