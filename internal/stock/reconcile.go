package stock

import (
	"sort"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
)

// Commitment is one aggregated quantity against one authoritative counter.
// GroupID is set when the counter is a merged group's shared pool; otherwise
// ProductID identifies an independently tracked product row.
type Commitment struct {
	ProductID string
	GroupID   *string
	OrgID     string
	Quantity  int64
}

// ComputeCommitments folds an order's items into per-counter quantities.
// Items that resolve to the same merged group are summed into a single
// commitment so the shared pool is adjusted exactly once, never once per
// item.
func ComputeCommitments(items []model.OrderItem, products map[string]model.Product, groups map[string]model.ProductGroup) ([]Commitment, error) {
	productQty := map[string]int64{}
	groupQty := map[string]int64{}
	groupFirstProduct := map[string]string{}

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.Validation("order item for product %s has non-positive quantity", item.ProductID)
		}
		p, ok := products[item.ProductID]
		if !ok {
			return nil, apperrors.NotFound("product %s not found", item.ProductID)
		}

		if p.IsStandalone() {
			productQty[p.ID] += item.Quantity
			continue
		}

		g, ok := groups[*p.GroupID]
		if !ok {
			return nil, apperrors.NotFound("product group %s not found", *p.GroupID)
		}
		if !model.AreUnitsCompatible(p.Unit, g.Unit) {
			return nil, apperrors.Validation("product %s unit %q is not compatible with group unit %q", p.ID, p.Unit, g.Unit)
		}

		switch g.StockMergeType {
		case model.StockMergeMerged:
			groupQty[g.ID] += item.Quantity
			if _, seen := groupFirstProduct[g.ID]; !seen {
				groupFirstProduct[g.ID] = p.ID
			}
		case model.StockMergeIndependent:
			productQty[p.ID] += item.Quantity
		default:
			return nil, apperrors.Validation("product group %s has unknown stock merge type %q", g.ID, g.StockMergeType)
		}
	}

	commitments := make([]Commitment, 0, len(productQty)+len(groupQty))
	for id, qty := range productQty {
		p := products[id]
		commitments = append(commitments, Commitment{ProductID: id, OrgID: p.OrgID, Quantity: qty})
	}
	for id, qty := range groupQty {
		gid := id
		g := groups[id]
		commitments = append(commitments, Commitment{
			ProductID: groupFirstProduct[id],
			GroupID:   &gid,
			OrgID:     g.OrgID,
			Quantity:  qty,
		})
	}

	// Stable order keeps lock acquisition and audit output deterministic.
	sort.Slice(commitments, func(i, j int) bool {
		ki, kj := commitments[i].ProductID, commitments[j].ProductID
		if commitments[i].GroupID != nil {
			ki = *commitments[i].GroupID
		}
		if commitments[j].GroupID != nil {
			kj = *commitments[j].GroupID
		}
		return ki < kj
	})
	return commitments, nil
}

// AdjustmentDirection resolves whether a transition debits, credits, or
// leaves stock alone. Debit happens exactly once, on first reaching
// confirmed; credit happens only for a cancellation of a committed order.
func AdjustmentDirection(order *model.Order, to model.OrderStatus) int64 {
	switch to {
	case model.OrderStatusConfirmed:
		if order.StockCommittedAt == nil {
			return -1
		}
	case model.OrderStatusCancelled:
		if order.StockCommittedAt != nil {
			return 1
		}
	}
	return 0
}
