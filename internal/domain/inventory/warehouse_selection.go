package inventory

import (
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// SelectWarehouse elige, entre las bodegas que tienen el producto, la de mayor cantidad
// que cubra por sí sola lo solicitado. Empates por id ascendente para que la elección sea reproducible.
// No intenta cumplimiento parcial desde varias bodegas: devuelve nil si ninguna alcanza.
func SelectWarehouse(levels []*entity.WarehouseStock, requested int) *entity.WarehouseStock {
	candidates := make([]*entity.WarehouseStock, 0, len(levels))
	for _, l := range levels {
		if l != nil && l.Quantity >= requested {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Quantity != candidates[j].Quantity {
			return candidates[i].Quantity > candidates[j].Quantity
		}
		return candidates[i].WarehouseID < candidates[j].WarehouseID
	})
	return candidates[0]
}

// LockOrder devuelve las dos bodegas en orden canónico de bloqueo.
// Dos traslados en sentidos opuestos entre el mismo par bloquean siempre en el mismo orden.
func LockOrder(a, b string) (first, second string) {
	if a <= b {
		return a, b
	}
	return b, a
}
