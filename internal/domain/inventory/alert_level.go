package inventory

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// IsLowStock el umbral es estricto: quantity == threshold no es stock bajo.
func IsLowStock(quantity, threshold int) bool {
	return quantity < threshold
}

// ClassifyAlertLevel devuelve out_of_stock en 0, critical bajo el 30% del umbral y warning en otro caso.
func ClassifyAlertLevel(quantity, threshold int) string {
	switch {
	case quantity <= 0:
		return entity.AlertLevelOutOfStock
	// quantity < threshold*0.3 sin aritmética de punto flotante
	case quantity*10 < threshold*3:
		return entity.AlertLevelCritical
	default:
		return entity.AlertLevelWarning
	}
}
