package rules

import "masterdata-web/internal/models"

func init() {
	Register(&Table{
		Type:            models.MasterItem,
		Label:           "Item Master",
		TableName:       "item_master",
		IDColumn:        "item_id",
		GroupTable:      "item_group_master",
		GroupIDColumn:   "item_group_id",
		GroupNameColumn: "item_group_name",
		Fields: []Field{
			{Key: "itemName", Column: "ItemName", DBColumn: "item_name"},
			{Key: "quality", Column: "Quality", DBColumn: "quality"},
			{Key: "gsm", Column: "GSM", DBColumn: "gsm", Kind: KindNumber},
			{Key: "manufacturer", Column: "Manufacturer", DBColumn: "manufacturer"},
			{Key: "finish", Column: "Finish", DBColumn: "finish"},
			{Key: "caliper", Column: "Caliper", DBColumn: "caliper", Kind: KindNumber},
			{Key: "itemSubGroupName", Column: "ItemSubGroupName", DBColumn: "item_sub_group_name", Reference: RefSubGroup},
			{Key: "productHSNName", Column: "ProductHSNName", DBColumn: "product_hsn_name", Reference: RefHSN},
			{Key: "stockUnit", Column: "StockUnit", DBColumn: "stock_unit", Reference: RefUnit},
			{Key: "purchaseUnit", Column: "PurchaseUnit", DBColumn: "purchase_unit", Reference: RefUnit},
			{Key: "estimationUnit", Column: "EstimationUnit", DBColumn: "estimation_unit", Reference: RefUnit},
			{Key: "purchaseRate", Column: "PurchaseRate", DBColumn: "purchase_rate", Kind: KindNumber},
			{Key: "estimationRate", Column: "EstimationRate", DBColumn: "estimation_rate", Kind: KindNumber},
			{Key: "minimumStockQty", Column: "MinimumStockQty", DBColumn: "minimum_stock_qty", Kind: KindNumber},
			{Key: "shelfLife", Column: "ShelfLife", DBColumn: "shelf_life", Kind: KindNumber},
			{Key: "isStandardItem", Column: "IsStandardItem", DBColumn: "is_standard_item", Kind: KindBool, Enum: BoolValues},
			{Key: "isRegularItem", Column: "IsRegularItem", DBColumn: "is_regular_item", Kind: KindBool, Enum: BoolValues},
			{Key: "itemDescription", Column: "ItemDescription", DBColumn: "item_description"},
		},
		NaturalKey: []string{"itemName"},
		Required:   []string{"itemName", "stockUnit"},
		GroupRequired: map[string][]string{
			"PAPER": {"quality", "gsm", "manufacturer", "finish", "purchaseUnit", "estimationUnit", "productHSNName"},
			"REEL":  {"quality", "gsm", "manufacturer", "purchaseUnit", "productHSNName"},
			"INK":   {"manufacturer", "purchaseUnit", "productHSNName"},
		},
		Derive: deriveItem,
	})
}
