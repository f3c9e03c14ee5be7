package rules

import "masterdata-web/internal/models"

func init() {
	Register(&Table{
		Type:            models.MasterTool,
		Label:           "Tool Master",
		TableName:       "tool_master",
		IDColumn:        "tool_id",
		GroupTable:      "tool_group_master",
		GroupIDColumn:   "tool_group_id",
		GroupNameColumn: "tool_group_name",
		Fields: []Field{
			{Key: "toolName", Column: "ToolName", DBColumn: "tool_name"},
			{Key: "sizeL", Column: "SizeL", DBColumn: "size_l", Kind: KindNumber},
			{Key: "sizeW", Column: "SizeW", DBColumn: "size_w", Kind: KindNumber},
			{Key: "sizeH", Column: "SizeH", DBColumn: "size_h", Kind: KindNumber},
			{Key: "upsAround", Column: "UpsAround", DBColumn: "ups_around", Kind: KindNumber},
			{Key: "upsAcross", Column: "UpsAcross", DBColumn: "ups_across", Kind: KindNumber},
			{Key: "totalUps", Column: "TotalUps", DBColumn: "total_ups", Kind: KindNumber},
			{Key: "toolSubGroupName", Column: "ToolSubGroupName", DBColumn: "tool_sub_group_name", Reference: RefSubGroup},
			{Key: "productHSNName", Column: "ProductHSNName", DBColumn: "product_hsn_name", Reference: RefHSN},
			{Key: "stockUnit", Column: "StockUnit", DBColumn: "stock_unit", Reference: RefUnit},
			{Key: "purchaseUnit", Column: "PurchaseUnit", DBColumn: "purchase_unit", Reference: RefUnit},
			{Key: "purchaseRate", Column: "PurchaseRate", DBColumn: "purchase_rate", Kind: KindNumber},
			{Key: "isStandardItem", Column: "IsStandardItem", DBColumn: "is_standard_item", Kind: KindBool, Enum: BoolValues},
			{Key: "remark", Column: "Remark", DBColumn: "remark"},
		},
		NaturalKey: []string{"sizeL", "sizeW"},
		Required:   []string{"sizeL", "sizeW", "stockUnit"},
		GroupRequired: map[string][]string{
			"DIES":   {"sizeH", "upsAround", "upsAcross", "productHSNName"},
			"PLATES": {"purchaseUnit", "productHSNName"},
		},
		Derive: deriveTool,
	})
}
