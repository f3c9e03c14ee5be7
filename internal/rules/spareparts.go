package rules

import "masterdata-web/internal/models"

func init() {
	Register(&Table{
		Type:            models.MasterSparePart,
		Label:           "Spare Part Master",
		TableName:       "spare_part_master",
		IDColumn:        "spare_part_id",
		GroupTable:      "spare_part_group_master",
		GroupIDColumn:   "spare_part_group_id",
		GroupNameColumn: "spare_part_group_name",
		Fields: []Field{
			{Key: "sparePartName", Column: "SparePartName", DBColumn: "spare_part_name"},
			{Key: "sparePartSubGroupName", Column: "SparePartSubGroupName", DBColumn: "spare_part_sub_group_name", Reference: RefSubGroup},
			{Key: "machineName", Column: "MachineName", DBColumn: "machine_name"},
			{Key: "productHSNName", Column: "ProductHSNName", DBColumn: "product_hsn_name", Reference: RefHSN},
			{Key: "unit", Column: "Unit", DBColumn: "unit", Reference: RefUnit},
			{Key: "rate", Column: "Rate", DBColumn: "rate", Kind: KindNumber},
			{Key: "minimumStockQty", Column: "MinimumStockQty", DBColumn: "minimum_stock_qty", Kind: KindNumber},
			{Key: "purchaseOrderQuantity", Column: "PurchaseOrderQuantity", DBColumn: "purchase_order_quantity", Kind: KindNumber},
			{Key: "description", Column: "Description", DBColumn: "description"},
		},
		NaturalKey: []string{"sparePartName"},
		Required:   []string{"sparePartName", "unit", "productHSNName"},
	})
}
