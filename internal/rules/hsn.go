package rules

import "masterdata-web/internal/models"

// ProductCategories is the strict category set of HSN rows.
var ProductCategories = []string{"Raw Material", "Finish Goods", "Spare Parts", "Service", "Tool"}

func init() {
	Register(&Table{
		Type:            models.MasterHSN,
		Label:           "HSN Master",
		TableName:       "hsn_master",
		IDColumn:        "product_hsn_id",
		GroupTable:      "hsn_group_master",
		GroupIDColumn:   "hsn_group_id",
		GroupNameColumn: "hsn_group_name",
		Fields: []Field{
			{Key: "productHSNName", Column: "ProductHSNName", DBColumn: "product_hsn_name"},
			{Key: "hsnCode", Column: "HSNCode", DBColumn: "hsn_code"},
			{Key: "productCategory", Column: "ProductCategory", DBColumn: "product_category", Enum: ProductCategories},
			{Key: "gstTaxPercentage", Column: "GSTTaxPercentage", DBColumn: "gst_tax_percentage", Kind: KindNumber},
			{Key: "cgstTaxPercentage", Column: "CGSTTaxPercentage", DBColumn: "cgst_tax_percentage", Kind: KindNumber},
			{Key: "sgstTaxPercentage", Column: "SGSTTaxPercentage", DBColumn: "sgst_tax_percentage", Kind: KindNumber},
			{Key: "igstTaxPercentage", Column: "IGSTTaxPercentage", DBColumn: "igst_tax_percentage", Kind: KindNumber},
			{Key: "isServiceHSN", Column: "IsServiceHSN", DBColumn: "is_service_hsn", Kind: KindBool, Enum: BoolValues},
			{Key: "description", Column: "Description", DBColumn: "description"},
		},
		NaturalKey: []string{"productHSNName"},
		Required:   []string{"productHSNName", "hsnCode", "gstTaxPercentage"},
		// HSN uploads have always been accepted regardless of filename case.
		CaseInsensitiveFilename: true,
		Derive:                  deriveHSN,
	})
}
