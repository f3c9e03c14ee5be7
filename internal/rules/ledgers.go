package rules

import "masterdata-web/internal/models"

func init() {
	Register(&Table{
		Type:            models.MasterLedger,
		Label:           "Ledger Master",
		TableName:       "ledger_master",
		IDColumn:        "ledger_id",
		GroupTable:      "ledger_group_master",
		GroupIDColumn:   "ledger_group_id",
		GroupNameColumn: "ledger_group_name",
		Fields: []Field{
			{Key: "ledgerName", Column: "LedgerName", DBColumn: "ledger_name"},
			{Key: "mailingName", Column: "MailingName", DBColumn: "mailing_name"},
			{Key: "address1", Column: "Address1", DBColumn: "address1"},
			{Key: "address2", Column: "Address2", DBColumn: "address2"},
			{Key: "city", Column: "City", DBColumn: "city"},
			{Key: "country", Column: "Country", DBColumn: "country", Reference: RefCountry},
			{Key: "state", Column: "State", DBColumn: "state", Reference: RefState},
			{Key: "pincode", Column: "Pincode", DBColumn: "pincode"},
			{Key: "mobileNo", Column: "MobileNo", DBColumn: "mobile_no"},
			{Key: "email", Column: "Email", DBColumn: "email"},
			{Key: "gstNo", Column: "GSTNo", DBColumn: "gst_no"},
			{Key: "panNo", Column: "PANNo", DBColumn: "pan_no"},
			{Key: "creditDays", Column: "CreditDays", DBColumn: "credit_days", Kind: KindNumber},
			{Key: "gstApplicable", Column: "GSTApplicable", DBColumn: "gst_applicable", Kind: KindBool, Enum: BoolValues},
		},
		NaturalKey: []string{"ledgerName"},
		Required:   []string{"ledgerName", "country", "state"},
		GroupRequired: map[string][]string{
			"SUNDRY DEBTORS":   {"mailingName", "city", "mobileNo"},
			"SUNDRY CREDITORS": {"mailingName", "city", "gstNo"},
		},
	})
}
