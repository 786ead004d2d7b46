package fileparser

import "strings"

// columnAliases maps accepted header spellings to the canonical column names.
// Canonical names always map to themselves.
var columnAliases = map[string][]string{
	"amount":               {"value", "total", "price", "sum"},
	"date":                 {"transaction date", "trans date", "posted date", "posting date"},
	"name":                 {"description", "memo", "transaction", "details"},
	"merchant_name":        {"merchant", "merchant name", "payee", "vendor"},
	"account_name":         {"account", "account name"},
	"account_type":         {"account type", "type"},
	"account_subtype":      {"account subtype", "subtype"},
	"plaid_transaction_id": {"transaction id", "transaction_id", "id"},
	"iso_currency_code":    {"currency", "currency code"},
	"pending":              {"is pending", "status"},
	"transaction_type":     {"transaction type", "trans type"},
	"category_name":        {"category", "category name"},
	"subcategory_name":     {"subcategory", "subcategory name", "sub category"},
	"notes":                {"note", "comment", "comments"},
	"tags":                 {"tag", "labels"},
}

var canonicalColumns = buildCanonicalColumns()

func buildCanonicalColumns() map[string]string {
	out := make(map[string]string)
	for canonical, aliases := range columnAliases {
		out[canonical] = canonical
		for _, alias := range aliases {
			out[alias] = canonical
		}
	}
	return out
}

// normalizeHeader maps a header cell to its canonical column name. Unknown
// headers are returned lowercased and are ignored by the decoder.
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	if canonical, ok := canonicalColumns[h]; ok {
		return canonical
	}
	return h
}
