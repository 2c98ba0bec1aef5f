package constants

// ColumnType is the inferred data type of a table column.
type ColumnType string

const (
	ColumnCurrency   ColumnType = "currency"
	ColumnPercentage ColumnType = "percentage"
	ColumnDate       ColumnType = "date"
	ColumnNumeric    ColumnType = "numeric"
	ColumnText       ColumnType = "text"
)
