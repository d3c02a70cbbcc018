// Package queries embeds the SQL executed against the warehouse.
package queries

import "embed"

//go:embed *.sql
var FS embed.FS

const (
	Schema               = "schema.sql"
	InsertRaw            = "insert__itbi_raw.sql"
	InsertTransformedETL = "insert__itbi_transformed_etl.sql"
	InsertTransformedELT = "insert__itbi_transformed_elt.sql"
	RawViews             = "views__raw.sql"
	FinalViews           = "views__final.sql"
	SelectTransformed    = "query__transformed.sql"
	SelectRollup         = "query__rollup.sql"
)
