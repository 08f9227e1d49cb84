package storage

import (
	"strings"

	"dataval/internal/dataset"
)

var sqlKinds = map[string]dataset.Kind{
	"INT": dataset.KindInteger, "INTEGER": dataset.KindInteger, "INT2": dataset.KindInteger,
	"INT4": dataset.KindInteger, "INT8": dataset.KindInteger, "TINYINT": dataset.KindInteger,
	"SMALLINT": dataset.KindInteger, "MEDIUMINT": dataset.KindInteger, "BIGINT": dataset.KindInteger,
	"SERIAL": dataset.KindInteger, "BIGSERIAL": dataset.KindInteger, "SMALLSERIAL": dataset.KindInteger,

	"REAL": dataset.KindFloat, "FLOAT": dataset.KindFloat, "FLOAT4": dataset.KindFloat,
	"FLOAT8": dataset.KindFloat, "DOUBLE": dataset.KindFloat, "DOUBLE PRECISION": dataset.KindFloat,
	"DECIMAL": dataset.KindFloat, "NUMERIC": dataset.KindFloat, "MONEY": dataset.KindFloat,
	"SMALLMONEY": dataset.KindFloat,

	"BOOL": dataset.KindBoolean, "BOOLEAN": dataset.KindBoolean, "BIT": dataset.KindBoolean,

	"DATE": dataset.KindDatetime, "DATETIME": dataset.KindDatetime, "DATETIME2": dataset.KindDatetime,
	"SMALLDATETIME": dataset.KindDatetime, "DATETIMEOFFSET": dataset.KindDatetime,
	"TIMESTAMP": dataset.KindDatetime, "TIMESTAMPTZ": dataset.KindDatetime,
	"TIMESTAMP WITH TIME ZONE": dataset.KindDatetime, "TIMESTAMP WITHOUT TIME ZONE": dataset.KindDatetime,

	"ENUM": dataset.KindCategory,

	"CHAR": dataset.KindText, "VARCHAR": dataset.KindText, "TEXT": dataset.KindText,
	"NCHAR": dataset.KindText, "NVARCHAR": dataset.KindText, "NTEXT": dataset.KindText,
	"CHARACTER": dataset.KindText, "CHARACTER VARYING": dataset.KindText, "BPCHAR": dataset.KindText,
	"CLOB": dataset.KindText, "TINYTEXT": dataset.KindText, "MEDIUMTEXT": dataset.KindText,
	"LONGTEXT": dataset.KindText, "UUID": dataset.KindText, "UNIQUEIDENTIFIER": dataset.KindText,
	"NAME": dataset.KindText, "CITEXT": dataset.KindText, "STRING": dataset.KindText,

	// Would otherwise hit the affinity fallback.
	"POINT": dataset.KindObject, "INTERVAL": dataset.KindObject, "JSON": dataset.KindObject,
	"JSONB": dataset.KindObject, "BLOB": dataset.KindObject, "BYTEA": dataset.KindObject,
	"BINARY": dataset.KindObject, "VARBINARY": dataset.KindObject, "XML": dataset.KindObject,
}

// KindForSQLType maps a driver-reported column type name (as returned by
// sql.ColumnType.DatabaseTypeName or a declared SQLite type) onto a physical
// kind. Size and precision suffixes are ignored. Names not in the table fall
// back to SQLite's affinity rules; anything else is KindObject.
func KindForSQLType(name string) dataset.Kind {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	n = strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(n, " UNSIGNED"), "UNSIGNED "))
	if n == "" {
		return dataset.KindObject
	}
	if k, ok := sqlKinds[n]; ok {
		return k
	}
	switch {
	case strings.Contains(n, "INT"):
		return dataset.KindInteger
	case strings.Contains(n, "CHAR"), strings.Contains(n, "CLOB"), strings.Contains(n, "TEXT"):
		return dataset.KindText
	case strings.Contains(n, "REAL"), strings.Contains(n, "FLOA"), strings.Contains(n, "DOUB"):
		return dataset.KindFloat
	}
	return dataset.KindObject
}
