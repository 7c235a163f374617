package dbtest

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ProductColumns mirrors a subset of SalesLT.Product.
var ProductColumns = []string{
	"ProductID", "Name", "ProductNumber", "Color", "StandardCost",
	"Weight", "SellStartDate", "DiscontinuedDate", "rowguid", "ThumbNailPhoto",
}

var productTypes = []string{
	"INT", "NVARCHAR", "NVARCHAR", "NVARCHAR", "MONEY",
	"DECIMAL", "DATETIME", "DATETIME", "UNIQUEIDENTIFIER", "VARBINARY",
}

// ProductRows builds n product rows. Row i has ProductID 680+i.
func ProductRows(n int) [][]driver.Value {
	out := make([][]driver.Value, 0, n)
	start := time.Date(2008, 4, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		var color driver.Value
		if i%2 == 0 {
			color = "Black"
		}
		out = append(out, []driver.Value{
			int64(680 + i),
			fmt.Sprintf("HL Road Frame - %d", 58+i),
			fmt.Sprintf("FR-R92B-%d", 58+i),
			color,
			[]byte("1059.3100"),
			[]byte("1016.04"),
			start,
			nil,
			// uniqueidentifier wire order: first three groups little-endian.
			[]byte{0x39, 0xf5, 0xf1, 0x43, 0xcd, 0x39, 0xc5, 0x4d, 0xab, 0x2d, 0x2d, 0x4e, 0x37, 0x5b, 0x44, byte(i)},
			[]byte{0x47, 0x49, 0x46},
		})
	}
	return out
}

func ProductTable(n int) Table {
	return Table{
		Columns: ProductColumns,
		Types:   productTypes,
		Rows:    ProductRows(n),
	}
}
