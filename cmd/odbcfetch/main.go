// Command odbcfetch runs a query through an ODBC data source and prints the
// result as a table or writes it to an xlsx workbook.
package main

import (
	"context"
	"log"
	"os"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
