package scrape

import (
	"fmt"
	"io"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// ParseTable reads the first <table> in an HTML document.
//
// Column names come from every <th> in the table, in document order. Each
// <tr> after the first becomes a record of its <td> texts. Rows without any
// <td> are skipped. Short rows are padded with "" and listed in Table.Ragged;
// a row wider than the header is a parse error.
func ParseTable(r io.Reader) (domain.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.Table{}, &errs.ParseError{Reason: "read html", Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return domain.Table{}, &errs.ParseError{Reason: "no <table> element"}
	}

	var out domain.Table
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		out.Columns = append(out.Columns, util.TrimCell(th.Text()))
	})
	if len(out.Columns) == 0 {
		return domain.Table{}, &errs.ParseError{Reason: "table has no <th> header cells"}
	}

	var rowErr error
	table.Find("tr").Slice(1, goquery.ToEnd).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if cells.Length() > len(out.Columns) {
			rowErr = &errs.ParseError{
				Reason: fmt.Sprintf("row %d has %d cells, header has %d", i+1, cells.Length(), len(out.Columns)),
			}
			return false
		}

		rec := make(domain.Record, len(out.Columns))
		cells.Each(func(j int, td *goquery.Selection) {
			rec[j] = util.TrimCell(td.Text())
		})
		if cells.Length() < len(out.Columns) {
			out.Ragged = append(out.Ragged, len(out.Rows))
		}
		out.Rows = append(out.Rows, rec)
		return true
	})
	if rowErr != nil {
		return domain.Table{}, rowErr
	}
	return out, nil
}
