package inventory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/AvalonLA/atelier/internal/domain"
)

// exportRow is the flat catalog row written to CSV and XLSX exports.
type exportRow struct {
	ID       string  `csv:"id"`
	Name     string  `csv:"name"`
	Category string  `csv:"category"`
	Price    float64 `csv:"price"`
	Stock    int     `csv:"stock"`
	Featured bool    `csv:"featured"`
	Visible  bool    `csv:"visible"`
	Tag      string  `csv:"tag"`
}

func (s *Service) exportRows(ctx context.Context) ([]exportRow, error) {
	var products []domain.Product
	if err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	rows := make([]exportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, exportRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Stock:    p.Stock,
			Featured: p.Featured,
			Visible:  p.Visible,
			Tag:      p.Tag,
		})
	}
	return rows, nil
}

// ExportCSV writes the catalog as CSV: one header line plus one line per
// product, fields quoted and doubled per RFC 4180 as needed.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.exportRows(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "write csv")
}

// ExportExcel writes the catalog as an XLSX workbook with one sheet.
func (s *Service) ExportExcel(ctx context.Context, w io.Writer) error {
	rows, err := s.exportRows(ctx)
	if err != nil {
		return err
	}
	sheet := "Sheet1"
	xlsx := excelize.NewFile()
	headers := []string{"id", "name", "category", "price", "stock", "featured", "visible", "tag"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, axis(i, 0), h)
	}
	for r, row := range rows {
		xlsx.SetCellValue(sheet, axis(0, r+1), row.ID)
		xlsx.SetCellValue(sheet, axis(1, r+1), row.Name)
		xlsx.SetCellValue(sheet, axis(2, r+1), row.Category)
		xlsx.SetCellValue(sheet, axis(3, r+1), row.Price)
		xlsx.SetCellValue(sheet, axis(4, r+1), row.Stock)
		xlsx.SetCellValue(sheet, axis(5, r+1), row.Featured)
		xlsx.SetCellValue(sheet, axis(6, r+1), row.Visible)
		xlsx.SetCellValue(sheet, axis(7, r+1), row.Tag)
	}
	return errors.Wrap(xlsx.Write(w), "write xlsx")
}

// axis converts zero-based column/row into an A1 style cell reference.
func axis(col, row int) string {
	var sb strings.Builder
	for col >= 0 {
		sb.WriteByte(byte('A' + col%26))
		col = col/26 - 1
	}
	name := sb.String()
	// builder accumulated letters in reverse
	runes := []rune(name)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return fmt.Sprintf("%s%d", string(runes), row+1)
}
