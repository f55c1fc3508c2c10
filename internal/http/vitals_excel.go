package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"carewatch-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

// VitalsExportHeader 生命体征导出表头
var VitalsExportHeader = []string{
	"ID",
	"Device ID",
	"Heart Rate (bpm)",
	"SpO2 (%)",
	"Recorded At",
}

// GenerateVitalsExport 生成生命体征读数的 Excel 导出文件
func GenerateVitalsExport(rows []*domain.VitalsReading) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：WriteTo 之前不能 Close

	sheetName := "Vitals"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range VitalsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{
			row.ID,
			row.DeviceID,
			nil,
			nil,
			row.CreatedAt.Format(time.RFC3339),
		}
		if row.HeartRate != nil {
			values[2] = *row.HeartRate
		}
		if row.SpO2 != nil {
			values[3] = *row.SpO2
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to resolve data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
