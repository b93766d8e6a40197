package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderSummary(rows []SummaryRow) (string, error)
}

type CsvReportRendererImpl struct {
}

func NewCsvReportRenderer() *CsvReportRendererImpl {
	return &CsvReportRendererImpl{}
}

func (t *CsvReportRendererImpl) RenderSummary(rows []SummaryRow) (string, error) {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, []string{"Month", "Income", "Expenses", "Savings", "Savings rate"})
	for _, row := range rows {
		data = append(data, []string{
			fmt.Sprintf("%04d-%02d", row.Year, int(row.Month)),
			row.Income.String(),
			row.Expenses.String(),
			row.Savings.String(),
			strconv.FormatFloat(row.SavingsRate, 'f', 1, 64) + "%",
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
