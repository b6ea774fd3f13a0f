package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JPrier/JobSearch/internal/errors"
	"github.com/JPrier/JobSearch/internal/models"

	"go.uber.org/zap"
)

// allColumns is the full export schema in output order. Configured drop
// columns are removed from this list before writing.
var allColumns = []string{
	"id",
	"source",
	"title",
	"company",
	"location",
	"date_posted",
	"salary_min",
	"salary_max",
	"is_remote",
	"job_url",
	"composite_score",
	"description",
}

// CSVWriter emits one row per posting into a timestamp-named file, so
// repeated runs never overwrite earlier exports.
type CSVWriter struct {
	dir    string
	drop   map[string]bool
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewCSVWriter(dir string, dropColumns []string, logger *zap.Logger) *CSVWriter {
	drop := make(map[string]bool, len(dropColumns))
	for _, col := range dropColumns {
		drop[col] = true
	}
	return &CSVWriter{
		dir:    dir,
		drop:   drop,
		logger: logger,
		now:    time.Now,
	}
}

// Write exports the postings and returns the created file path. An empty
// posting slice still produces a valid header-only file.
func (w *CSVWriter) Write(postings []models.Posting) (string, error) {
	columns := make([]string, 0, len(allColumns))
	for _, col := range allColumns {
		if !w.drop[col] {
			columns = append(columns, col)
		}
	}

	filename := w.now().Format("20060102_150405") + "_jobs_sorted.csv"
	path := filepath.Join(w.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Internal("creating export file", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			w.logger.Warn("failed to close export file", zap.Error(cerr))
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return "", errors.Internal("writing export header", err)
	}

	for _, p := range postings {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, fieldValue(p, col))
		}
		if err := writer.Write(row); err != nil {
			return "", errors.Internal("writing export row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Internal("flushing export", err)
	}

	w.logger.Info("wrote export file",
		zap.String("path", path),
		zap.Int("rows", len(postings)))
	return path, nil
}

func fieldValue(p models.Posting, column string) string {
	switch column {
	case "id":
		return p.ID
	case "source":
		return p.Source
	case "title":
		return p.Title
	case "company":
		return p.Company
	case "location":
		return p.Location
	case "date_posted":
		if p.DatePosted == nil {
			return ""
		}
		return p.DatePosted.Format(time.RFC3339)
	case "salary_min":
		return formatSalary(p.SalaryMin)
	case "salary_max":
		return formatSalary(p.SalaryMax)
	case "is_remote":
		return p.Remote.String()
	case "job_url":
		return p.JobURL
	case "composite_score":
		return strconv.FormatFloat(p.Score, 'f', -1, 64)
	case "description":
		return p.Description
	}
	panic(fmt.Sprintf("unknown export column %q", column))
}

func formatSalary(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
