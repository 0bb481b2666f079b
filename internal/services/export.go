package services

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/models"
)

const (
	ExportFileName = "youtube_channels.csv"
	// LatestVideoLayout is how the Latest Video column is written. Fractional
	// seconds are only printed when present.
	LatestVideoLayout = "2006-01-02 15:04:05.999999999"
)

var csvHeader = []string{"Channel Title", "Subscribers", "Videos", "Latest Video", "Channel Link"}

func WriteCSV(w io.Writer, records []models.ChannelRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}

	for _, r := range records {
		latest := ""
		if r.LatestUpload != nil {
			latest = r.LatestUpload.UTC().Format(LatestVideoLayout)
		}
		row := []string{
			r.Title,
			strconv.FormatUint(r.SubscriberCount, 10),
			strconv.FormatUint(r.VideoCount, 10),
			latest,
			r.ChannelURL,
		}
		if err := cw.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write csv row", goerr.V("channel_url", r.ChannelURL))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush csv")
	}
	return nil
}

// ReadCSV parses a file produced by WriteCSV back into records.
func ReadCSV(r io.Reader) ([]models.ChannelRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read csv")
	}
	if len(rows) == 0 {
		return nil, goerr.New("csv has no header")
	}

	records := make([]models.ChannelRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, goerr.New("unexpected column count", goerr.V("line", i+2), goerr.V("columns", len(row)))
		}

		subs, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid subscriber count", goerr.V("line", i+2))
		}
		videos, err := strconv.ParseUint(row[2], 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid video count", goerr.V("line", i+2))
		}

		rec := models.ChannelRecord{
			ChannelID:       strings.TrimPrefix(row[4], models.ChannelURLPrefix),
			Title:           row[0],
			SubscriberCount: subs,
			VideoCount:      videos,
			ChannelURL:      row[4],
		}
		if row[3] != "" {
			t, err := time.Parse(LatestVideoLayout, row[3])
			if err != nil {
				return nil, goerr.Wrap(err, "invalid latest video timestamp", goerr.V("line", i+2))
			}
			rec.LatestUpload = &t
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExportCSVFile writes records to dir/youtube_channels.csv and returns the path.
func ExportCSVFile(dir string, records []models.ChannelRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create export directory", goerr.V("dir", dir))
	}

	path := filepath.Join(dir, ExportFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create export file", goerr.V("path", path))
	}
	defer file.Close()

	if err := WriteCSV(file, records); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close export file", goerr.V("path", path))
	}
	return path, nil
}
