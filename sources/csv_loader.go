// sources/csv_loader.go
package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/project-catalyst/catalyst-loader/models"
)

// downloadFile downloads a file from a URL and saves it to a local path.
func (c *Client) downloadFile(url string, localSavePath string) error {
	log.Printf("Sources: downloading %s to %s\n", url, localSavePath)

	resp, err := c.http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(localSavePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localSavePath, err)
	}

	outFile, err := os.Create(localSavePath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localSavePath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}

	log.Printf("Sources: successfully downloaded %s\n", url)
	return nil
}

// ParseAssessmentsCsv decodes the vCA aggregate CSV from the given reader.
// csvutil maps the header row onto RawAssessment via its csv tags, so the
// file's headers must match the aggregate format exactly.
func ParseAssessmentsCsv(reader io.Reader) ([]models.RawAssessment, error) {
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for assessments: %w", err)
	}

	var assessments []models.RawAssessment
	for {
		var row models.RawAssessment
		if err := decoder.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode assessments CSV data: %w", err)
		}
		assessments = append(assessments, row)
	}

	log.Printf("Sources: parsed %d assessment rows from CSV.\n", len(assessments))
	return assessments, nil
}

// FetchAssessments loads the assessments CSV from the configured local
// path, downloading it first when a remote URL is configured.
func (c *Client) FetchAssessments() ([]models.RawAssessment, error) {
	localPath := c.cfg.AssessmentsCSV
	if localPath == "" {
		return nil, fmt.Errorf("local path for assessments CSV is not configured")
	}

	if c.cfg.AssessmentsCSVURL != "" {
		if err := c.downloadFile(c.cfg.AssessmentsCSVURL, localPath); err != nil {
			return nil, fmt.Errorf("failed to download assessments CSV: %w", err)
		}
	}

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open assessments CSV %s: %w", localPath, err)
	}
	defer file.Close()

	return ParseAssessmentsCsv(file)
}
