// sources/availability_checker.go
package sources

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matches the per-fund data folder names in the voter-tool repository
// listing, e.g. "f9".
var fundFolderRegex = regexp.MustCompile(`^f(\d+)$`)

// CheckFundDataAvailable scrapes the voter-tool data folder listing and
// reports whether an f<N> folder exists for the given fund. A definitive
// "no folder" answer lets a push abort before touching the database.
func (c *Client) CheckFundDataAvailable(fundNumber int) (bool, error) {
	pageURL := c.cfg.DataIndexPage
	selector := c.cfg.FolderLinkSelector
	if selector == "" {
		log.Println("WARN Sources: no link selector configured for the data folder listing, using 'a'.")
		selector = "a"
	}
	log.Printf("Sources: checking data availability for fund %d on %s (selector: %q)\n",
		fundNumber, pageURL, selector)

	res, err := c.http.Get(pageURL)
	if err != nil {
		return false, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return false, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	found := false
	doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		matches := fundFolderRegex.FindStringSubmatch(text)
		if len(matches) < 2 {
			return true
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return true
		}
		if n == fundNumber {
			found = true
			return false
		}
		return true
	})

	if found {
		log.Printf("Sources: fund %d data folder is present in the voter-tool repository.\n", fundNumber)
	} else {
		log.Printf("WARN Sources: no f%d data folder found on %s.\n", fundNumber, pageURL)
	}
	return found, nil
}
