package scraper

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/natsites/nps-places/internal/cache"
	"github.com/natsites/nps-places/internal/logger"
	"github.com/natsites/nps-places/internal/site"
)

const (
	BaseURL  = "https://www.nps.gov"
	HomePath = "/index.htm"

	// Park links on state pages point at the park directory ("/isro/").
	detailPageSuffix = "index.htm"
)

// Getter performs the network request for a cache miss.
type Getter interface {
	Get(url string) ([]byte, error)
}

// StateIndex maps a lowercase state name to its listing page URL.
type StateIndex map[string]string

// Lookup finds a state by name, ignoring case and surrounding whitespace.
func (idx StateIndex) Lookup(name string) (string, bool) {
	u, ok := idx[strings.ToLower(strings.TrimSpace(name))]
	return u, ok
}

// Names returns the state names in alphabetical order.
func (idx StateIndex) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scraper reads nps.gov pages through the response cache
type Scraper struct {
	client  Getter
	cache   *cache.Cache
	baseURL string
}

// New creates a Scraper. An empty baseURL means BaseURL.
func New(client Getter, c *cache.Cache, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Scraper{
		client:  client,
		cache:   c,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// HomeURL returns the homepage holding the state list.
func (s *Scraper) HomeURL() string {
	return s.baseURL + HomePath
}

// page returns the HTML at pageURL, from the cache when present.
func (s *Scraper) page(pageURL string) (*goquery.Document, error) {
	html, err := s.cache.GetText(pageURL, func() ([]byte, error) {
		return s.client.Get(pageURL)
	})
	if err != nil {
		return nil, err
	}
	return parseDocument(strings.NewReader(html))
}

// BuildStateIndex reads the homepage and returns the state name to page URL map.
func (s *Scraper) BuildStateIndex() (StateIndex, error) {
	doc, err := s.page(s.HomeURL())
	if err != nil {
		return nil, fmt.Errorf("fetching homepage: %w", err)
	}

	idx, err := parseStateIndex(doc, s.HomeURL(), s.baseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("state index built", logger.Fields{"states": len(idx)})
	return idx, nil
}

// FetchSite reads one park detail page.
func (s *Scraper) FetchSite(detailURL string) (site.Record, error) {
	doc, err := s.page(detailURL)
	if err != nil {
		return site.Record{}, fmt.Errorf("fetching site page: %w", err)
	}
	return parseSite(doc, detailURL)
}

// FetchSitesForState reads a state page and then every park it links to,
// one after another, returning the records in page order.
func (s *Scraper) FetchSitesForState(stateURL string) ([]site.Record, error) {
	doc, err := s.page(stateURL)
	if err != nil {
		return nil, fmt.Errorf("fetching state page: %w", err)
	}

	links, err := parseSiteLinks(doc, stateURL, s.baseURL)
	if err != nil {
		return nil, err
	}

	records := make([]site.Record, 0, len(links))
	for _, link := range links {
		record, err := s.FetchSite(link)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	logger.SetGauge("scraper.sites", float64(len(records)))
	logger.Debug("state sites fetched", logger.Fields{"url": stateURL, "sites": len(records)})
	return records, nil
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// parseStateIndex extracts the state list from the homepage search widget.
func parseStateIndex(doc *goquery.Document, pageURL, baseURL string) (StateIndex, error) {
	widget := doc.Find("div.SearchBar-keywordSearch").First()
	if widget.Length() == 0 {
		return nil, &ParseError{URL: pageURL, Element: "state search widget"}
	}

	idx := make(StateIndex)
	widget.Find("li").Each(func(i int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		name := strings.ToLower(strings.TrimSpace(a.Text()))
		if !ok || name == "" {
			return
		}
		idx[name] = resolve(baseURL, href)
	})

	return idx, nil
}

// parseSiteLinks returns the detail page URL of every park on a state page.
func parseSiteLinks(doc *goquery.Document, pageURL, baseURL string) ([]string, error) {
	list := doc.Find("#list_parks").First()
	if list.Length() == 0 {
		return nil, &ParseError{URL: pageURL, Element: "#list_parks"}
	}

	links := make([]string, 0)
	list.Find("h3").Each(func(i int, h3 *goquery.Selection) {
		href, ok := h3.Find("a").First().Attr("href")
		if !ok {
			logger.Warn("park heading without link", logger.Fields{"url": pageURL, "heading": strings.TrimSpace(h3.Text())})
			return
		}
		links = append(links, resolve(baseURL, href)+detailPageSuffix)
	})

	return links, nil
}

// parseSite extracts a site record from a park detail page.
func parseSite(doc *goquery.Document, pageURL string) (site.Record, error) {
	hero := doc.Find("div.Hero-titleContainer").First()
	if hero.Length() == 0 {
		return site.Record{}, &ParseError{URL: pageURL, Element: "hero title container"}
	}

	nameLink := hero.Find("a").First()
	if nameLink.Length() == 0 {
		return site.Record{}, &ParseError{URL: pageURL, Element: "site name"}
	}

	designation := hero.Find("div.Hero-designationContainer span.Hero-designation").First()
	if designation.Length() == 0 {
		return site.Record{}, &ParseError{URL: pageURL, Element: "site designation"}
	}

	var addr *site.PostalAddress
	if doc.Find("p.adr").Length() > 0 {
		addr = &site.PostalAddress{
			Locality:   itemprop(doc, "addressLocality"),
			Region:     itemprop(doc, "addressRegion"),
			PostalCode: itemprop(doc, "postalCode"),
		}
	}

	phone := doc.Find(`span[itemprop="telephone"]`)
	if phone.Length() == 0 {
		logger.Warn("site page has no phone", logger.Fields{"url": pageURL})
	}

	return site.NewRecord(
		strings.TrimSpace(nameLink.Text()),
		strings.TrimSpace(designation.Text()),
		addr,
		phone.First().Text(),
		pageURL,
	), nil
}

func itemprop(doc *goquery.Document, name string) string {
	return strings.TrimSpace(doc.Find(`span[itemprop="` + name + `"]`).First().Text())
}

// resolve makes href absolute against baseURL when it is a relative path.
func resolve(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
