package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/enums"
	pkgerrors "github.com/monplancbd/storefront/pkg/errors"
	"github.com/monplancbd/storefront/pkg/logger"
)

// Loader fetches the product catalog from the upstream product API.
type Loader struct {
	baseURL string
	client  *http.Client
	logg    *logger.Logger
}

// NewLoader builds a catalog loader for the configured upstream.
func NewLoader(cfg config.CatalogConfig, logg *logger.Logger) *Loader {
	return &Loader{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		logg:    logg,
	}
}

// upstreamProduct mirrors the product API payload. The upstream is loose with
// scalar types (ids and stock arrive as strings or numbers), hence flexValue.
type upstreamProduct struct {
	ID         flexValue                `json:"id"`
	Name       string                   `json:"name"`
	Slug       string                   `json:"slug"`
	Category   string                   `json:"category"`
	CategoryID flexValue                `json:"categoryId"`
	PricesPer  string                   `json:"pricesPer"`
	Stock      flexValue                `json:"stock"`
	VATRate    decimal.Decimal          `json:"VATRate"`
	IsPromo    bool                     `json:"isPromo"`
	Prices     map[string]upstreamPrice `json:"prices"`
	Images     struct {
		Main Image `json:"main"`
	} `json:"images"`
	Ratings Ratings `json:"ratings"`
}

type upstreamPrice struct {
	Price decimal.Decimal `json:"price"`
}

// Fetch loads and normalizes the full catalog, sorted by name for a stable
// display order. Entries without a usable price map are skipped, matching the
// storefront's tolerance for half-configured products upstream.
func (l *Loader) Fetch(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog fetch returned status %d", resp.StatusCode))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog payload")
	}

	products := make([]Product, 0, len(payload))
	for key, raw := range payload {
		var entry upstreamProduct
		if err := json.Unmarshal(raw, &entry); err != nil {
			if l.logg != nil {
				l.logg.Warn(l.logg.WithProductID(ctx, key), "skipping malformed catalog entry")
			}
			continue
		}
		product, ok := normalizeProduct(key, entry)
		if !ok {
			continue
		}
		products = append(products, *product)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func normalizeProduct(key string, entry upstreamProduct) (*Product, bool) {
	if len(entry.Prices) == 0 {
		return nil, false
	}

	options := make(map[int]decimal.Decimal, len(entry.Prices))
	for rawOption, price := range entry.Prices {
		option, err := strconv.Atoi(rawOption)
		if err != nil || option <= 0 {
			continue
		}
		options[option] = price.Price
	}
	if len(options) == 0 {
		return nil, false
	}

	id := entry.ID.String()
	if id == "" {
		id = key
	}

	per, err := enums.ParsePriceUnit(entry.PricesPer)
	if err != nil {
		per = enums.PriceUnitItem
	}

	sorted := sortOptions(options)

	return &Product{
		ID:            id,
		Name:          entry.Name,
		Slug:          entry.Slug,
		Kind:          enums.KindForCategory(entry.Category),
		Category:      entry.Category,
		CategoryID:    entry.CategoryID.String(),
		PricesPer:     per,
		Options:       options,
		Stock:         entry.Stock.Int(),
		VATRate:       entry.VATRate,
		IsPromo:       entry.IsPromo,
		Image:         entry.Images.Main,
		Ratings:       entry.Ratings,
		DefaultOption: sorted[0].Option,
	}, true
}

// flexValue tolerates upstream fields that arrive as either JSON strings or
// numbers.
type flexValue string

func (f *flexValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexValue(n.String())
	return nil
}

func (f flexValue) String() string {
	return string(f)
}

// Int parses the value as a base-10 integer, returning zero on anything else.
func (f flexValue) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return n
}
