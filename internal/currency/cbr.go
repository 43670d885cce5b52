package currency

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// Provider fetches a fresh rate table.
type Provider interface {
	Fetch(ctx context.Context) (*RateTable, error)
}

// StaticProvider always returns the same table.
type StaticProvider struct {
	Table *RateTable
}

func (p StaticProvider) Fetch(_ context.Context) (*RateTable, error) {
	return p.Table, nil
}

// CBRProvider reads the daily rates published by the Central Bank of Russia.
// The feed quotes RUB per Nominal units of each currency.
type CBRProvider struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewCBRProvider initializes a provider for the XML_daily feed at url
func NewCBRProvider(url string, timeout time.Duration, log *logrus.Logger) *CBRProvider {
	return &CBRProvider{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Fetch downloads and parses the feed into a RUB based table
func (p *CBRProvider) Fetch(ctx context.Context) (*RateTable, error) {
	body, err := p.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	table, err := ParseCBRDaily(body)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"currencies": len(table.Currencies()),
		"as_of":      table.AsOf().Format("2006-01-02"),
	}).Info("Retrieved exchange rates")
	return table, nil
}

func (p *CBRProvider) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	p.log.Debugf("CBR XML response: %d bytes", len(body))
	return body, nil
}

// ParseCBRDaily parses a ValCurs document. Values use a decimal comma and the
// document is usually windows-1251 encoded.
func ParseCBRDaily(raw []byte) (*RateTable, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.SelectElement("ValCurs")
	if root == nil {
		return nil, fmt.Errorf("ValCurs element not found in XML")
	}

	asOf := time.Now().UTC()
	if attr := root.SelectAttrValue("Date", ""); attr != "" {
		parsed, err := time.Parse("02.01.2006", attr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", attr, err)
		}
		asOf = parsed
	}

	rates := make(map[string]decimal.Decimal)
	for _, valute := range root.SelectElements("Valute") {
		code := elementText(valute, "CharCode")
		if code == "" {
			continue
		}

		value, err := parseCommaDecimal(elementText(valute, "Value"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse value for %s: %w", code, err)
		}
		nominal, err := parseCommaDecimal(elementText(valute, "Nominal"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse nominal for %s: %w", code, err)
		}
		if !value.IsPositive() || !nominal.IsPositive() {
			continue
		}

		// units of the currency per one rouble
		rates[code] = nominal.Div(value)
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	return NewRateTable("RUB", rates, asOf)
}

func elementText(parent *etree.Element, tag string) string {
	el := parent.SelectElement(tag)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func parseCommaDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "utf8", "":
		return input, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
