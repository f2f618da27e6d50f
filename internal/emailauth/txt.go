package emailauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// queryTXT returns the TXT strings published at name whose lowercase form starts with prefix
func (c *Checker) queryTXT(ctx context.Context, name, prefix string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true

	resp, _, err := c.client.ExchangeContext(ctx, msg, c.server)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDNSLookupFailed, name, err)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: %s: empty response", ErrDNSLookupFailed, name)
	}

	var records []string

	for _, rr := range resp.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}

		record := strings.Join(txt.Txt, "")
		if strings.HasPrefix(strings.ToLower(record), prefix) {
			records = append(records, record)
		}
	}

	return records, nil
}
