package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/paulexconde/surveyflow/pkg/fault"
)

// HTTPProvider talks to a redirect-based identity gateway over its two
// endpoints: /begin for the respondent redirect and /tickets/{ticket} for
// the server-side ticket exchange.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) BeginURL(state string) string {
	return p.baseURL + "/begin?state=" + url.QueryEscape(state)
}

func (p *HTTPProvider) Resolve(ctx context.Context, ticket string) (*Identity, error) {
	reqURL := p.baseURL + "/tickets/" + url.PathEscape(ticket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fault.NewInternalError("building ticket request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fault.NewInternalError("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fault.NewClientError("unknown identity ticket", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.NewInternalError(fmt.Sprintf("identity provider returned status %d", resp.StatusCode), nil)
	}

	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return nil, fault.NewInternalError("decoding identity payload", err)
	}

	return &ident, nil
}
