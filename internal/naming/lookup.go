package naming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPLookup returns a LookupFunc that fetches the industry-code list as a
// JSON array of {code, name} objects from the given URL. Intended for
// wiring a spreadsheet/API export behind the registry; any failure here is
// absorbed by the registry's fallback.
func HTTPLookup(url string) LookupFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context) ([]Code, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var codes []Code
		if err := json.NewDecoder(resp.Body).Decode(&codes); err != nil {
			return nil, fmt.Errorf("decode code list: %w", err)
		}
		return codes, nil
	}
}
