package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// Page is the canonical shape every catalog API response is normalized into
// at the fetch boundary. Internal logic never sees the raw payload unions.
type Page struct {
	Products   []domain.Product
	LastPage   int
	TotalPages int
	Total      int
}

// PageCount returns the authoritative page count reported by the API for a
// given page size, or 0 when the response carried no pagination metadata.
func (p *Page) PageCount(pageSize int) int {
	if p.LastPage > 0 {
		return p.LastPage
	}
	if p.TotalPages > 0 {
		return p.TotalPages
	}
	if p.Total > 0 && pageSize > 0 {
		return (p.Total + pageSize - 1) / pageSize
	}
	return 0
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type pagedData struct {
	Data       []domain.Product `json:"data"`
	LastPage   int              `json:"last_page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

// normalizePage folds the three response shapes the API is known to produce
// into a Page: products nested under data.data with pagination metadata,
// a flat data array, or a bare top-level array.
func normalizePage(body []byte) (*Page, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if body[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("decode product array: %w", err)
		}
		return &Page{Products: products}, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("api reported failure")
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("response has no data field")
	}

	data := bytes.TrimSpace(env.Data)
	if data[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decode data array: %w", err)
		}
		return &Page{Products: products}, nil
	}

	var paged pagedData
	if err := json.Unmarshal(data, &paged); err != nil {
		return nil, fmt.Errorf("decode paged data: %w", err)
	}
	return &Page{
		Products:   paged.Data,
		LastPage:   paged.LastPage,
		TotalPages: paged.TotalPages,
		Total:      paged.Total,
	}, nil
}
