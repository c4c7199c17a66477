package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Response is a normalized dispatch result. When the declared content type
// contains "application/json" the body is parsed into Data and IsJSON is
// set; otherwise the body is exposed as Text.
type Response struct {
	StatusCode  int
	Status      string
	ContentType string
	Header      http.Header

	IsJSON bool
	Data   interface{}
	Text   string
}

func normalizeResponse(resp *resty.Response) (*Response, error) {
	out := &Response{
		StatusCode:  resp.StatusCode(),
		Status:      resp.Status(),
		ContentType: resp.Header().Get("Content-Type"),
		Header:      resp.Header(),
	}

	if strings.Contains(out.ContentType, "application/json") {
		if err := json.Unmarshal(resp.Body(), &out.Data); err != nil {
			return nil, fmt.Errorf("decoding json response: %w", err)
		}
		out.IsJSON = true
		return out, nil
	}

	out.Text = string(resp.Body())
	return out, nil
}
