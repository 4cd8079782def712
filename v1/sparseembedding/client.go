package sparseembedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// Language is the stemming language of the BM25 tokenizer.
type Language string

const (
	Arabic     Language = "arabic"
	Basque     Language = "basque"
	Catalan    Language = "catalan"
	Danish     Language = "danish"
	Dutch      Language = "dutch"
	English    Language = "english"
	Finnish    Language = "finnish"
	French     Language = "french"
	German     Language = "german"
	Greek      Language = "greek"
	Hungarian  Language = "hungarian"
	Indonesian Language = "indonesian"
	Italian    Language = "italian"
	Norwegian  Language = "norwegian"
	Portuguese Language = "portuguese"
	Romanian   Language = "romanian"
	Russian    Language = "russian"
	Spanish    Language = "spanish"
	Swedish    Language = "swedish"
	Turkish    Language = "turkish"
)

// BM25EmbedRequest is the body of POST /embed/bm25.
type BM25EmbedRequest struct {
	Text string `json:"text"`

	// Language is sent as a query parameter. Empty means auto-detection.
	Language Language `json:"-"`

	// AverageWordCount is the average word count after stemming and stop word
	// removal. The service defaults to 256.
	AverageWordCount *int `json:"average_word_count,omitempty"`
}

// SparseVector is the service's representation of a BM25 embedding.
// Dimension is only present on newer service versions.
type SparseVector struct {
	Indices   []int     `json:"indices"`
	Values    []float32 `json:"values"`
	Dimension *int      `json:"dimension,omitempty"`
}

// ValidationError is one entry of a 422 response.
type ValidationError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// HTTPValidationError is the body of a 422 response.
type HTTPValidationError struct {
	Detail []ValidationError `json:"detail,omitempty"`
}

func (e *HTTPValidationError) Error() string {
	msgs := make([]string, len(e.Detail))
	for i, d := range e.Detail {
		msgs[i] = fmt.Sprintf("%v: %s", d.Loc, d.Msg)
	}
	return strings.Join(msgs, "; ")
}

// HttpRequestDoer performs HTTP requests. *http.Client satisfies it.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn may modify a request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client issues raw requests against the BM25 service.
type Client struct {
	// Server is the base URL, always ending with a slash.
	Server string

	Client HttpRequestDoer

	// RequestEditors run on every request, before per-call editors.
	RequestEditors []RequestEditorFn
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// NewClient creates a Client for the service at server.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	if server == "" {
		return nil, fmt.Errorf("sparseembedding: server URL is required")
	}
	client := Client{Server: server}
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	if client.Client == nil {
		client.Client = &http.Client{}
	}
	return &client, nil
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn adds an editor applied to every request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

// EmbedBm25 posts body to /embed/bm25 and returns the raw response.
func (c *Client) EmbedBm25(ctx context.Context, body BM25EmbedRequest, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewEmbedBm25Request(c.Server, body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// NewEmbedBm25Request builds the request for EmbedBm25.
func NewEmbedBm25Request(server string, body BM25EmbedRequest) (*http.Request, error) {
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	queryURL, err := serverURL.Parse("embed/bm25")
	if err != nil {
		return nil, err
	}

	if body.Language != "" {
		queryFrag, err := runtime.StyleParamWithLocation("form", true, "language", runtime.ParamLocationQuery, body.Language)
		if err != nil {
			return nil, err
		}
		query, err := url.ParseQuery(queryFrag)
		if err != nil {
			return nil, err
		}
		queryURL.RawQuery = query.Encode()
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, queryURL.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	return req, nil
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	for _, r := range additionalEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ClientWithResponses wraps Client and decodes the responses.
type ClientWithResponses struct {
	ClientInterface *Client
}

// NewClientWithResponses creates a ClientWithResponses for server.
func NewClientWithResponses(server string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewClient(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientWithResponses{ClientInterface: client}, nil
}

// EmbedBm25Response is the decoded response of EmbedBm25.
type EmbedBm25Response struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *SparseVector
	JSON422      *HTTPValidationError
}

// StatusCode returns the HTTP status code, or 0 without a response.
func (r EmbedBm25Response) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

// EmbedBm25WithResponse calls EmbedBm25 and decodes the body.
func (c *ClientWithResponses) EmbedBm25WithResponse(ctx context.Context, body BM25EmbedRequest, reqEditors ...RequestEditorFn) (*EmbedBm25Response, error) {
	rsp, err := c.ClientInterface.EmbedBm25(ctx, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseEmbedBm25Response(rsp)
}

// ParseEmbedBm25Response reads and decodes rsp, closing its body.
func ParseEmbedBm25Response(rsp *http.Response) (*EmbedBm25Response, error) {
	bodyBytes, err := io.ReadAll(rsp.Body)
	defer func() { _ = rsp.Body.Close() }()
	if err != nil {
		return nil, err
	}

	response := &EmbedBm25Response{Body: bodyBytes, HTTPResponse: rsp}

	switch {
	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && rsp.StatusCode == http.StatusOK:
		var dest SparseVector
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON200 = &dest

	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && rsp.StatusCode == http.StatusUnprocessableEntity:
		var dest HTTPValidationError
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON422 = &dest
	}

	return response, nil
}
