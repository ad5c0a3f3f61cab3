/*
Package client 权重服务的 HTTP 客户端，weightctl 与集成测试共用。

所有方法在非 2xx 或 success=false 时返回 *APIError。
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"weighthub/api/response"
	weightapp "weighthub/application/weight"
)

const (
	DefaultTimeout   = 30 * time.Second
	keepaliveTimeout = 30 * time.Second

	UserAgent  = "weightctl/1.0"
	weightPath = "/api/v1/weights"
)

// APIError 服务端返回的错误
type APIError struct {
	Status    int
	Code      string
	Field     string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	if e.Field != "" {
		msg += " (field " + e.Field + ")"
	}
	if e.RequestID != "" {
		msg += " [request_id=" + e.RequestID + "]"
	}
	return msg
}

type Client struct {
	baseURL string
	client  *http.Client
}

type Option func(*Client)

// WithHTTPClient 替换默认的 http.Client，常用于设置超时
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New baseURL 例如 http://localhost:8080，不含 /api/v1
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DefaultTimeout,
					KeepAlive: keepaliveTimeout,
				}).DialContext,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create 返回服务端分配的 id，取自 Location 头
func (c *Client) Create(ctx context.Context, req weightapp.CreateWeightRequest) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, weightPath, nil, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if _, err := decode[string](resp); err != nil {
		return 0, err
	}

	location := resp.Header.Get("Location")
	id, err := strconv.ParseInt(path.Base(location), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected Location header %q", location)
	}
	return id, nil
}

// Update PUT /weights，全量替换
func (c *Client) Update(ctx context.Context, req weightapp.UpdateWeightRequest) error {
	resp, err := c.do(ctx, http.MethodPut, weightPath, nil, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = decode[string](resp)
	return err
}

// Get GET /weights/:id
func (c *Client) Get(ctx context.Context, id int64) (*weightapp.WeightRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, idPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	record, err := decode[weightapp.WeightRecord](resp)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List nil 的 Weight 与 Enable 不会出现在查询串中
func (c *Client) List(ctx context.Context, req weightapp.ListWeightRequest) (*weightapp.ListWeightResult, error) {
	query := url.Values{}
	query.Set("currentPage", strconv.Itoa(req.CurrentPage))
	query.Set("size", strconv.Itoa(req.Size))
	if req.Weight != nil {
		query.Set("weight", *req.Weight)
	}
	if req.Enable != nil {
		query.Set("enable", strconv.Itoa(*req.Enable))
	}

	resp, err := c.do(ctx, http.MethodGet, weightPath, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result, err := decode[weightapp.ListWeightResult](resp)
	if err != nil {
		return nil, err
	}
	if result.List == nil {
		result.List = []weightapp.WeightRecord{}
	}
	return &result, nil
}

// Delete DELETE /weights/:id
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, idPath(id), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = decode[string](resp)
	return err
}

// Resolve 服务端可能需要下载文件，耗时受 http.Client 超时限制
func (c *Client) Resolve(ctx context.Context, id int64) (*weightapp.ResolveResult, error) {
	resp, err := c.do(ctx, http.MethodPost, idPath(id)+"/resolve", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result, err := decode[weightapp.ResolveResult](resp)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func idPath(id int64) string {
	return weightPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL + p
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("unable to do request: %w", err)
	}
	return httpResp, nil
}

func decode[T any](resp *http.Response) (T, error) {
	var env response.Envelope[T]
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env.Data, fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return env.Data, &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(raw))}
		}
		return env.Data, fmt.Errorf("decode response: %w", err)
	}

	if !env.Success || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return env.Data, &APIError{
			Status:    resp.StatusCode,
			Code:      env.Error,
			Field:     env.Field,
			Message:   env.Message,
			RequestID: env.RequestID,
		}
	}
	return env.Data, nil
}
