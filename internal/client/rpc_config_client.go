package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RPCConfigClient fetches the remote chain -> RPC URL override document.
type RPCConfigClient interface {
	FetchOverrides(ctx context.Context) (map[string]string, error)
}

// rpcConfigClientImpl is the implementation of RPCConfigClient.
type rpcConfigClientImpl struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRPCConfigClient creates a client for the document at url.
func NewRPCConfigClient(url string, timeout time.Duration, logger *zap.Logger) RPCConfigClient {
	return &rpcConfigClientImpl{
		client:  &fasthttp.Client{},
		url:     url,
		timeout: timeout,
		logger:  logger.Named("RPCConfigClient"),
	}
}

// FetchOverrides implements the RPCConfigClient interface.
func (c *rpcConfigClientImpl) FetchOverrides(ctx context.Context) (map[string]string, error) {
	c.logger.Debug("Requesting RPC overrides", zap.String("url", c.url))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", c.url, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", c.url, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("RPC override request to %s failed with status %d", c.url, resp.StatusCode())
	}

	var overrides map[string]string
	if err := json.Unmarshal(rawBody, &overrides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal RPC overrides from %s: %w", c.url, err)
	}
	if overrides == nil {
		return nil, fmt.Errorf("RPC override document from %s is not an object", c.url)
	}

	c.logger.Debug("Fetched RPC overrides", zap.Int("entries", len(overrides)))
	return overrides, nil
}
