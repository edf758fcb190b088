package esplora

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/towercheck/txsource"
)

const (
	// DefaultRequestTimeout is the default timeout of a single request.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retries of a request
	// that failed at the transport level.
	DefaultMaxRetries = 2

	// retryBackoff is multiplied by the attempt number to obtain the
	// delay before the next attempt.
	retryBackoff = 100 * time.Millisecond

	// maxBodySize limits the size of a response body we are willing to
	// read. Consensus caps transactions well below this.
	maxBodySize = 8 << 20
)

var (
	// ErrNotFound is returned when the API answers with 404.
	ErrNotFound = errors.New("esplora: not found")

	// errStatus is returned for any other non-200 answer.
	errStatus = errors.New("esplora: unexpected status")
)

// ClientConfig holds the configuration for the Esplora client.
type ClientConfig struct {
	// URL is the base URL of the Esplora API (e.g.,
	// https://blockstream.info/api).
	URL string

	// RequestTimeout is the timeout for individual HTTP requests.
	RequestTimeout time.Duration

	// MaxRetries is the maximum number of retries for failed requests.
	MaxRetries int
}

// Client is an HTTP client for the Esplora REST API. It only implements the
// read calls needed to look up transactions.
type Client struct {
	cfg *ClientConfig

	httpClient *http.Client
}

// A compile time check to ensure Client implements the txsource interfaces.
var (
	_ txsource.Source = (*Client)(nil)
	_ txsource.Pinger = (*Client)(nil)
)

// NewClient creates a new Esplora client with the given configuration.
func NewClient(cfg *ClientConfig) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Name returns a short description of the backend.
//
// NOTE: This is part of the txsource.Source interface.
func (c *Client) Name() string {
	return "esplora(" + c.cfg.URL + ")"
}

// response is a fully read HTTP answer.
type response struct {
	status int
	body   []byte
}

// doRequest performs an HTTP request with retries. Each attempt is bounded
// by RequestTimeout, an attempt running out of time fails with
// context.DeadlineExceeded. Only transport failures are retried, any HTTP
// answer is returned to the caller.
func (c *Client) doRequest(ctx context.Context, method,
	path string) (*response, error) {

	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * retryBackoff):
			}
		}

		resp, err := c.attempt(ctx, method, path)
		if err == nil {
			return resp, nil
		}

		log.Debugf("Request %s %s failed (attempt %d): %v", method,
			path, i+1, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.MaxRetries+1, lastErr)
}

// attempt sends a single request and reads its body before the attempt's
// timeout is released.
func (c *Client) attempt(ctx context.Context, method,
	path string) (*response, error) {

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, method, c.cfg.URL+path, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

// doGet performs a GET request and returns the response body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		return resp.body, nil

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)

	default:
		return nil, fmt.Errorf("%w %d: %s", errStatus, resp.status,
			strings.TrimSpace(string(resp.body)))
	}
}

// GetTipHeight returns the current blockchain tip height.
func (c *Client) GetTipHeight(ctx context.Context) (int64, error) {
	body, err := c.doGet(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse height: %w", err)
	}

	return height, nil
}

// GetRawTransaction fetches the raw transaction hex by txid.
func (c *Client) GetRawTransaction(ctx context.Context,
	txid string) (string, error) {

	body, err := c.doGet(ctx, "/tx/"+txid+"/hex")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// GetRawTransactionMsgTx fetches and deserializes a transaction.
func (c *Client) GetRawTransactionMsgTx(ctx context.Context,
	txid string) (*wire.MsgTx, error) {

	txHex, err := c.GetRawTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	txBytes, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tx hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, fmt.Errorf("failed to deserialize tx: %w", err)
	}

	return tx, nil
}

// FetchTransaction looks up txid and maps the client errors to the txsource
// error kinds.
//
// NOTE: This is part of the txsource.Source interface.
func (c *Client) FetchTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	tx, err := c.GetRawTransactionMsgTx(ctx, txid.String())
	switch {
	case err == nil:
		return tx, nil

	case errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("%w: %v", txsource.ErrTxNotFound, txid)

	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %w", txsource.ErrUnavailable,
			ctx.Err())

	default:
		return nil, fmt.Errorf("%w: %w", txsource.ErrUnavailable, err)
	}
}

// Ping checks that the API answers by querying the tip height.
//
// NOTE: This is part of the txsource.Pinger interface.
func (c *Client) Ping(ctx context.Context) error {
	height, err := c.GetTipHeight(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", txsource.ErrUnavailable, err)
	}

	log.Tracef("Esplora tip height %d", height)

	return nil
}
