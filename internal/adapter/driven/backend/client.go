// Package backend reads orders and inventory from the POS backend HTTP API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.OrderQuery     = (*Client)(nil)
	_ driven.InventoryQuery = (*Client)(nil)
)

const (
	activeOrdersPath = "/pedidos/activos"
	inventoryPath    = "/inventario/"

	// maxErrorBody caps how much of a failed response is quoted in errors.
	maxErrorBody = 512
)

// Client implements the OrderQuery and InventoryQuery ports against the POS
// backend. Responses are cached in memory and revalidated with ETags.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a Client for the backend at baseURL with an in-memory
// HTTP cache transport.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL: unsupported scheme %q", u.Scheme)
	}
	return &Client{http: httpClient, baseURL: u}, nil
}

// orderJSON mirrors one element of GET /pedidos/activos.
type orderJSON struct {
	ID          int        `json:"id"`
	TableNumber int        `json:"mesa_numero"`
	AppNumber   *int       `json:"numero_app"`
	Status      string     `json:"estado"`
	CreatedAt   string     `json:"fecha_hora"`
	Items       []itemJSON `json:"items"`
	Notes       *string    `json:"notas"`
}

type itemJSON struct {
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
}

// inventoryJSON mirrors one element of GET /inventario/.
type inventoryJSON struct {
	Name      string  `json:"nombre"`
	Available float64 `json:"cantidad_disponible"`
}

// ActiveOrders fetches the orders the backend considers open. The list may
// include orders that are already ready; callers filter by status.
func (c *Client) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	var raw []orderJSON
	if err := c.getJSON(ctx, activeOrdersPath, &raw); err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, toOrder(o))
	}
	return orders, nil
}

// AllItems fetches the full inventory.
func (c *Client) AllItems(ctx context.Context) ([]model.InventoryItem, error) {
	var raw []inventoryJSON
	if err := c.getJSON(ctx, inventoryPath, &raw); err != nil {
		return nil, err
	}

	items := make([]model.InventoryItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, model.InventoryItem{Name: it.Name, AvailableQuantity: it.Available})
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The cache transport stores a response only once its body hits EOF.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func toOrder(o orderJSON) model.Order {
	items := make([]model.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, model.OrderItem{Name: it.Name, Price: it.Price})
	}

	var notes string
	if o.Notes != nil {
		notes = *o.Notes
	}

	return model.Order{
		ID:                 o.ID,
		TableNumber:        o.TableNumber,
		DigitalOrderNumber: o.AppNumber,
		Status:             model.OrderStatus(o.Status),
		CreatedAt:          o.CreatedAt,
		Items:              items,
		Notes:              notes,
	}
}
